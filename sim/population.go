package sim

import (
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/moodbiome/components"
	"github.com/pthm-cable/moodbiome/config"
	"github.com/pthm-cable/moodbiome/mood"
	"github.com/pthm-cable/moodbiome/systems"
)

// EntityView is a read-only copy of one entity for renderers.
type EntityView struct {
	ID       uint32
	X, Y     float32
	Heading  float32
	Size     float32
	SizeHint float32
	Category mood.ID
	Alpha    float32 // lifespan / maxLifespan, clamped to [0,1]
	Age      int64   // frames since spawn
}

// Population owns the live entities in an ECS world.
type Population struct {
	world *ecs.World
	table *mood.Table
	cfg   config.EntityConfig

	mapper *ecs.Map6[
		components.Position,
		components.Velocity,
		components.Rotation,
		components.Body,
		components.Vitality,
		components.Organism,
	]
	filter *ecs.Filter6[
		components.Position,
		components.Velocity,
		components.Rotation,
		components.Body,
		components.Vitality,
		components.Organism,
	]

	nextID uint32
	count  int

	// Scratch buffers reused across frames
	toRemove []ecs.Entity
	agents   []systems.Agent
	counts   []int
}

// NewPopulation creates an empty population.
func NewPopulation(table *mood.Table, cfg config.EntityConfig) *Population {
	world := ecs.NewWorld()
	return &Population{
		world: world,
		table: table,
		cfg:   cfg,
		mapper: ecs.NewMap6[
			components.Position,
			components.Velocity,
			components.Rotation,
			components.Body,
			components.Vitality,
			components.Organism,
		](world),
		filter: ecs.NewFilter6[
			components.Position,
			components.Velocity,
			components.Rotation,
			components.Body,
			components.Vitality,
			components.Organism,
		](world),
		counts: make([]int, table.Len()),
	}
}

// Spawn creates an entity of the given category at (x, y). An invalid
// category is a no-op and reports false.
func (p *Population) Spawn(rng systems.Source, x, y float32, cat mood.ID, tick int64) (uint32, bool) {
	c, ok := p.table.Get(cat)
	if !ok {
		return 0, false
	}

	s := NewEntity(rng, p.cfg, c, x, y)
	s.Org.ID = p.nextID
	s.Org.BornTick = tick
	p.nextID++

	p.mapper.NewEntity(&s.Pos, &s.Vel, &s.Rot, &s.Body, &s.Vital, &s.Org)
	p.count++
	return s.Org.ID, true
}

// Prune removes every entity whose lifespan is exhausted and returns how
// many were removed.
func (p *Population) Prune() int {
	// First pass: collect (the world is locked during iteration)
	p.toRemove = p.toRemove[:0]
	query := p.filter.Query()
	for query.Next() {
		_, _, _, _, vital, _ := query.Get()
		if !vital.Alive() {
			p.toRemove = append(p.toRemove, query.Entity())
		}
	}

	// Second pass: remove
	for _, e := range p.toRemove {
		p.mapper.Remove(e)
	}
	p.count -= len(p.toRemove)
	return len(p.toRemove)
}

// Step advances every entity by one frame. Entities whose state becomes
// non-finite are quarantined: their lifespan is forced to zero so the next
// prune removes them. Returns the number quarantined.
func (p *Population) Step(bounds systems.Bounds) int {
	decay := float32(p.cfg.SizeDecay)
	quarantined := 0

	query := p.filter.Query()
	for query.Next() {
		pos, vel, rot, body, vital, org := query.Get()
		if systems.Step(pos, vel, rot, body, vital, bounds, decay) {
			continue
		}
		vital.Lifespan = 0
		quarantined++
		slog.Warn("entity_quarantined",
			"id", org.ID,
			"category", p.table.Name(org.Category),
			"x", pos.X,
			"y", pos.Y,
		)
	}
	return quarantined
}

// Agents gathers resolver views of every entity. The pointers stay valid
// until the next Spawn or Prune; the returned slice is reused by the next call.
func (p *Population) Agents() []systems.Agent {
	p.agents = p.agents[:0]
	query := p.filter.Query()
	for query.Next() {
		pos, vel, _, body, vital, org := query.Get()
		p.agents = append(p.agents, systems.Agent{
			Pos:      pos,
			Vel:      vel,
			Body:     body,
			Vital:    vital,
			Category: org.Category,
			Radius:   body.Size,
		})
	}
	return p.agents
}

// Census returns the live count per category, indexed by mood.ID. The
// returned slice is reused by the next call.
func (p *Population) Census() []int {
	for i := range p.counts {
		p.counts[i] = 0
	}
	query := p.filter.Query()
	for query.Next() {
		_, _, _, _, _, org := query.Get()
		if int(org.Category) < len(p.counts) {
			p.counts[org.Category]++
		}
	}
	return p.counts
}

// Views appends a render view of every entity to dst.
func (p *Population) Views(dst []EntityView, tick int64) []EntityView {
	query := p.filter.Query()
	for query.Next() {
		pos, _, rot, body, vital, org := query.Get()
		dst = append(dst, EntityView{
			ID:       org.ID,
			X:        pos.X,
			Y:        pos.Y,
			Heading:  rot.Heading,
			Size:     body.Size,
			SizeHint: body.SizeHint,
			Category: org.Category,
			Alpha:    vital.Ratio(),
			Age:      tick - org.BornTick,
		})
	}
	return dst
}

// Samples appends each entity's size and remaining lifespan, for window stats.
func (p *Population) Samples(sizes, lifespans []float64) ([]float64, []float64) {
	query := p.filter.Query()
	for query.Next() {
		_, _, _, body, vital, _ := query.Get()
		sizes = append(sizes, float64(body.Size))
		lifespans = append(lifespans, float64(vital.Lifespan))
	}
	return sizes, lifespans
}

// Len returns the number of entities in the population, including any
// expired ones awaiting the next prune.
func (p *Population) Len() int {
	return p.count
}
