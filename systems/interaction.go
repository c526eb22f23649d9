package systems

import (
	"github.com/pthm-cable/moodbiome/components"
	"github.com/pthm-cable/moodbiome/config"
	"github.com/pthm-cable/moodbiome/mood"
)

// Agent is the resolver's read/write view of one live entity. The pointers
// reference the population's component storage and stay valid for the
// duration of a pass because nothing is added or removed during it.
type Agent struct {
	Pos      *components.Position
	Vel      *components.Velocity
	Body     *components.Body
	Vital    *components.Vitality
	Category mood.ID

	// Radius is Body.Size captured before the pass. Overlap tests use it so
	// an evolution mid-pass does not change which pairs overlap.
	Radius float32
}

// InteractionParams holds the pairwise overlap rules.
type InteractionParams struct {
	Repulsion     float32 // impulse per unit of separation
	CrossPenalty  int32   // lifespan lost per entity, different categories
	KinBonus      int32   // lifespan gained per entity, same category
	EvolveChance  float64 // per same-category overlapping pair; 0 disables
	EvolveGrowth  float32
	GridThreshold int // agent count at which the grid is used; 0 = never
}

// InteractionParamsFrom maps config to resolver parameters.
func InteractionParamsFrom(cfg *config.Config) InteractionParams {
	p := InteractionParams{
		Repulsion:     float32(cfg.Interaction.Repulsion),
		CrossPenalty:  int32(cfg.Interaction.CrossPenalty),
		KinBonus:      int32(cfg.Interaction.KinBonus),
		EvolveChance:  cfg.Interaction.EvolveChance,
		EvolveGrowth:  float32(cfg.Interaction.EvolveGrowth),
		GridThreshold: cfg.Interaction.GridThreshold,
	}
	if !cfg.Derived.EvolutionEnabled {
		p.EvolveChance = 0
	}
	return p
}

// Evolution records an agent that evolved during a pass.
type Evolution struct {
	Index    int
	X, Y     float32
	Category mood.ID
}

// InteractionResult summarizes one pass.
type InteractionResult struct {
	Overlaps   int
	KinPairs   int
	CrossPairs int
	Evolved    []Evolution
}

// Resolver applies pairwise proximity effects between live agents.
type Resolver struct {
	params InteractionParams
	grid   *SpatialGrid
	result InteractionResult
}

// NewResolver creates a resolver with the given parameters.
func NewResolver(params InteractionParams) *Resolver {
	return &Resolver{
		params: params,
		grid:   NewSpatialGrid(),
	}
}

// Params returns the resolver's parameters.
func (r *Resolver) Params() InteractionParams {
	return r.params
}

// Resolve evaluates every unordered pair of agents once.
//
// For an overlapping pair (distance < Radius(i)+Radius(j)), with d = pos(j)-pos(i):
// vel(i) -= d*k and vel(j) += d*k. Different categories both lose
// CrossPenalty lifespan; the same category both gain KinBonus, and with
// EvolveChance agent i (the lower index) evolves.
//
// The grid path produces the same overlap set as brute force; only the
// order of evaluation, and so the floating-point trajectory, differs.
// The returned Evolved slice is reused by the next call.
func (r *Resolver) Resolve(agents []Agent, bounds Bounds, rng Source) InteractionResult {
	r.result.Overlaps = 0
	r.result.KinPairs = 0
	r.result.CrossPairs = 0
	r.result.Evolved = r.result.Evolved[:0]

	if len(agents) < 2 {
		return r.result
	}

	if r.params.GridThreshold > 0 && len(agents) >= r.params.GridThreshold {
		var maxRadius float32
		for i := range agents {
			maxRadius = maxf(maxRadius, agents[i].Radius)
		}
		r.grid.Rebuild(agents, bounds, 2*maxRadius)
		r.grid.ForEachPair(func(i, j int) {
			r.resolvePair(agents, i, j, rng)
		})
		return r.result
	}

	for i := 0; i < len(agents)-1; i++ {
		for j := i + 1; j < len(agents); j++ {
			r.resolvePair(agents, i, j, rng)
		}
	}
	return r.result
}

// resolvePair applies the overlap rules to agents i < j.
func (r *Resolver) resolvePair(agents []Agent, i, j int, rng Source) {
	a := &agents[i]
	b := &agents[j]

	dx := b.Pos.X - a.Pos.X
	dy := b.Pos.Y - a.Pos.Y
	dist := distance(dx, dy)

	// NaN distance fails this test, so faulted pairs are skipped
	if !(dist < a.Radius+b.Radius) {
		return
	}
	r.result.Overlaps++

	k := r.params.Repulsion
	a.Vel.X -= dx * k
	a.Vel.Y -= dy * k
	b.Vel.X += dx * k
	b.Vel.Y += dy * k

	if a.Category != b.Category {
		r.result.CrossPairs++
		a.Vital.Lifespan -= r.params.CrossPenalty
		b.Vital.Lifespan -= r.params.CrossPenalty
		return
	}

	r.result.KinPairs++
	a.Vital.Lifespan += r.params.KinBonus
	b.Vital.Lifespan += r.params.KinBonus

	if r.params.EvolveChance > 0 && rng != nil && rng.Float64() < r.params.EvolveChance {
		Evolve(a.Body, a.Vital, r.params.EvolveGrowth)
		r.result.Evolved = append(r.result.Evolved, Evolution{
			Index:    i,
			X:        a.Pos.X,
			Y:        a.Pos.Y,
			Category: a.Category,
		})
	}
}
