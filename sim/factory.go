package sim

import (
	"math"

	"github.com/pthm-cable/moodbiome/components"
	"github.com/pthm-cable/moodbiome/config"
	"github.com/pthm-cable/moodbiome/mood"
	"github.com/pthm-cable/moodbiome/systems"
)

// EntityState is the full component set of one entity, before it is added
// to a population.
type EntityState struct {
	Pos   components.Position
	Vel   components.Velocity
	Rot   components.Rotation
	Body  components.Body
	Vital components.Vitality
	Org   components.Organism
}

// NewEntity draws a fresh entity of the given category at (x, y).
//
// Size is uniform in [MinSize, MinSize+SizeRange), each velocity component
// uniform in [-spread*speed, spread*speed), heading uniform in [0, 2pi) and
// angular velocity uniform in [-AngularSpread, AngularSpread).
// ID and BornTick are left for the population to assign.
func NewEntity(rng systems.Source, cfg config.EntityConfig, cat *mood.Category, x, y float32) EntityState {
	size := float32(cfg.MinSize + rng.Float64()*cfg.SizeRange)
	speed := cfg.VelocitySpread * float64(cat.SpeedFactor)

	vx := float32((rng.Float64()*2 - 1) * speed)
	vy := float32((rng.Float64()*2 - 1) * speed)
	heading := float32(rng.Float64() * 2 * math.Pi)
	angVel := float32((rng.Float64()*2 - 1) * cfg.AngularSpread)

	lifespan := int32(cfg.Lifespan)

	return EntityState{
		Pos:   components.Position{X: x, Y: y},
		Vel:   components.Velocity{X: vx, Y: vy},
		Rot:   components.Rotation{Heading: heading, AngVel: angVel},
		Body:  components.Body{Size: size, SizeHint: size},
		Vital: components.Vitality{Lifespan: lifespan, MaxLifespan: lifespan},
		Org:   components.Organism{Category: cat.ID},
	}
}
