// Package systems contains the per-frame rules of the simulation: motion,
// pairwise interaction, and evolution.
package systems

import (
	"math"

	"github.com/pthm-cable/moodbiome/components"
)

// Bounds represents the simulation bounds.
type Bounds struct {
	Width, Height float32
}

// Contains reports whether (x, y) lies inside [0,Width]x[0,Height].
func (b Bounds) Contains(x, y float32) bool {
	return x >= 0 && x <= b.Width && y >= 0 && y <= b.Height
}

// Source is the random stream consumed by probabilistic rules.
// *rand.Rand satisfies it; tests substitute fixed sequences.
type Source interface {
	Float64() float64
}

// Step advances one entity by a frame.
//
// Displacement couples heading and per-axis speed multiplicatively
// (x += sin(h)*vx, y += cos(h)*vy). Reflection flips a velocity component
// when the post-move position is outside the bounds; position is never
// clamped, so an entity may overshoot by one frame of displacement.
//
// Returns false when the entity's state is no longer finite; the caller
// quarantines it.
func Step(pos *components.Position, vel *components.Velocity, rot *components.Rotation,
	body *components.Body, vital *components.Vitality, bounds Bounds, sizeDecay float32) bool {
	sin, cos := math.Sincos(float64(rot.Heading))
	pos.X += float32(sin) * vel.X
	pos.Y += float32(cos) * vel.Y
	rot.Heading += rot.AngVel
	vital.Lifespan--

	if pos.X < 0 || pos.X > bounds.Width {
		vel.X = -vel.X
	}
	if pos.Y < 0 || pos.Y > bounds.Height {
		vel.Y = -vel.Y
	}

	body.Size *= sizeDecay

	return finite(pos.X, pos.Y, vel.X, vel.Y, rot.Heading, body.Size)
}

// Evolve grows an entity and restores its lifespan.
func Evolve(body *components.Body, vital *components.Vitality, growth float32) {
	body.Size *= growth
	vital.Lifespan = vital.MaxLifespan
}

// finite reports whether every value is neither NaN nor infinite.
func finite(vals ...float32) bool {
	for _, v := range vals {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
