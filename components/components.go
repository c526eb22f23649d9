// Package components defines ECS components for the simulation.
package components

import "github.com/pthm-cable/moodbiome/mood"

// Position represents an entity's world position.
type Position struct {
	X, Y float32
}

// Velocity holds the per-axis speed. Motion couples it with the heading:
// dx = sin(heading)*X, dy = cos(heading)*Y.
type Velocity struct {
	X, Y float32
}

// Rotation represents an entity's heading and angular velocity.
type Rotation struct {
	Heading float32 // radians
	AngVel  float32 // radians per frame
}

// Body holds the entity's collision radius.
type Body struct {
	Size     float32 // current radius, decays each frame
	SizeHint float32 // radius at creation
}

// Vitality tracks remaining lifespan in frames.
// Lifespan may exceed MaxLifespan through same-category clustering.
type Vitality struct {
	Lifespan    int32
	MaxLifespan int32
}

// Alive reports whether the entity survives the next prune.
func (v *Vitality) Alive() bool {
	return v.Lifespan > 0
}

// Ratio returns Lifespan/MaxLifespan clamped to [0,1], used as render alpha.
func (v *Vitality) Ratio() float32 {
	if v.MaxLifespan <= 0 || v.Lifespan <= 0 {
		return 0
	}
	r := float32(v.Lifespan) / float32(v.MaxLifespan)
	if r > 1 {
		return 1
	}
	return r
}

// Organism bundles identity and category.
type Organism struct {
	ID       uint32
	Category mood.ID
	BornTick int64
}
