package systems

import (
	"image/color"
	"math"
	"math/rand"
)

// ParticleType identifies the type of effect particle.
type ParticleType uint8

const (
	ParticleBurst  ParticleType = iota // spawn burst at a click
	ParticleEvolve                     // entity evolution
)

// EffectParticle represents a visual feedback particle.
type EffectParticle struct {
	X, Y       float32
	VelX, VelY float32
	Life       int32
	MaxLife    int32
	Type       ParticleType
	Size       float32
	Color      color.RGBA
}

// ParticleSystem manages cosmetic particles. It never touches simulation
// state; frontends feed it from frame events.
type ParticleSystem struct {
	Particles    []EffectParticle
	maxParticles int
}

// NewParticleSystem creates a new particle system.
func NewParticleSystem() *ParticleSystem {
	return &ParticleSystem{
		Particles:    make([]EffectParticle, 0, 1000),
		maxParticles: 1000,
	}
}

// Update processes all particles.
func (s *ParticleSystem) Update() {
	alive := 0
	for i := range s.Particles {
		p := &s.Particles[i]

		p.Life--
		if p.Life <= 0 {
			continue
		}

		// Ease out
		p.VelX *= 0.94
		p.VelY *= 0.94

		p.X += p.VelX
		p.Y += p.VelY

		s.Particles[alive] = s.Particles[i]
		alive++
	}
	s.Particles = s.Particles[:alive]
}

// EmitExplosion emits a radial burst of count particles.
func (s *ParticleSystem) EmitExplosion(x, y float32, c color.RGBA, ptype ParticleType, count int) {
	for i := 0; i < count; i++ {
		if len(s.Particles) >= s.maxParticles {
			return
		}

		angle := rand.Float64() * 2 * math.Pi
		speed := float32(2 + rand.Float64()*5)
		life := int32(30 + rand.Intn(60))
		sin, cos := math.Sincos(angle)

		s.Particles = append(s.Particles, EffectParticle{
			X:       x,
			Y:       y,
			VelX:    float32(cos) * speed,
			VelY:    float32(sin) * speed,
			Life:    life,
			MaxLife: life,
			Type:    ptype,
			Size:    2.5 + rand.Float32()*5,
			Color:   c,
		})
	}
}

// Count returns the current number of active particles.
func (s *ParticleSystem) Count() int {
	return len(s.Particles)
}
