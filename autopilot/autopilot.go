// Package autopilot drives a simulation with a synthetic pointer, for
// headless runs and parameter tuning.
package autopilot

import (
	"math"

	"github.com/aquilax/go-perlin"

	"github.com/pthm-cable/moodbiome/config"
	"github.com/pthm-cable/moodbiome/mood"
	"github.com/pthm-cable/moodbiome/sim"
	"github.com/pthm-cable/moodbiome/systems"
)

// Perlin parameters: smoothness, frequency scaling, octaves.
const (
	noiseAlpha  = 2
	noiseBeta   = 2
	noiseOctave = 3
)

// Action is what the pointer does in one frame.
type Action struct {
	X, Y     float32
	Click    bool
	Category mood.ID // category to select, or mood.None to keep the current one
}

// Pilot wanders a pointer along a Perlin noise path, clicking and switching
// categories at fixed intervals.
type Pilot struct {
	cfg   config.AutopilotConfig
	noise *perlin.Perlin
	t     float64
	frame int64

	// Balancing picks the least populated category instead of a noise-driven one.
	Balancing bool
}

// New creates a pilot. The same seed always produces the same path.
func New(cfg config.AutopilotConfig, seed int64) *Pilot {
	return &Pilot{
		cfg:   cfg,
		noise: perlin.NewPerlin(noiseAlpha, noiseBeta, noiseOctave, seed),
	}
}

// Next advances the pilot one frame. counts is the latest census, used by
// the balancing mode; it may be nil.
func (p *Pilot) Next(bounds systems.Bounds, counts []int, numCategories int) Action {
	p.frame++
	p.t += p.cfg.Step

	a := Action{
		X:        float32(unit(p.noise.Noise2D(p.t, 0.5)) * float64(bounds.Width)),
		Y:        float32(unit(p.noise.Noise2D(0.5, p.t+17.3)) * float64(bounds.Height)),
		Category: mood.None,
	}

	if p.cfg.ClickInterval > 0 && p.frame%int64(p.cfg.ClickInterval) == 0 {
		a.Click = true
	}

	if numCategories > 0 && (p.frame == 1 ||
		(p.cfg.CategoryInterval > 0 && p.frame%int64(p.cfg.CategoryInterval) == 0)) {
		if p.Balancing && len(counts) == numCategories {
			a.Category = leastPopulated(counts)
		} else {
			idx := int(unit(p.noise.Noise1D(p.t*7+101.1)) * float64(numCategories))
			if idx >= numCategories {
				idx = numCategories - 1
			}
			a.Category = mood.ID(idx)
		}
	}

	return a
}

// Drive computes the next action from the Sim's state and applies it
// through the Sim's input operations.
func (p *Pilot) Drive(s *sim.Sim) Action {
	a := p.Next(s.Bounds(), s.Metrics().Counts, s.Table().Len())
	if a.Category != mood.None {
		s.SelectCategoryID(a.Category)
	}
	s.OnPointerMove(a.X, a.Y)
	if a.Click {
		s.OnPointerClick(a.X, a.Y)
	}
	return a
}

// unit maps noise output to [0,1].
func unit(n float64) float64 {
	v := (n + 1) / 2
	return math.Max(0, math.Min(1, v))
}

func leastPopulated(counts []int) mood.ID {
	best := 0
	for i, c := range counts {
		if c < counts[best] {
			best = i
		}
	}
	return mood.ID(best)
}
