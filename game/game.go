// Package game is the windowed raylib frontend. It owns no simulation
// rules: it forwards input to a sim.Sim and draws the frames it returns.
package game

import (
	"fmt"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/moodbiome/audio"
	"github.com/pthm-cable/moodbiome/autopilot"
	"github.com/pthm-cable/moodbiome/config"
	"github.com/pthm-cable/moodbiome/sim"
	"github.com/pthm-cable/moodbiome/systems"
	"github.com/pthm-cable/moodbiome/telemetry"
)

// Particles per burst, matching the click explosion.
const burstParticles = 50

// popupSeconds is how long an event message stays on screen.
const popupSeconds = 3

// Options configures the frontend.
type Options struct {
	Sim       sim.Options
	Autopilot bool  // drive the pointer with the Perlin autopilot
	PilotSeed int64 // autopilot path seed
	Sound     bool  // play event chimes (also requires audio.enabled)
}

// Game holds the frontend state around one simulation.
type Game struct {
	cfg *config.Config
	sim *sim.Sim

	particles *systems.ParticleSystem
	popups    *Popups
	chimer    *audio.Chimer
	pilot     *autopilot.Pilot

	frame sim.Frame

	// Fading trails are drawn into an offscreen target
	trail rl.RenderTexture2D

	// State
	frames         int64 // rendered frames, independent of simulation speed
	paused         bool
	debugMode      bool
	stepsPerUpdate int
	lastMouse      rl.Vector2
	screenWidth    float32
	screenHeight   float32
}

// NewGame creates the frontend. The raylib window must already be open.
func NewGame(cfg *config.Config, opts Options) (*Game, error) {
	s, err := sim.New(cfg, opts.Sim)
	if err != nil {
		return nil, fmt.Errorf("creating simulation: %w", err)
	}

	g := &Game{
		cfg:            cfg,
		sim:            s,
		particles:      systems.NewParticleSystem(),
		popups:         NewPopups(int64(popupSeconds * cfg.Screen.TargetFPS)),
		stepsPerUpdate: 1,
		screenWidth:    float32(rl.GetScreenWidth()),
		screenHeight:   float32(rl.GetScreenHeight()),
	}
	g.trail = rl.LoadRenderTexture(int32(g.screenWidth), int32(g.screenHeight))
	s.OnResize(g.screenWidth, g.screenHeight)

	if opts.Autopilot {
		g.pilot = autopilot.New(cfg.Autopilot, opts.PilotSeed)
	}

	if opts.Sound && cfg.Audio.Enabled {
		g.chimer = audio.NewChimer(cfg.Audio)
		if err := g.chimer.Init(); err != nil {
			slog.Warn("audio_disabled", "error", err)
			g.chimer = nil
		}
	}

	return g, nil
}

// Update handles input and advances the simulation.
func (g *Game) Update() {
	g.frames++
	g.handleInput()

	if g.paused {
		g.particles.Update()
		return
	}

	for i := 0; i < g.stepsPerUpdate; i++ {
		if g.pilot != nil {
			g.pilot.Drive(g.sim)
		}
		g.frame = g.sim.Step()
		g.consumeEvents(g.frame.Events)
	}
	g.particles.Update()
}

// consumeEvents feeds cosmetic collaborators from a frame's events.
func (g *Game) consumeEvents(events []telemetry.Event) {
	table := g.sim.Table()
	for _, e := range events {
		switch e.Type {
		case telemetry.EventSpawnBurst, telemetry.EventEntityEvolved:
			ptype := systems.ParticleBurst
			if e.Type == telemetry.EventEntityEvolved {
				ptype = systems.ParticleEvolve
			}
			if cat, ok := table.Get(e.Category); ok {
				g.particles.EmitExplosion(e.X, e.Y, cat.ParticleColor, ptype, burstParticles)
			}
		}
		if e.Popup() {
			g.popups.Push(e.Message, g.frames)
		}
		if g.chimer != nil {
			g.chimer.Play(e)
		}
	}
}

// Unload releases GPU and audio resources and closes telemetry output.
func (g *Game) Unload() {
	rl.UnloadRenderTexture(g.trail)
	if g.chimer != nil {
		g.chimer.Close()
	}
	if err := g.sim.Close(); err != nil {
		slog.Error("closing simulation", "error", err)
	}
}

// Tick returns the current simulation tick.
func (g *Game) Tick() int64 {
	return g.sim.Tick()
}

// Sim exposes the simulation for callers that need its state.
func (g *Game) Sim() *sim.Sim {
	return g.sim
}
