// Package sim runs the mood ecosystem: it owns the population, applies
// input, and produces one Frame per step.
package sim

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/pthm-cable/moodbiome/config"
	"github.com/pthm-cable/moodbiome/mood"
	"github.com/pthm-cable/moodbiome/systems"
	"github.com/pthm-cable/moodbiome/telemetry"
)

// Options configures a simulation instance.
type Options struct {
	Seed      int64          // RNG seed (0 = time-based)
	Rand      systems.Source // overrides Seed when set
	OutputDir string         // CSV/config output (empty = disabled)
	LogStats  bool           // log window stats and perf via slog

	// Listener, if set, receives every event as it is emitted.
	Listener func(telemetry.Event)
}

// Frame is the output of one step. Entities and Events are reused by the
// next step; copy them to keep them.
//
// Entities that expired during the step are still in Entities and counted
// by Metrics, with Alpha 0. The next step prunes them first.
type Frame struct {
	Tick     int64
	Entities []EntityView
	Metrics  telemetry.Snapshot
	Events   []telemetry.Event
}

// Sim is one simulation instance. It is not safe for concurrent use; drive
// it from a single goroutine, or through a Scheduler.
type Sim struct {
	cfg   *config.Config
	table *mood.Table
	rng   systems.Source

	pop      *Population
	resolver *systems.Resolver
	engine   *telemetry.Engine

	// Telemetry
	collector    *telemetry.Collector
	perf         *telemetry.PerfCollector
	achievements *telemetry.AchievementTracker
	output       *telemetry.OutputManager
	logStats     bool
	listener     func(telemetry.Event)

	bounds   systems.Bounds
	selected mood.ID
	tick     int64

	// Events raised by input between frames, delivered with the next frame
	pending []telemetry.Event
	events  []telemetry.Event

	views     []EntityView
	sizes     []float64
	lifespans []float64
}

// New creates a simulation from a validated config.
func New(cfg *config.Config, opts Options) (*Sim, error) {
	table, err := mood.NewTable(cfg.Categories)
	if err != nil {
		return nil, err
	}
	strategy, err := telemetry.NewStrategy(cfg)
	if err != nil {
		return nil, err
	}

	rng := opts.Rand
	if rng == nil {
		seed := opts.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng = rand.New(rand.NewSource(seed))
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("creating output manager: %w", err)
	}
	if err := output.WriteConfig(cfg); err != nil {
		output.Close()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}

	s := &Sim{
		cfg:          cfg,
		table:        table,
		rng:          rng,
		pop:          NewPopulation(table, cfg.Entity),
		resolver:     systems.NewResolver(systems.InteractionParamsFrom(cfg)),
		engine:       telemetry.NewEngine(strategy),
		collector:    telemetry.NewCollector(cfg.Telemetry.StatsWindow, cfg.Derived.DT),
		perf:         telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		achievements: telemetry.NewAchievementTracker(cfg.Achievements, cfg.Derived.DT),
		output:       output,
		logStats:     opts.LogStats,
		listener:     opts.Listener,
		bounds: systems.Bounds{
			Width:  float32(cfg.Screen.Width),
			Height: float32(cfg.Screen.Height),
		},
		selected: mood.None,
	}

	if output != nil {
		slog.Info("output enabled", "dir", output.Dir())
	}
	return s, nil
}

// Step runs one frame: prune, update, interact, metrics, telemetry.
func (s *Sim) Step() Frame {
	s.tick++
	s.perf.StartTick()

	s.events = append(s.events[:0], s.pending...)
	s.pending = s.pending[:0]

	// 1. Remove expired entities
	s.perf.StartPhase(telemetry.PhasePrune)
	s.collector.RecordExpirations(s.pop.Prune())

	// 2. Motion, decay and reflection
	s.perf.StartPhase(telemetry.PhaseUpdate)
	for n := s.pop.Step(s.bounds); n > 0; n-- {
		s.collector.RecordQuarantine()
	}

	// 3. Pairwise interaction
	s.perf.StartPhase(telemetry.PhaseInteract)
	res := s.resolver.Resolve(s.pop.Agents(), s.bounds, s.rng)
	s.collector.RecordInteractions(res.Overlaps, res.KinPairs, res.CrossPairs)
	if n := len(res.Evolved); n > 0 {
		s.collector.RecordEvolutions(n)
		s.achievements.RecordEvolutions(n)
		for _, ev := range res.Evolved {
			s.emit(telemetry.NewEvolvedEvent(s.tick, ev.X, ev.Y, ev.Category))
		}
	}

	// 4. Metrics
	s.perf.StartPhase(telemetry.PhaseMetrics)
	snap, events := s.engine.Update(s.tick, s.pop.Census())
	for _, ev := range events {
		s.emit(ev)
	}

	// 5. Achievements and window stats
	s.perf.StartPhase(telemetry.PhaseTelemetry)
	s.checkAchievements(snap)
	s.flushTelemetry(snap)

	s.perf.EndTick()

	s.views = s.pop.Views(s.views[:0], s.tick)
	return Frame{
		Tick:     s.tick,
		Entities: s.views,
		Metrics:  snap,
		Events:   s.events,
	}
}

// emit adds an event to the current frame.
func (s *Sim) emit(ev telemetry.Event) {
	s.events = append(s.events, ev)
	if s.listener != nil {
		s.listener(ev)
	}
}

// emitPending queues an event raised between frames for the next frame.
func (s *Sim) emitPending(ev telemetry.Event) {
	s.pending = append(s.pending, ev)
	if s.listener != nil {
		s.listener(ev)
	}
}

// Close flushes and closes experiment output.
func (s *Sim) Close() error {
	return s.output.Close()
}

// Tick returns the number of completed steps.
func (s *Sim) Tick() int64 {
	return s.tick
}

// Bounds returns the current simulation bounds.
func (s *Sim) Bounds() systems.Bounds {
	return s.bounds
}

// Table returns the category table.
func (s *Sim) Table() *mood.Table {
	return s.table
}

// Config returns the simulation's config.
func (s *Sim) Config() *config.Config {
	return s.cfg
}

// Len returns the current population size.
func (s *Sim) Len() int {
	return s.pop.Len()
}

// Metrics returns the most recent snapshot.
func (s *Sim) Metrics() telemetry.Snapshot {
	return s.engine.Last()
}

// RecordFrame records render timing for the perf collector.
func (s *Sim) RecordFrame() {
	s.perf.RecordFrame()
}

// PerfStats returns timing statistics over the current perf window.
func (s *Sim) PerfStats() telemetry.PerfStats {
	return s.perf.Stats()
}
