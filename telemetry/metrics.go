package telemetry

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/pthm-cable/moodbiome/config"
	"github.com/pthm-cable/moodbiome/mood"
)

// Snapshot is the per-frame metrics record.
type Snapshot struct {
	Tick       int64
	Population int
	Counts     []int // live count per category, indexed by mood.ID
	Dominant   mood.ID
	Balance    float64 // [0,100]

	// Health is only tracked by the health strategy, Stage and Goal only by
	// the balance strategy. Inactive fields are zero.
	Health float64
	Stage  int
	Goal   string

	Strategy string
}

// DominantCategory returns the category with the highest count. Ties go to
// the first category in table order; an empty population has none.
func DominantCategory(counts []int) mood.ID {
	best := mood.None
	bestCount := 0
	for i, c := range counts {
		if c > bestCount {
			best = mood.ID(i)
			bestCount = c
		}
	}
	return best
}

// Balance scores how evenly the population is spread over all categories.
// Categories with no live entities count as zero and still set the ideal
// share, so {5,5,5,5,0} scores 0 rather than the 75 a present-only count
// would give. An empty population is perfectly balanced.
func Balance(counts []int) float64 {
	if len(counts) == 0 {
		return 100
	}
	total := 0
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return 100
	}

	ideal := float64(total) / float64(len(counts))
	var maxDev float64
	for _, c := range counts {
		maxDev = math.Max(maxDev, math.Abs(float64(c)-ideal))
	}

	return clamp(100-100*maxDev/ideal, 0, 100)
}

// Strategy computes the stateful part of a snapshot: stage or health.
type Strategy interface {
	Name() string
	// Update fills the strategy's snapshot fields and appends its events.
	Update(snap *Snapshot, events []Event) []Event
}

// BalanceStrategy tracks the evolution stage as a high-water mark.
type BalanceStrategy struct {
	stageSize int
	goals     []string
	stage     int
}

// NewBalanceStrategy creates the balance strategy at stage 1.
func NewBalanceStrategy(stageSize int, goals []string) *BalanceStrategy {
	if stageSize <= 0 {
		stageSize = 100
	}
	return &BalanceStrategy{
		stageSize: stageSize,
		goals:     goals,
		stage:     1,
	}
}

func (s *BalanceStrategy) Name() string { return config.StrategyBalance }

func (s *BalanceStrategy) Update(snap *Snapshot, events []Event) []Event {
	reached := snap.Population/s.stageSize + 1
	for s.stage < reached {
		s.stage++
		events = append(events, NewStageEvent(snap.Tick, s.stage))
		slog.Info("stage_advanced", "tick", snap.Tick, "stage", s.stage, "population", snap.Population)
	}
	snap.Stage = s.stage
	snap.Goal = s.goal()
	return events
}

// goal returns the goal text for the current stage; stages past the end of
// the list keep the last goal.
func (s *BalanceStrategy) goal() string {
	if len(s.goals) == 0 {
		return ""
	}
	i := s.stage - 1
	if i >= len(s.goals) {
		i = len(s.goals) - 1
	}
	return s.goals[i]
}

// HealthStrategy integrates ecosystem health from the population's distance
// to an ideal size.
type HealthStrategy struct {
	ideal      float64
	rate       float64
	thresholds []float64
	health     float64
}

// NewHealthStrategy creates the health strategy with the given starting health.
func NewHealthStrategy(ideal, rate, initial float64, thresholds []float64) *HealthStrategy {
	return &HealthStrategy{
		ideal:      ideal,
		rate:       rate,
		thresholds: thresholds,
		health:     clamp(initial, 0, 100),
	}
}

func (s *HealthStrategy) Name() string { return config.StrategyHealth }

// Health returns the current health.
func (s *HealthStrategy) Health() float64 { return s.health }

func (s *HealthStrategy) Update(snap *Snapshot, events []Event) []Event {
	prev := s.health
	s.health = clamp(prev-(float64(snap.Population)-s.ideal)*s.rate, 0, 100)

	for _, t := range s.thresholds {
		switch {
		case prev < t && s.health >= t:
			events = append(events, NewHealthEvent(snap.Tick, t, DirectionUp))
		case prev >= t && s.health < t:
			events = append(events, NewHealthEvent(snap.Tick, t, DirectionDown))
		default:
			continue
		}
		slog.Info("health_threshold_crossed", "tick", snap.Tick, "threshold", t, "health", s.health)
	}
	snap.Health = s.health
	return events
}

// NewStrategy builds the strategy selected by config.
func NewStrategy(cfg *config.Config) (Strategy, error) {
	m := cfg.Metrics
	switch m.Strategy {
	case config.StrategyBalance:
		return NewBalanceStrategy(m.StageSize, m.Goals), nil
	case config.StrategyHealth:
		return NewHealthStrategy(m.IdealPopulation, m.HealthRate, m.InitialHealth, m.HealthThresholds), nil
	default:
		return nil, fmt.Errorf("unknown metrics strategy %q", m.Strategy)
	}
}

// Engine computes a Snapshot from each frame's census.
type Engine struct {
	strategy Strategy
	last     Snapshot
	events   []Event
}

// NewEngine creates an engine around a strategy.
func NewEngine(s Strategy) *Engine {
	return &Engine{strategy: s}
}

// Update computes the snapshot for this frame. counts is copied. The
// returned event slice is reused by the next call.
func (e *Engine) Update(tick int64, counts []int) (Snapshot, []Event) {
	snap := Snapshot{
		Tick:     tick,
		Counts:   append([]int(nil), counts...),
		Strategy: e.strategy.Name(),
	}
	for _, c := range counts {
		snap.Population += c
	}
	snap.Dominant = DominantCategory(counts)
	snap.Balance = Balance(counts)

	e.events = e.strategy.Update(&snap, e.events[:0])
	e.last = snap
	return snap, e.events
}

// Last returns the most recent snapshot.
func (e *Engine) Last() Snapshot {
	return e.last
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
