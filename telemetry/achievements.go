package telemetry

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/moodbiome/config"
)

// AchievementID identifies a one-shot achievement.
type AchievementID string

const (
	AchievementBalanced         AchievementID = "balanced_ecosystem"
	AchievementEvolutions       AchievementID = "evolutions"
	AchievementPerfectBalance   AchievementID = "perfect_balance"
	AchievementPopulation       AchievementID = "population"
	AchievementSustainedBalance AchievementID = "sustained_balance"
)

// Achievement is an unlocked goal.
type Achievement struct {
	ID          AchievementID `csv:"id"`
	Tick        int64         `csv:"tick"`
	Description string        `csv:"description"`
}

// LogAchievement logs the achievement using slog.
func (a Achievement) LogAchievement() {
	slog.Info("achievement",
		"id", string(a.ID),
		"tick", a.Tick,
		"description", a.Description,
	)
}

// AchievementTracker watches snapshots for the goals and unlocks each at
// most once per run.
type AchievementTracker struct {
	cfg      config.AchievementsConfig
	unlocked map[AchievementID]bool

	evolutions int

	// Consecutive frames above the sustained balance threshold
	sustainedTicks  int64
	sustainedNeeded int64
}

// NewAchievementTracker creates a tracker. dt converts the sustained
// duration to frames.
func NewAchievementTracker(cfg config.AchievementsConfig, dt float64) *AchievementTracker {
	needed := int64(1)
	if dt > 0 {
		needed = int64(cfg.SustainedSeconds / dt)
	}
	if needed < 1 {
		needed = 1
	}
	return &AchievementTracker{
		cfg:             cfg,
		unlocked:        make(map[AchievementID]bool),
		sustainedNeeded: needed,
	}
}

// RecordEvolutions adds to the run's evolution total.
func (at *AchievementTracker) RecordEvolutions(n int) {
	at.evolutions += n
}

// Unlocked reports whether an achievement has been unlocked.
func (at *AchievementTracker) Unlocked(id AchievementID) bool {
	return at.unlocked[id]
}

// Check analyzes the latest snapshot and returns newly unlocked achievements.
func (at *AchievementTracker) Check(snap Snapshot) []Achievement {
	var out []Achievement

	// An empty world scores 100 balance; it earns nothing.
	populated := snap.Population > 0

	if populated && snap.Balance > at.cfg.SustainedBalance {
		at.sustainedTicks++
	} else {
		at.sustainedTicks = 0
	}

	if a := at.unlock(AchievementBalanced, snap.Tick, populated && snap.Balance >= at.cfg.BalancedThreshold,
		"Balanced ecosystem created (%.0f%% balance)", snap.Balance); a != nil {
		out = append(out, *a)
	}
	if a := at.unlock(AchievementEvolutions, snap.Tick, at.cfg.Evolutions > 0 && at.evolutions >= at.cfg.Evolutions,
		"%d entities evolved", at.evolutions); a != nil {
		out = append(out, *a)
	}
	if a := at.unlock(AchievementPerfectBalance, snap.Tick, populated && snap.Balance >= at.cfg.PerfectBalance,
		"Perfect balance achieved with %d entities", snap.Population); a != nil {
		out = append(out, *a)
	}
	if a := at.unlock(AchievementPopulation, snap.Tick, at.cfg.Population > 0 && snap.Population >= at.cfg.Population,
		"Population reached %d", snap.Population); a != nil {
		out = append(out, *a)
	}
	if a := at.unlock(AchievementSustainedBalance, snap.Tick, at.sustainedTicks >= at.sustainedNeeded,
		"Balance held above %.0f%% for %.0f seconds", at.cfg.SustainedBalance, at.cfg.SustainedSeconds); a != nil {
		out = append(out, *a)
	}

	return out
}

func (at *AchievementTracker) unlock(id AchievementID, tick int64, met bool, format string, args ...any) *Achievement {
	if !met || at.unlocked[id] {
		return nil
	}
	at.unlocked[id] = true
	return &Achievement{
		ID:          id,
		Tick:        tick,
		Description: fmt.Sprintf(format, args...),
	}
}
