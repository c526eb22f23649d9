package sim

import (
	"log/slog"

	"github.com/pthm-cable/moodbiome/telemetry"
)

// checkAchievements unlocks goals met by this frame's snapshot.
func (s *Sim) checkAchievements(snap telemetry.Snapshot) {
	for _, a := range s.achievements.Check(snap) {
		a.LogAchievement()
		if err := s.output.WriteAchievement(a); err != nil {
			slog.Error("failed to write achievement", "error", err)
		}
		s.emit(telemetry.NewAchievementEvent(a))
	}
}

// flushTelemetry checks if the stats window should be flushed.
func (s *Sim) flushTelemetry(snap telemetry.Snapshot) {
	if !s.collector.ShouldFlush(s.tick) {
		return
	}

	s.sizes, s.lifespans = s.pop.Samples(s.sizes[:0], s.lifespans[:0])
	stats := s.collector.Flush(snap, s.table, s.sizes, s.lifespans)
	perfStats := s.perf.Stats()

	if s.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := s.output.WriteTelemetry(stats); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
	if err := s.output.WritePerf(perfStats, stats.WindowEndTick, stats.Population); err != nil {
		slog.Error("failed to write perf", "error", err)
	}
}
