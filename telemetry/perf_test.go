package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseUpdate)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(PhaseInteract)
		time.Sleep(200 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()

	if stats.AvgTickDuration <= 0 {
		t.Error("expected positive average tick duration")
	}
	if stats.PhaseAvg[PhaseUpdate] <= 0 {
		t.Error("expected update phase to be tracked")
	}
	if stats.PhaseAvg[PhaseInteract] <= 0 {
		t.Error("expected interact phase to be tracked")
	}
	if stats.PhaseAvg[PhasePrune] != 0 {
		t.Errorf("prune phase never ran but averaged %v", stats.PhaseAvg[PhasePrune])
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5)

	for i := 0; i < 10; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseUpdate)
		time.Sleep(10 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()

	if stats.AvgTickDuration <= 0 {
		t.Error("expected positive average tick duration after window filled")
	}
	if stats.TicksPerSecond <= 0 {
		t.Error("expected positive ticks per second")
	}
	if stats.MinTickDuration > stats.MaxTickDuration {
		t.Errorf("min %v > max %v", stats.MinTickDuration, stats.MaxTickDuration)
	}
}

func TestPerfCollector_PhasePercentages(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseMetrics)
		time.Sleep(10 * time.Microsecond)
		pc.StartPhase(PhaseInteract)
		time.Sleep(1 * time.Millisecond)
		pc.EndTick()
	}

	stats := pc.Stats()

	if stats.PhasePct[PhaseInteract] <= stats.PhasePct[PhaseMetrics] {
		t.Errorf("expected interact (%v%%) > metrics (%v%%)",
			stats.PhasePct[PhaseInteract], stats.PhasePct[PhaseMetrics])
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	pc := NewPerfCollector(10)

	stats := pc.Stats()

	if stats.AvgTickDuration != 0 || stats.TicksPerSecond != 0 {
		t.Error("expected zero values for empty collector")
	}
}

func TestPerfCollector_FrameTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	pc.RecordFrame()
	time.Sleep(16 * time.Millisecond)
	pc.RecordFrame()

	stats := pc.Stats()

	if stats.FrameDuration < 15*time.Millisecond {
		t.Errorf("expected frame duration >= 15ms, got %v", stats.FrameDuration)
	}
	if stats.FPS <= 0 || stats.FPS > 63 {
		t.Errorf("expected FPS in (0, 63] with 16ms frame time, got %v", stats.FPS)
	}
}

func TestPhaseString(t *testing.T) {
	if PhaseInteract.String() != "interact" {
		t.Errorf("PhaseInteract = %q", PhaseInteract.String())
	}
	if Phase(200).String() != "unknown" {
		t.Errorf("out of range phase = %q", Phase(200).String())
	}
}

func TestWritePerfCSV(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	pc := NewPerfCollector(4)
	pc.StartTick()
	pc.StartPhase(PhasePrune)
	pc.EndTick()

	if err := om.WritePerf(pc.Stats(), 60, 42); err != nil {
		t.Fatalf("WritePerf: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "perf.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("perf.csv has %d lines, want header + 1", len(lines))
	}
	if !strings.HasPrefix(lines[0], "window_end,population,") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "60,42,") {
		t.Errorf("row = %q", lines[1])
	}
}
