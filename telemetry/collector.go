package telemetry

import "github.com/pthm-cable/moodbiome/mood"

// Collector accumulates frame activity within time windows and produces WindowStats.
type Collector struct {
	windowDurationTicks int64
	dt                  float64

	windowStartTick int64

	// Counters for the current window
	spawns      int
	expirations int
	evolutions  int
	quarantines int
	overlaps    int
	kinPairs    int
	crossPairs  int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick
func NewCollector(windowDurationSec, dt float64) *Collector {
	ticks := int64(1)
	if dt > 0 {
		ticks = int64(windowDurationSec / dt)
	}
	if ticks < 1 {
		ticks = 1
	}
	return &Collector{
		windowDurationTicks: ticks,
		dt:                  dt,
	}
}

// RecordSpawns records n new entities.
func (c *Collector) RecordSpawns(n int) {
	c.spawns += n
}

// RecordExpirations records n pruned entities.
func (c *Collector) RecordExpirations(n int) {
	c.expirations += n
}

// RecordEvolutions records n evolutions.
func (c *Collector) RecordEvolutions(n int) {
	c.evolutions += n
}

// RecordQuarantine records an entity removed for non-finite state.
func (c *Collector) RecordQuarantine() {
	c.quarantines++
}

// RecordInteractions records one frame's pair counts.
func (c *Collector) RecordInteractions(overlaps, kin, cross int) {
	c.overlaps += overlaps
	c.kinPairs += kin
	c.crossPairs += cross
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int64) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
// sizes and lifespans are sampled from the live population at window end.
func (c *Collector) Flush(snap Snapshot, table *mood.Table, sizes, lifespans []float64) WindowStats {
	size := ComputeDistribution(sizes)
	life := ComputeDistribution(lifespans)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   snap.Tick,
		SimTimeSec:      float64(snap.Tick) * c.dt,

		Population: snap.Population,
		Dominant:   table.Name(snap.Dominant),
		Balance:    snap.Balance,
		Health:     snap.Health,
		Stage:      snap.Stage,
		Mix:        FormatMix(table, snap.Counts),

		Spawns:      c.spawns,
		Expirations: c.expirations,
		Evolutions:  c.evolutions,
		Quarantines: c.quarantines,
		Overlaps:    c.overlaps,
		KinPairs:    c.kinPairs,
		CrossPairs:  c.crossPairs,

		SizeMean: size.Mean,
		SizeStd:  size.Std,
		SizeP10:  size.P10,
		SizeP50:  size.P50,
		SizeP90:  size.P90,

		LifespanMean: life.Mean,
		LifespanP10:  life.P10,
		LifespanP50:  life.P50,
		LifespanP90:  life.P90,
	}

	c.windowStartTick = snap.Tick
	c.spawns = 0
	c.expirations = 0
	c.evolutions = 0
	c.quarantines = 0
	c.overlaps = 0
	c.kinPairs = 0
	c.crossPairs = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int64 {
	return c.windowDurationTicks
}
