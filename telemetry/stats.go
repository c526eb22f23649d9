package telemetry

import (
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/moodbiome/mood"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int64   `csv:"-"`
	WindowEndTick   int64   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Metrics at window end
	Population int     `csv:"population"`
	Dominant   string  `csv:"dominant"`
	Balance    float64 `csv:"balance"`
	Health     float64 `csv:"health"`
	Stage      int     `csv:"stage"`
	Mix        string  `csv:"mix"` // name:count pairs in table order

	// Events during window
	Spawns      int `csv:"spawns"`
	Expirations int `csv:"expirations"`
	Evolutions  int `csv:"evolutions"`
	Quarantines int `csv:"quarantines"`
	Overlaps    int `csv:"overlaps"`
	KinPairs    int `csv:"kin_pairs"`
	CrossPairs  int `csv:"cross_pairs"`

	// Size distribution (sampled at window end)
	SizeMean float64 `csv:"size_mean"`
	SizeStd  float64 `csv:"size_std"`
	SizeP10  float64 `csv:"size_p10"`
	SizeP50  float64 `csv:"size_p50"`
	SizeP90  float64 `csv:"size_p90"`

	// Remaining lifespan distribution
	LifespanMean float64 `csv:"lifespan_mean"`
	LifespanP10  float64 `csv:"lifespan_p10"`
	LifespanP50  float64 `csv:"lifespan_p50"`
	LifespanP90  float64 `csv:"lifespan_p90"`
}

// Distribution summarizes a sample.
type Distribution struct {
	Mean, Std     float64
	P10, P50, P90 float64
}

// Percentile returns the p-th quantile of a sorted slice using the
// empirical CDF. p is clamped to [0, 1]. Returns 0 if the slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	return stat.Quantile(clamp(p, 0, 1), stat.Empirical, sorted, nil)
}

// ComputeDistribution calculates mean, std-dev and percentiles. values is
// not modified.
func ComputeDistribution(values []float64) Distribution {
	n := len(values)
	if n == 0 {
		return Distribution{}
	}

	var d Distribution
	if n == 1 {
		d.Mean = values[0]
	} else {
		d.Mean, d.Std = stat.MeanStdDev(values, nil)
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	d.P10 = Percentile(sorted, 0.10)
	d.P50 = Percentile(sorted, 0.50)
	d.P90 = Percentile(sorted, 0.90)
	return d
}

// FormatMix renders per-category counts as "joy:3 sadness:0 ...".
func FormatMix(table *mood.Table, counts []int) string {
	var b strings.Builder
	for i, c := range counts {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(table.Name(mood.ID(i)))
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(c))
	}
	return b.String()
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartTick),
		slog.Int64("window_end", s.WindowEndTick),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("population", s.Population),
		slog.String("dominant", s.Dominant),
		slog.Float64("balance", s.Balance),
		slog.Float64("health", s.Health),
		slog.Int("stage", s.Stage),
		slog.String("mix", s.Mix),
		slog.Int("spawns", s.Spawns),
		slog.Int("expirations", s.Expirations),
		slog.Int("evolutions", s.Evolutions),
		slog.Int("quarantines", s.Quarantines),
		slog.Int("overlaps", s.Overlaps),
		slog.Float64("size_mean", s.SizeMean),
		slog.Float64("size_p50", s.SizeP50),
		slog.Float64("lifespan_mean", s.LifespanMean),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"population", s.Population,
		"dominant", s.Dominant,
		"balance", s.Balance,
		"health", s.Health,
		"stage", s.Stage,
		"mix", s.Mix,
		"spawns", s.Spawns,
		"expirations", s.Expirations,
		"evolutions", s.Evolutions,
		"quarantines", s.Quarantines,
		"overlaps", s.Overlaps,
		"kin_pairs", s.KinPairs,
		"cross_pairs", s.CrossPairs,
		"size_mean", s.SizeMean,
		"size_p50", s.SizeP50,
		"lifespan_mean", s.LifespanMean,
		"lifespan_p50", s.LifespanP50,
	)
}
