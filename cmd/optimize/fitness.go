package main

import (
	"math"
	"slices"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/moodbiome/autopilot"
	"github.com/pthm-cable/moodbiome/config"
	"github.com/pthm-cable/moodbiome/sim"
)

// Fitness component weights.
const (
	weightBalance   = 0.7
	weightStability = 0.3

	warmupWindows = 3 // skip first N windows while the pointer fills the screen
	minViablePop  = 5 // windows below this population score zero balance
)

// SeedScore is the outcome of one seeded run.
type SeedScore struct {
	Seed       int64
	Balance    float64 // mean window balance in [0,1], past warmup
	Stability  float64 // exp(-cv^2) of the window populations
	Population float64 // mean window population
	Fitness    float64
}

// Evaluation is the outcome of one parameter vector over every seed.
// The aggregate fields are means over Seeds.
type Evaluation struct {
	Fitness    float64 // lower = better, in [-1, 0]
	Balance    float64
	Stability  float64
	Population float64
	Seeds      []SeedScore
}

// FitnessEvaluator runs headless simulations under the autopilot and
// scores them.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    int64
	seeds       []int64
	baseConfig  *config.Config
	statsWindow float64
	balancing   bool
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int64, seeds []int64, baseCfg *config.Config, balancing bool) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		statsWindow: 5.0,
		balancing:   balancing,
	}
}

// window is one sample of the run, taken every statsWindow seconds.
type window struct {
	population int
	balance    float64
}

// Evaluate scores a raw parameter vector. Seeds run in parallel; a seed
// whose simulation fails to start scores zero.
func (fe *FitnessEvaluator) Evaluate(x []float64) Evaluation {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	// The config is read-only from here
	scores := make([]SeedScore, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			scores[idx].Seed = s
			windows, err := fe.runSimulation(cfg, s)
			if err != nil {
				return
			}
			scores[idx] = score(windows)
			scores[idx].Seed = s
		}(i, seed)
	}
	wg.Wait()

	return summarize(scores)
}

// summarize averages seed scores into an Evaluation.
func summarize(scores []SeedScore) Evaluation {
	ev := Evaluation{Seeds: scores}
	if len(scores) == 0 {
		return ev
	}
	col := func(f func(SeedScore) float64) float64 {
		vals := make([]float64, len(scores))
		for i, s := range scores {
			vals[i] = f(s)
		}
		return stat.Mean(vals, nil)
	}
	ev.Fitness = col(func(s SeedScore) float64 { return s.Fitness })
	ev.Balance = col(func(s SeedScore) float64 { return s.Balance })
	ev.Stability = col(func(s SeedScore) float64 { return s.Stability })
	ev.Population = col(func(s SeedScore) float64 { return s.Population })
	return ev
}

// runSimulation executes a single headless run and samples one window every
// statsWindow seconds.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config, seed int64) ([]window, error) {
	s, err := sim.New(cfg, sim.Options{Seed: seed})
	if err != nil {
		return nil, err
	}
	defer s.Close()

	pilot := autopilot.New(cfg.Autopilot, seed)
	pilot.Balancing = fe.balancing

	windowTicks := int64(fe.statsWindow / cfg.Derived.DT)
	if windowTicks < 1 {
		windowTicks = 1
	}

	windows := make([]window, 0, fe.maxTicks/windowTicks)
	for s.Tick() < fe.maxTicks {
		pilot.Drive(s)
		f := s.Step()
		if f.Tick%windowTicks == 0 {
			windows = append(windows, window{population: f.Metrics.Population, balance: f.Metrics.Balance})
		}
	}
	return windows, nil
}

// score rates the windows past warmup. Windows with fewer than
// minViablePop entities count as zero balance.
func score(windows []window) SeedScore {
	if len(windows) <= warmupWindows {
		return SeedScore{}
	}
	valid := windows[warmupWindows:]

	balances := make([]float64, len(valid))
	pops := make([]float64, len(valid))
	for i, w := range valid {
		pops[i] = float64(w.population)
		// An empty or near-empty screen is trivially balanced
		if w.population >= minViablePop {
			balances[i] = w.balance / 100
		}
	}

	var sc SeedScore
	sc.Balance = stat.Mean(balances, nil)
	sc.Population = stat.Mean(pops, nil)
	if len(pops) >= 2 {
		mean, std := stat.MeanStdDev(pops, nil)
		if mean > 0 {
			cv := std / mean
			sc.Stability = math.Exp(-cv * cv)
		}
	}
	sc.Fitness = -(weightBalance*sc.Balance + weightStability*sc.Stability)
	return sc
}

// copyConfig creates a deep copy of the base config.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	cfg.Categories = slices.Clone(fe.baseConfig.Categories)
	cfg.Metrics.Goals = slices.Clone(fe.baseConfig.Metrics.Goals)
	cfg.Metrics.HealthThresholds = slices.Clone(fe.baseConfig.Metrics.HealthThresholds)
	return &cfg
}
