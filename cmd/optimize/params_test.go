package main

import (
	"math"
	"strings"
	"testing"

	"github.com/pthm-cable/moodbiome/config"
)

func TestDefaultsMatchConfig(t *testing.T) {
	pv := NewParamVector()
	got := pv.ExtractFromConfig(config.Default())
	want := pv.DefaultVector()

	for i, spec := range pv.Specs {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("%s: config has %v, spec default %v", spec.Path, got[i], want[i])
		}
	}
}

func TestApplyClampsAndRounds(t *testing.T) {
	pv := NewParamVector()
	cfg := config.Default()

	values := pv.DefaultVector()
	values[1] = 3.6   // cross_penalty
	values[4] = 99999 // lifespan
	values[5] = 0.5   // size_decay
	pv.ApplyToConfig(cfg, values)

	if cfg.Interaction.CrossPenalty != 4 {
		t.Errorf("cross_penalty = %d, want 4", cfg.Interaction.CrossPenalty)
	}
	if cfg.Entity.Lifespan != 2000 {
		t.Errorf("lifespan = %d, want clamped to 2000", cfg.Entity.Lifespan)
	}
	if cfg.Entity.SizeDecay != 0.995 {
		t.Errorf("size_decay = %v, want clamped to 0.995", cfg.Entity.SizeDecay)
	}
}

func TestFormat(t *testing.T) {
	pv := NewParamVector()
	got := pv.Format(pv.DefaultVector())
	if !strings.HasPrefix(got, "repulsion=0.001 cross_penalty=5 ") {
		t.Errorf("Format = %q", got)
	}
	if n := len(strings.Fields(got)); n != pv.Dim() {
		t.Errorf("Format has %d fields, want %d", n, pv.Dim())
	}
}

func TestScore(t *testing.T) {
	steady := make([]window, 10)
	for i := range steady {
		steady[i] = window{population: 100, balance: 80}
	}

	tests := []struct {
		name          string
		windows       []window
		wantBalance   float64
		wantStability float64
		wantPop       float64
	}{
		{"too short", steady[:warmupWindows], 0, 0, 0},
		{"steady", steady, 0.8, 1, 100},
		{"empty screen", []window{{}, {}, {}, {0, 100}, {0, 100}}, 0, 0, 0},
		// 3 and 9 after warmup: only the second is viable, cv^2 = 18/36
		{"sparse window", []window{{}, {}, {}, {3, 100}, {9, 50}}, 0.25, math.Exp(-0.5), 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := score(tt.windows)
			if math.Abs(sc.Balance-tt.wantBalance) > 1e-9 || math.Abs(sc.Stability-tt.wantStability) > 1e-9 {
				t.Errorf("score = (%v, %v), want (%v, %v)", sc.Balance, sc.Stability, tt.wantBalance, tt.wantStability)
			}
			if math.Abs(sc.Population-tt.wantPop) > 1e-9 {
				t.Errorf("population = %v, want %v", sc.Population, tt.wantPop)
			}
			wantFitness := -(weightBalance*tt.wantBalance + weightStability*tt.wantStability)
			if math.Abs(sc.Fitness-wantFitness) > 1e-9 {
				t.Errorf("fitness = %v, want %v", sc.Fitness, wantFitness)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	ev := summarize([]SeedScore{
		{Seed: 1, Balance: 0.6, Stability: 1, Population: 100, Fitness: -0.72},
		{Seed: 2, Balance: 0.2, Stability: 0, Population: 50, Fitness: -0.14},
	})
	if math.Abs(ev.Balance-0.4) > 1e-9 || math.Abs(ev.Stability-0.5) > 1e-9 {
		t.Errorf("balance, stability = %v, %v; want 0.4, 0.5", ev.Balance, ev.Stability)
	}
	if math.Abs(ev.Population-75) > 1e-9 || math.Abs(ev.Fitness+0.43) > 1e-9 {
		t.Errorf("population, fitness = %v, %v; want 75, -0.43", ev.Population, ev.Fitness)
	}
	if len(ev.Seeds) != 2 {
		t.Errorf("seeds = %d, want 2", len(ev.Seeds))
	}

	if empty := summarize(nil); empty.Fitness != 0 {
		t.Errorf("empty fitness = %v, want 0", empty.Fitness)
	}
}

func TestEvaluateShortRun(t *testing.T) {
	pv := NewParamVector()
	fe := NewFitnessEvaluator(pv, 1200, []int64{1, 2}, config.Default(), true)

	ev := fe.Evaluate(pv.DefaultVector())
	if ev.Fitness > 0 || ev.Fitness < -1 {
		t.Errorf("fitness = %v, want in [-1, 0]", ev.Fitness)
	}
	if len(ev.Seeds) != 2 || ev.Seeds[0].Seed != 1 || ev.Seeds[1].Seed != 2 {
		t.Fatalf("seeds = %+v, want 1 then 2", ev.Seeds)
	}
	for _, sc := range ev.Seeds {
		if sc.Balance < 0 || sc.Balance > 1 || sc.Stability < 0 || sc.Stability > 1 {
			t.Errorf("seed %d: balance %v stability %v outside [0,1]", sc.Seed, sc.Balance, sc.Stability)
		}
	}
}
