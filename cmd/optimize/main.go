// Command optimize searches interaction and entity parameters with CMA-ES
// for settings that keep an autopilot-driven ecosystem balanced and its
// population steady.
//
// Every evaluation is appended to optimize_log.csv in the output directory,
// and the best parameters are written over the base config as
// best_config.yaml.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pthm-cable/moodbiome/config"
)

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	maxTicks := flag.Int64("max-ticks", 7200, "Simulation duration per run in ticks")
	seeds := flag.Int("seeds", 3, "Number of seeds per evaluation")
	maxEvals := flag.Int("max-evals", 200, "Maximum number of evaluations")
	outputDir := flag.String("output", "", "Output directory for results")
	balancing := flag.Bool("balancing", false, "Autopilot selects the least populated category")
	flag.Parse()

	if err := run(*configPath, *outputDir, *maxTicks, *seeds, *maxEvals, *balancing); err != nil {
		fmt.Fprintf(os.Stderr, "optimize: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, outputDir string, maxTicks int64, seeds, maxEvals int, balancing bool) error {
	if outputDir == "" {
		return errors.New("-output is required")
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	// Per-run simulation logs would drown the progress output
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))

	if err := config.Init(configPath); err != nil {
		return err
	}
	baseCfg := config.Cfg()

	logFile, err := os.Create(filepath.Join(outputDir, "optimize_log.csv"))
	if err != nil {
		return fmt.Errorf("creating optimize log: %w", err)
	}
	defer logFile.Close()

	params := NewParamVector()
	evaluator := NewFitnessEvaluator(params, maxTicks, evalSeeds(seeds), baseCfg, balancing)
	s := newSearch(params, evaluator, maxEvals, logFile, os.Stdout)

	fmt.Printf("%d seeds x %d ticks per evaluation, balancing autopilot: %v\n", seeds, maxTicks, balancing)
	if err := s.Run(baseCfg); err != nil {
		fmt.Printf("search stopped early: %v\n", err)
	}
	s.Summary()

	// Reload so the written config carries only the tuned changes
	bestCfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	out := filepath.Join(outputDir, "best_config.yaml")
	if err := s.WriteBest(bestCfg, out); err != nil {
		return fmt.Errorf("writing best config: %w", err)
	}
	fmt.Printf("\nbest config saved to %s\n", out)
	return nil
}

// evalSeeds returns n fixed seeds so every evaluation sees the same runs.
func evalSeeds(n int) []int64 {
	seeds := make([]int64, n)
	for i := range seeds {
		seeds[i] = int64(i*1000 + 42)
	}
	return seeds
}
