package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/moodbiome/autopilot"
	"github.com/pthm-cable/moodbiome/config"
	"github.com/pthm-cable/moodbiome/game"
	"github.com/pthm-cable/moodbiome/sim"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int64("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	pilot := flag.Bool("autopilot", false, "Drive the pointer with Perlin noise (always on when headless)")
	balancing := flag.Bool("balancing", false, "Autopilot selects the least populated category")
	mute := flag.Bool("mute", false, "Disable event chimes")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// Use config stats window if not overridden by CLI
	if *statsWindow > 0 {
		cfg.Telemetry.StatsWindow = *statsWindow
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	simOpts := sim.Options{
		Seed:      rngSeed,
		OutputDir: *outputDir,
		LogStats:  *logStats,
	}

	if *headless {
		if err := runHeadless(cfg, simOpts, *maxTicks, *balancing); err != nil {
			slog.Error("headless run failed", "error", err)
			os.Exit(1)
		}
		return
	}

	// Graphical mode
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Mood Biome")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	g, err := game.NewGame(cfg, game.Options{
		Sim:       simOpts,
		Autopilot: *pilot,
		PilotSeed: rngSeed,
		Sound:     !*mute,
	})
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer g.Unload()

	for !rl.WindowShouldClose() {
		g.Update()
		g.Draw()

		if *maxTicks > 0 && g.Tick() >= *maxTicks {
			break
		}
	}
}

// runHeadless steps the simulation as fast as possible under the autopilot
// until maxTicks or an interrupt.
func runHeadless(cfg *config.Config, opts sim.Options, maxTicks int64, balancing bool) error {
	s, err := sim.New(cfg, opts)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			slog.Error("closing output", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := autopilot.New(cfg.Autopilot, opts.Seed)
	p.Balancing = balancing

	sc := sim.NewScheduler(s, 0)
	drive := func(s *sim.Sim) { p.Drive(s) }
	sc.Post(drive)

	slog.Info("starting headless simulation",
		"seed", opts.Seed,
		"stats_window", cfg.Telemetry.StatsWindow,
		"max_ticks", maxTicks,
		"strategy", cfg.Metrics.Strategy,
	)

	err = sc.Run(ctx, maxTicks, func(sim.Frame) {
		sc.Post(drive)
	})
	if errors.Is(err, context.Canceled) {
		slog.Info("interrupted", "tick", s.Tick())
		return nil
	}
	if err != nil {
		return err
	}

	m := s.Metrics()
	slog.Info("max ticks reached",
		"tick", s.Tick(),
		"population", m.Population,
		"balance", m.Balance,
		"dominant", s.Table().Name(m.Dominant),
	)
	return nil
}
