// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Metrics strategies.
const (
	StrategyBalance = "balance"
	StrategyHealth  = "health"
)

// Config holds all simulation configuration parameters.
type Config struct {
	Screen       ScreenConfig       `yaml:"screen"`
	Entity       EntityConfig       `yaml:"entity"`
	Interaction  InteractionConfig  `yaml:"interaction"`
	Input        InputConfig        `yaml:"input"`
	Metrics      MetricsConfig      `yaml:"metrics"`
	Categories   []CategoryConfig   `yaml:"categories"`
	Telemetry    TelemetryConfig    `yaml:"telemetry"`
	Achievements AchievementsConfig `yaml:"achievements"`
	Autopilot    AutopilotConfig    `yaml:"autopilot"`
	Audio        AudioConfig        `yaml:"audio"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings. Width and height are also the
// initial simulation bounds.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// EntityConfig holds entity creation and per-frame decay parameters.
type EntityConfig struct {
	MinSize        float64 `yaml:"min_size"`
	SizeRange      float64 `yaml:"size_range"`
	Lifespan       int     `yaml:"lifespan"`
	VelocitySpread float64 `yaml:"velocity_spread"`
	AngularSpread  float64 `yaml:"angular_spread"`
	SizeDecay      float64 `yaml:"size_decay"`
}

// InteractionConfig holds pairwise overlap rules.
type InteractionConfig struct {
	Repulsion     float64 `yaml:"repulsion"`
	CrossPenalty  int     `yaml:"cross_penalty"`
	KinBonus      int     `yaml:"kin_bonus"`
	EvolveChance  float64 `yaml:"evolve_chance"`
	EvolveGrowth  float64 `yaml:"evolve_growth"`
	GridThreshold int     `yaml:"grid_threshold"`
}

// InputConfig holds pointer-driven spawn parameters.
type InputConfig struct {
	MoveSpawnChance float64 `yaml:"move_spawn_chance"`
	ClickBurst      int     `yaml:"click_burst"`
}

// MetricsConfig selects the metrics strategy and its constants.
type MetricsConfig struct {
	Strategy         string    `yaml:"strategy"`
	IdealPopulation  float64   `yaml:"ideal_population"`
	HealthRate       float64   `yaml:"health_rate"`
	InitialHealth    float64   `yaml:"initial_health"`
	HealthThresholds []float64 `yaml:"health_thresholds"`
	StageSize        int       `yaml:"stage_size"`
	Goals            []string  `yaml:"goals"`
}

// CategoryConfig defines one emotional category.
type CategoryConfig struct {
	Name          string  `yaml:"name"`
	Color         string  `yaml:"color"`
	Speed         float64 `yaml:"speed"`
	Size          float64 `yaml:"size"`
	ParticleColor string  `yaml:"particle_color"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow float64 `yaml:"stats_window"`
	PerfWindow  int     `yaml:"perf_window"`
}

// AchievementsConfig holds one-shot achievement thresholds.
type AchievementsConfig struct {
	BalancedThreshold float64 `yaml:"balanced_threshold"`
	PerfectBalance    float64 `yaml:"perfect_balance"`
	Evolutions        int     `yaml:"evolutions"`
	Population        int     `yaml:"population"`
	SustainedBalance  float64 `yaml:"sustained_balance"`
	SustainedSeconds  float64 `yaml:"sustained_seconds"`
}

// AutopilotConfig drives the synthetic pointer used by headless runs.
type AutopilotConfig struct {
	Step             float64 `yaml:"step"`
	ClickInterval    int     `yaml:"click_interval"`
	CategoryInterval int     `yaml:"category_interval"`
}

// AudioConfig holds event chime settings for the graphical frontends.
type AudioConfig struct {
	Enabled    bool    `yaml:"enabled"`
	SampleRate int     `yaml:"sample_rate"`
	Volume     float64 `yaml:"volume"` // linear, 0..1
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT               float64          // seconds per frame
	EvolutionEnabled bool             // evolve only runs under the balance strategy
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Validate reports the first setting the simulation cannot run with.
func (c *Config) Validate() error {
	if len(c.Categories) == 0 {
		return errors.New("config: at least one category is required")
	}
	if len(c.Categories) > 254 {
		return fmt.Errorf("config: %d categories exceeds the limit of 254", len(c.Categories))
	}
	if c.Entity.Lifespan <= 0 {
		return fmt.Errorf("config: entity.lifespan must be positive, got %d", c.Entity.Lifespan)
	}
	if c.Entity.SizeDecay <= 0 || c.Entity.SizeDecay > 1 {
		return fmt.Errorf("config: entity.size_decay must be in (0,1], got %v", c.Entity.SizeDecay)
	}
	switch c.Metrics.Strategy {
	case StrategyBalance, StrategyHealth:
	default:
		return fmt.Errorf("config: unknown metrics.strategy %q", c.Metrics.Strategy)
	}
	if c.Metrics.StageSize <= 0 {
		return fmt.Errorf("config: metrics.stage_size must be positive, got %d", c.Metrics.StageSize)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	fps := c.Screen.TargetFPS
	if fps <= 0 {
		fps = 60
	}
	c.Derived.DT = 1.0 / float64(fps)

	c.Derived.EvolutionEnabled = c.Metrics.Strategy == StrategyBalance
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
