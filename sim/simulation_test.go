package sim

import (
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/moodbiome/config"
	"github.com/pthm-cable/moodbiome/mood"
	"github.com/pthm-cable/moodbiome/systems"
	"github.com/pthm-cable/moodbiome/telemetry"
)

// fixedSource returns the same value forever.
type fixedSource float64

func (f fixedSource) Float64() float64 { return float64(f) }

// loadConfig returns the defaults with an optional YAML overlay applied.
func loadConfig(t *testing.T, overlay string) *config.Config {
	t.Helper()
	if overlay == "" {
		return config.Default()
	}
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(overlay), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	return cfg
}

func newTestSim(t *testing.T, overlay string, opts Options) *Sim {
	t.Helper()
	if opts.Rand == nil && opts.Seed == 0 {
		opts.Seed = 1
	}
	s, err := New(loadConfig(t, overlay), opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func countEvents(events []telemetry.Event, typ telemetry.EventType) int {
	n := 0
	for _, ev := range events {
		if ev.Type == typ {
			n++
		}
	}
	return n
}

func TestNewEntityRanges(t *testing.T) {
	cfg := config.Default()
	table := mood.MustTable(cfg.Categories)
	rng := rand.New(rand.NewSource(3))

	for _, cat := range table.All() {
		cat := cat
		t.Run(cat.Name, func(t *testing.T) {
			limit := float32(cfg.Entity.VelocitySpread) * cat.SpeedFactor
			for i := 0; i < 500; i++ {
				e := NewEntity(rng, cfg.Entity, &cat, 10, 20)

				if e.Body.Size < 15 || e.Body.Size > 45 {
					t.Fatalf("size %v outside [15,45)", e.Body.Size)
				}
				if e.Body.SizeHint != e.Body.Size {
					t.Fatalf("size hint %v != size %v", e.Body.SizeHint, e.Body.Size)
				}
				if e.Vel.X < -limit || e.Vel.X > limit || e.Vel.Y < -limit || e.Vel.Y > limit {
					t.Fatalf("velocity (%v,%v) outside +-%v", e.Vel.X, e.Vel.Y, limit)
				}
				if e.Rot.Heading < 0 || e.Rot.Heading > 2*math.Pi {
					t.Fatalf("heading %v outside [0,2pi)", e.Rot.Heading)
				}
				if e.Rot.AngVel < -0.05 || e.Rot.AngVel > 0.05 {
					t.Fatalf("angular velocity %v outside [-0.05,0.05)", e.Rot.AngVel)
				}
				if e.Vital.Lifespan != 1000 || e.Vital.MaxLifespan != 1000 {
					t.Fatalf("lifespan %d/%d, want 1000/1000", e.Vital.Lifespan, e.Vital.MaxLifespan)
				}
				if e.Org.Category != cat.ID || e.Pos.X != 10 || e.Pos.Y != 20 {
					t.Fatalf("entity = %+v", e)
				}
			}
		})
	}
}

func TestNewEntityLowerBounds(t *testing.T) {
	cfg := config.Default()
	table := mood.MustTable(cfg.Categories)
	anger, _ := table.Get(2)

	e := NewEntity(fixedSource(0), cfg.Entity, anger, 0, 0)

	if e.Body.Size != 15 {
		t.Errorf("size = %v, want 15", e.Body.Size)
	}
	// anger speed 3, spread 2
	if e.Vel.X != -6 || e.Vel.Y != -6 {
		t.Errorf("velocity = (%v,%v), want (-6,-6)", e.Vel.X, e.Vel.Y)
	}
	if e.Rot.Heading != 0 {
		t.Errorf("heading = %v, want 0", e.Rot.Heading)
	}
	if math.Abs(float64(e.Rot.AngVel)+0.05) > 1e-7 {
		t.Errorf("angular velocity = %v, want -0.05", e.Rot.AngVel)
	}
}

func TestSpawnInvalidCategory(t *testing.T) {
	s := newTestSim(t, "", Options{})

	if s.Spawn(100, 100, mood.ID(9)) {
		t.Error("spawn with out-of-range category succeeded")
	}
	if s.Spawn(100, 100, mood.None) {
		t.Error("spawn with the None category succeeded")
	}
	if s.Len() != 0 {
		t.Errorf("population = %d, want 0", s.Len())
	}
	if !s.Spawn(100, 100, 0) || s.Len() != 1 {
		t.Error("valid spawn failed")
	}
}

func TestPruneRemovesExpired(t *testing.T) {
	s := newTestSim(t, "entity:\n  lifespan: 2\n", Options{})

	// Far apart so no pair overlaps.
	for i := 0; i < 5; i++ {
		s.Spawn(float32(100+i*200), 400, mood.ID(i))
	}

	f := s.Step() // lifespan 2 -> 1
	if len(f.Entities) != 5 {
		t.Fatalf("frame 1 entities = %d, want 5", len(f.Entities))
	}
	f = s.Step() // 1 -> 0, still present until the next prune
	if len(f.Entities) != 5 {
		t.Fatalf("frame 2 entities = %d, want 5", len(f.Entities))
	}
	for _, e := range f.Entities {
		if e.Alpha != 0 {
			t.Errorf("entity %d alpha = %v, want 0 at zero lifespan", e.ID, e.Alpha)
		}
	}

	f = s.Step()
	if len(f.Entities) != 0 || s.Len() != 0 {
		t.Errorf("after prune: %d entities, Len %d; want 0", len(f.Entities), s.Len())
	}
	if f.Metrics.Population != 0 || f.Metrics.Balance != 100 || f.Metrics.Dominant != mood.None {
		t.Errorf("empty metrics = %+v", f.Metrics)
	}
}

func TestExpiredNeverInteract(t *testing.T) {
	s := newTestSim(t, "entity:\n  lifespan: 2\n  velocity_spread: 0\n  angular_spread: 0\n", Options{})

	s.Spawn(300, 300, 0)
	s.Step()
	if f := s.Step(); len(f.Entities) != 1 || f.Entities[0].Alpha != 0 {
		t.Fatalf("entities = %+v, want one at zero lifespan", f.Entities)
	}

	// Stacked on the expired entity. A cross pair would cost it the penalty.
	s.Spawn(300, 300, 1)
	f := s.Step()

	if len(f.Entities) != 1 || f.Metrics.Population != 1 {
		t.Fatalf("entities = %d, population %d; want 1, 1", len(f.Entities), f.Metrics.Population)
	}
	e := f.Entities[0]
	if e.Category != 1 {
		t.Errorf("survivor category = %v, want 1", e.Category)
	}
	// lifespan 2 -> 1 from the update alone
	if math.Abs(float64(e.Alpha)-0.5) > 1e-6 {
		t.Errorf("alpha = %v, want 0.5", e.Alpha)
	}
}

func TestSelectCategory(t *testing.T) {
	s := newTestSim(t, "", Options{})

	if s.Selected() != mood.None {
		t.Fatalf("initial selection = %v, want None", s.Selected())
	}
	if s.SelectCategory("boredom") {
		t.Error("unknown category accepted")
	}
	if s.Selected() != mood.None {
		t.Error("unknown category changed the selection")
	}

	if !s.SelectCategory("anger") || s.Selected() != 2 {
		t.Errorf("select anger: selected = %v", s.Selected())
	}
	if s.SelectCategoryID(7) || s.Selected() != 2 {
		t.Error("invalid id changed the selection")
	}
	if !s.SelectCategoryID(4) || s.Selected() != 4 {
		t.Error("select by id failed")
	}
}

func TestOnPointerMoveProbability(t *testing.T) {
	tests := []struct {
		name string
		draw float64
		want int
	}{
		{"below chance spawns", 0.05, 10},
		{"above chance does not", 0.5, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestSim(t, "", Options{Rand: fixedSource(tc.draw)})

			// No selection: never spawns.
			s.OnPointerMove(10, 10)
			if s.Len() != 0 {
				t.Fatalf("spawned without a selection")
			}

			s.SelectCategory("joy")
			for i := 0; i < 10; i++ {
				s.OnPointerMove(10, 10)
			}
			if s.Len() != tc.want {
				t.Errorf("population = %d, want %d", s.Len(), tc.want)
			}
		})
	}
}

func TestOnPointerMoveRate(t *testing.T) {
	s := newTestSim(t, "", Options{Seed: 11})
	s.SelectCategory("love")

	const moves = 5000
	for i := 0; i < moves; i++ {
		s.OnPointerMove(500, 400)
	}
	rate := float64(s.Len()) / moves
	if rate < 0.08 || rate > 0.12 {
		t.Errorf("spawn rate = %v, want about 0.1", rate)
	}
}

func TestOnPointerClickBurst(t *testing.T) {
	s := newTestSim(t, "", Options{})

	s.OnPointerClick(300, 300)
	if s.Len() != 0 {
		t.Fatal("click spawned without a selection")
	}

	s.SelectCategory("fear")
	s.OnPointerClick(300, 300)
	if s.Len() != 10 {
		t.Fatalf("population = %d, want 10", s.Len())
	}

	f := s.Step()
	if countEvents(f.Events, telemetry.EventSpawnBurst) != 1 {
		t.Fatalf("frame events = %+v, want one spawn burst", f.Events)
	}
	for _, ev := range f.Events {
		if ev.Type == telemetry.EventSpawnBurst && (ev.Count != 10 || ev.Category != 3) {
			t.Errorf("burst = %+v", ev)
		}
	}
	for _, e := range f.Entities {
		if e.Category != 3 {
			t.Errorf("entity category = %v, want fear", e.Category)
		}
	}

	// Delivered once.
	f = s.Step()
	if countEvents(f.Events, telemetry.EventSpawnBurst) != 0 {
		t.Error("spawn burst delivered twice")
	}
}

func TestOnResize(t *testing.T) {
	s := newTestSim(t, "", Options{})
	orig := s.Bounds()

	s.OnResize(0, 500)
	s.OnResize(500, -1)
	s.OnResize(float32(math.NaN()), 500)
	if s.Bounds() != orig {
		t.Errorf("invalid resize changed bounds to %+v", s.Bounds())
	}

	s.OnResize(400, 300)
	if s.Bounds() != (systems.Bounds{Width: 400, Height: 300}) {
		t.Errorf("bounds = %+v, want 400x300", s.Bounds())
	}
}

func TestSizeNonIncreasingWithoutEvolution(t *testing.T) {
	s := newTestSim(t, "interaction:\n  evolve_chance: 0\n", Options{Seed: 5})
	rng := rand.New(rand.NewSource(5))
	for i := 0; i < 60; i++ {
		s.Spawn(float32(rng.Float64()*400), float32(rng.Float64()*400), mood.ID(i%5))
	}

	prev := make(map[uint32]float32)
	for frame := 0; frame < 200; frame++ {
		f := s.Step()
		for _, e := range f.Entities {
			if p, ok := prev[e.ID]; ok && e.Size > p {
				t.Fatalf("frame %d: entity %d grew from %v to %v", frame, e.ID, p, e.Size)
			}
			prev[e.ID] = e.Size
		}
		if countEvents(f.Events, telemetry.EventEntityEvolved) != 0 {
			t.Fatalf("evolution with chance 0")
		}
	}
}

func TestEvolutionEvent(t *testing.T) {
	s := newTestSim(t, "interaction:\n  evolve_chance: 1\n", Options{Rand: fixedSource(0)})

	// Identical draws: both entities stay stacked and overlap every frame.
	s.Spawn(200, 200, 0)
	s.Spawn(200, 200, 0)

	f := s.Step()
	if countEvents(f.Events, telemetry.EventEntityEvolved) != 1 {
		t.Fatalf("events = %+v, want one evolution", f.Events)
	}

	var grown int
	for _, e := range f.Entities {
		// 15 * 0.999 decayed, then 1.5x
		if math.Abs(float64(e.Size)-15*0.999*1.5) < 1e-3 {
			grown++
		}
	}
	if grown != 1 {
		t.Errorf("grown entities = %d, want 1", grown)
	}
}

func TestHealthStrategyDisablesEvolution(t *testing.T) {
	s := newTestSim(t, "metrics:\n  strategy: health\ninteraction:\n  evolve_chance: 1\n", Options{Rand: fixedSource(0)})

	s.Spawn(200, 200, 0)
	s.Spawn(200, 200, 0)

	f := s.Step()
	if countEvents(f.Events, telemetry.EventEntityEvolved) != 0 {
		t.Error("evolution under the health strategy")
	}
	// 2 live: 100 - (2-100)*0.1 clamps at 100
	if f.Metrics.Health != 100 || f.Metrics.Strategy != config.StrategyHealth {
		t.Errorf("metrics = %+v", f.Metrics)
	}
}

func TestStageAdvancedOnce(t *testing.T) {
	s := newTestSim(t, "", Options{})
	s.SelectCategory("sadness")
	for i := 0; i < 10; i++ {
		s.OnPointerClick(float32(50+i*100), 300)
	}

	stageEvents := 0
	for i := 0; i < 5; i++ {
		f := s.Step()
		stageEvents += countEvents(f.Events, telemetry.EventStageAdvanced)
		if f.Metrics.Stage != 2 {
			t.Errorf("frame %d stage = %d, want 2", i, f.Metrics.Stage)
		}
	}
	if stageEvents != 1 {
		t.Errorf("stage events = %d, want 1", stageEvents)
	}
}

func TestQuarantineNonFinite(t *testing.T) {
	s := newTestSim(t, "", Options{})

	s.Spawn(float32(math.NaN()), 100, 1)
	s.Spawn(600, 600, 2)

	f := s.Step()
	if len(f.Entities) != 2 {
		t.Fatalf("entities = %d, want 2", len(f.Entities))
	}
	if math.IsNaN(f.Metrics.Balance) {
		t.Error("NaN reached metrics")
	}

	f = s.Step()
	if len(f.Entities) != 1 || f.Entities[0].Category != 2 {
		t.Errorf("entities after quarantine = %+v, want only the finite one", f.Entities)
	}
}

func TestListenerSeesEvents(t *testing.T) {
	var got []telemetry.EventType
	s := newTestSim(t, "", Options{Listener: func(ev telemetry.Event) {
		got = append(got, ev.Type)
	}})

	s.SelectCategory("joy")
	s.OnPointerClick(100, 100)
	if len(got) != 1 || got[0] != telemetry.EventSpawnBurst {
		t.Fatalf("listener saw %v before the frame, want a spawn burst", got)
	}
}

func TestOutputFiles(t *testing.T) {
	dir := t.TempDir()
	s := newTestSim(t, "telemetry:\n  stats_window: 0.5\n", Options{OutputDir: dir})
	s.SelectCategory("joy")
	s.OnPointerClick(100, 100)

	// 0.5s at 60fps = 30 ticks per window
	for i := 0; i < 61; i++ {
		s.Step()
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Errorf("telemetry.csv lines = %d, want header + 2 windows", len(lines))
	}
	for _, name := range []string{"perf.csv", "achievements.csv", "config.yaml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
}
