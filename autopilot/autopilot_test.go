package autopilot

import (
	"testing"

	"github.com/pthm-cable/moodbiome/config"
	"github.com/pthm-cable/moodbiome/mood"
	"github.com/pthm-cable/moodbiome/sim"
	"github.com/pthm-cable/moodbiome/systems"
)

func testConfig() config.AutopilotConfig {
	return config.AutopilotConfig{Step: 0.01, ClickInterval: 10, CategoryInterval: 25}
}

func TestPilotStaysInBounds(t *testing.T) {
	p := New(testConfig(), 42)
	b := systems.Bounds{Width: 640, Height: 480}

	for i := 0; i < 2000; i++ {
		a := p.Next(b, nil, 5)
		if !b.Contains(a.X, a.Y) {
			t.Fatalf("frame %d: pointer (%v,%v) outside %+v", i, a.X, a.Y, b)
		}
		if a.Category != mood.None && a.Category >= 5 {
			t.Fatalf("frame %d: category %v out of range", i, a.Category)
		}
	}
}

func TestPilotDeterministic(t *testing.T) {
	b := systems.Bounds{Width: 800, Height: 600}
	p1 := New(testConfig(), 7)
	p2 := New(testConfig(), 7)

	for i := 0; i < 300; i++ {
		a1 := p1.Next(b, nil, 5)
		a2 := p2.Next(b, nil, 5)
		if a1 != a2 {
			t.Fatalf("frame %d: %+v != %+v", i, a1, a2)
		}
	}
}

func TestPilotIntervals(t *testing.T) {
	p := New(testConfig(), 1)
	b := systems.Bounds{Width: 800, Height: 600}

	clicks, switches := 0, 0
	for i := 1; i <= 100; i++ {
		a := p.Next(b, nil, 5)
		if a.Click {
			clicks++
			if i%10 != 0 {
				t.Errorf("click on frame %d", i)
			}
		}
		if a.Category != mood.None {
			switches++
		}
	}
	// Frame 1 plus frames 25, 50, 75, 100
	if clicks != 10 || switches != 5 {
		t.Errorf("clicks = %d switches = %d, want 10 and 5", clicks, switches)
	}
}

func TestPilotBalancing(t *testing.T) {
	p := New(testConfig(), 1)
	p.Balancing = true

	a := p.Next(systems.Bounds{Width: 100, Height: 100}, []int{4, 9, 1, 1, 6}, 5)
	if a.Category != 2 {
		t.Errorf("category = %v, want the first least populated (2)", a.Category)
	}
}

func TestPilotDrivesSim(t *testing.T) {
	s, err := sim.New(config.Default(), sim.Options{Seed: 3})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	// One category only, so no entity loses lifespan to cross-category overlap.
	cfg := testConfig()
	cfg.CategoryInterval = 0
	p := New(cfg, 3)
	for i := 0; i < 50; i++ {
		p.Drive(s)
		s.Step()
	}

	if s.Selected() == mood.None {
		t.Error("pilot never selected a category")
	}
	// Five clicks of ten, plus move spawns
	if s.Metrics().Population < 50 {
		t.Errorf("population = %d, want at least 50", s.Metrics().Population)
	}
}
