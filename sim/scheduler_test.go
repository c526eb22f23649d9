package sim

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pthm-cable/moodbiome/telemetry"
)

func TestSchedulerMaxTicks(t *testing.T) {
	s := newTestSim(t, "", Options{})
	sc := NewScheduler(s, 0)

	frames := 0
	err := sc.Run(context.Background(), 25, func(f Frame) {
		frames++
		if f.Tick != int64(frames) {
			t.Errorf("frame %d has tick %d", frames, f.Tick)
		}
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if frames != 25 || s.Tick() != 25 {
		t.Errorf("frames = %d, tick = %d; want 25", frames, s.Tick())
	}
}

func TestSchedulerCancel(t *testing.T) {
	s := newTestSim(t, "", Options{})
	sc := NewScheduler(s, 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := sc.Run(ctx, 0, func(f Frame) {
		if f.Tick == 3 {
			cancel()
		}
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run = %v, want context.Canceled", err)
	}
	if s.Tick() != 3 {
		t.Errorf("tick = %d, want 3", s.Tick())
	}
}

func TestSchedulerThrottled(t *testing.T) {
	s := newTestSim(t, "", Options{})
	sc := NewScheduler(s, 200)

	start := time.Now()
	if err := sc.Run(context.Background(), 5, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	// Five refreshes at 5ms each.
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("5 frames at 200fps took %v, want >= 20ms", elapsed)
	}
}

func TestSchedulerPostedInput(t *testing.T) {
	s := newTestSim(t, "", Options{})
	sc := NewScheduler(s, 0)

	posted := sc.Post(func(s *Sim) {
		s.SelectCategory("love")
		s.OnPointerClick(640, 400)
	})
	if !posted {
		t.Fatal("Post rejected on an empty queue")
	}

	var first Frame
	err := sc.Run(context.Background(), 1, func(f Frame) {
		first = f
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(first.Entities) != 10 {
		t.Errorf("entities = %d, want 10 from the posted click", len(first.Entities))
	}
	if countEvents(first.Events, telemetry.EventSpawnBurst) != 1 {
		t.Errorf("events = %+v, want the spawn burst in the same frame", first.Events)
	}
}

func TestSchedulerPostFull(t *testing.T) {
	s := newTestSim(t, "", Options{})
	sc := NewScheduler(s, 0)

	for i := 0; i < inboxSize; i++ {
		if !sc.Post(func(*Sim) {}) {
			t.Fatalf("Post %d rejected before the queue filled", i)
		}
	}
	if sc.Post(func(*Sim) {}) {
		t.Error("Post accepted past the queue size")
	}
}
