package sim

import (
	"context"
	"time"
)

// inboxSize bounds the input queued between two frames.
const inboxSize = 256

// Scheduler drives a Sim at a fixed frame rate and serializes input from
// other goroutines onto the frame loop.
type Scheduler struct {
	sim   *Sim
	fps   int
	inbox chan func(*Sim)
}

// NewScheduler creates a scheduler. fps <= 0 runs frames back to back.
func NewScheduler(s *Sim, fps int) *Scheduler {
	return &Scheduler{
		sim:   s,
		fps:   fps,
		inbox: make(chan func(*Sim), inboxSize),
	}
}

// Post queues fn to run against the Sim at the start of the next frame.
// It never blocks; it reports false when the queue is full.
func (sc *Scheduler) Post(fn func(*Sim)) bool {
	select {
	case sc.inbox <- fn:
		return true
	default:
		return false
	}
}

// Run steps the simulation once per refresh until ctx is done or the Sim
// has completed maxTicks steps (0 = unlimited). onFrame, if set, is called
// on the loop goroutine after each step. Returns nil when maxTicks is
// reached and ctx.Err() on cancellation.
func (sc *Scheduler) Run(ctx context.Context, maxTicks int64, onFrame func(Frame)) error {
	var refresh <-chan time.Time
	if sc.fps > 0 {
		ticker := time.NewTicker(time.Second / time.Duration(sc.fps))
		defer ticker.Stop()
		refresh = ticker.C
	}

	for {
		if maxTicks > 0 && sc.sim.Tick() >= maxTicks {
			return nil
		}

		if refresh != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-refresh:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		sc.drain()
		frame := sc.sim.Step()
		if onFrame != nil {
			onFrame(frame)
		}
	}
}

// drain applies all queued input.
func (sc *Scheduler) drain() {
	for {
		select {
		case fn := <-sc.inbox:
			fn(sc.sim)
		default:
			return
		}
	}
}
