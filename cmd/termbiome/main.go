// Command termbiome runs the simulation in a terminal. Each cell stands for
// a cellWidth x cellHeight patch of simulation space.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/moodbiome/audio"
	"github.com/pthm-cable/moodbiome/autopilot"
	"github.com/pthm-cable/moodbiome/config"
	"github.com/pthm-cable/moodbiome/mood"
	"github.com/pthm-cable/moodbiome/sim"
	"github.com/pthm-cable/moodbiome/systems"
	"github.com/pthm-cable/moodbiome/telemetry"
)

// Simulation units per terminal cell. Cells are about twice as tall as wide.
const (
	cellWidth  = 8
	cellHeight = 16
)

// messageFrames is how long the last event message stays in the status line.
const messageFrames = 180

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int64("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	logPath := flag.String("log", "", "Write JSON logs to this file (default: discard)")
	pilot := flag.Bool("autopilot", false, "Drive the pointer with Perlin noise")
	mute := flag.Bool("mute", false, "Disable event chimes")
	flag.Parse()

	// The terminal owns stdout, so logs go to a file or nowhere
	var logOut io.Writer = io.Discard
	if *logPath != "" {
		f, err := os.Create(*logPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "termbiome: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(logOut, nil)))

	if err := config.Init(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "termbiome: %v\n", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	t, err := newTerm(cfg, sim.Options{Seed: rngSeed, OutputDir: *outputDir}, !*mute)
	if err != nil {
		fmt.Fprintf(os.Stderr, "termbiome: %v\n", err)
		os.Exit(1)
	}
	if *pilot {
		t.pilot = autopilot.New(cfg.Autopilot, rngSeed)
	}

	err = t.run(*maxTicks)
	t.cleanup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "termbiome: %v\n", err)
		os.Exit(1)
	}
}

// term is the terminal frontend state. Everything except the event poller
// runs on the scheduler's frame goroutine.
type term struct {
	screen tcell.Screen
	sim    *sim.Sim
	sched  *sim.Scheduler
	table  *mood.Table

	particles *systems.ParticleSystem
	chimer    *audio.Chimer
	pilot     *autopilot.Pilot

	styles []tcell.Style // per category, full opacity

	message      string
	messageUntil int64

	// Poller-owned pointer state
	mouseDown bool
}

func newTerm(cfg *config.Config, opts sim.Options, sound bool) (*term, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.EnableMouse()
	screen.HideCursor()

	s, err := sim.New(cfg, opts)
	if err != nil {
		screen.Fini()
		return nil, err
	}

	t := &term{
		screen:    screen,
		sim:       s,
		sched:     sim.NewScheduler(s, cfg.Screen.TargetFPS),
		table:     s.Table(),
		particles: systems.NewParticleSystem(),
	}
	for _, c := range t.table.All() {
		t.styles = append(t.styles, tcell.StyleDefault.Foreground(rgb(c.Color)))
	}

	w, h := screen.Size()
	s.OnResize(float32(w*cellWidth), float32(h*cellHeight))

	if sound && cfg.Audio.Enabled {
		t.chimer = audio.NewChimer(cfg.Audio)
		if err := t.chimer.Init(); err != nil {
			slog.Warn("audio_disabled", "error", err)
			t.chimer = nil
		}
	}
	return t, nil
}

// run drives frames until quit, interrupt, or maxTicks.
func (t *term) run(maxTicks int64) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go t.poll(cancel)

	err := t.sched.Run(ctx, maxTicks, t.onFrame)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// poll forwards terminal events to the frame loop.
func (t *term) poll(quit context.CancelFunc) {
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return
		}
		if !t.handleEvent(ev) {
			quit()
			return
		}
	}
}

// handleEvent translates one terminal event into posted sim input. It
// returns false on a quit key.
func (t *term) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() != tcell.KeyRune {
			return true
		}
		r := ev.Rune()
		switch {
		case r == 'q':
			return false
		case r >= '1' && r <= '9':
			id := mood.ID(r - '1')
			t.sched.Post(func(s *sim.Sim) { s.SelectCategoryID(id) })
		case r == ' ':
			// Click at the center, for terminals without mouse reporting
			t.sched.Post(func(s *sim.Sim) {
				b := s.Bounds()
				s.OnPointerClick(b.Width/2, b.Height/2)
			})
		}

	case *tcell.EventMouse:
		cx, cy := ev.Position()
		x := float32(cx*cellWidth + cellWidth/2)
		y := float32(cy*cellHeight + cellHeight/2)
		pressed := ev.Buttons()&tcell.Button1 != 0
		click := pressed && !t.mouseDown
		t.mouseDown = pressed

		t.sched.Post(func(s *sim.Sim) {
			s.OnPointerMove(x, y)
			if click {
				s.OnPointerClick(x, y)
			}
		})

	case *tcell.EventResize:
		t.screen.Sync()
		w, h := ev.Size()
		t.sched.Post(func(s *sim.Sim) {
			s.OnResize(float32(w*cellWidth), float32(h*cellHeight))
		})
	}
	return true
}

// onFrame consumes events and redraws. It runs on the frame goroutine.
func (t *term) onFrame(f sim.Frame) {
	for _, e := range f.Events {
		t.consume(e, f.Tick)
	}
	t.particles.Update()

	if t.pilot != nil {
		t.sched.Post(func(s *sim.Sim) { t.pilot.Drive(s) })
	}

	t.draw(f)
}

func (t *term) consume(e telemetry.Event, tick int64) {
	switch e.Type {
	case telemetry.EventSpawnBurst, telemetry.EventEntityEvolved:
		if cat, ok := t.table.Get(e.Category); ok {
			// Terminal cells are coarse; a fifth of the particles reads the same
			t.particles.EmitExplosion(e.X, e.Y, cat.ParticleColor, systems.ParticleBurst, 10)
		}
	}
	if e.Popup() {
		t.message = e.Message
		t.messageUntil = tick + messageFrames
	}
	if t.chimer != nil {
		t.chimer.Play(e)
	}
}

func (t *term) draw(f sim.Frame) {
	t.screen.Clear()
	w, h := t.screen.Size()
	bounds := t.sim.Bounds()

	// cell maps a point to its cell, false off screen or under the status row
	cell := func(x, y float32) (int, int, bool) {
		if !bounds.Contains(x, y) {
			return 0, 0, false
		}
		cx, cy := int(x)/cellWidth, int(y)/cellHeight
		return cx, cy, cx < w && cy >= 1 && cy < h
	}

	for i := range t.particles.Particles {
		p := &t.particles.Particles[i]
		cx, cy, ok := cell(p.X, p.Y)
		if !ok {
			continue
		}
		t.screen.SetContent(cx, cy, '·', nil, tcell.StyleDefault.Foreground(rgb(p.Color)))
	}

	for _, e := range f.Entities {
		cx, cy, ok := cell(e.X, e.Y)
		if !ok {
			continue
		}
		cat, ok := t.table.Get(e.Category)
		if !ok {
			continue
		}
		style := tcell.StyleDefault.Foreground(faded(cat.Color, e.Alpha))
		t.screen.SetContent(cx, cy, glyph(e.Size*cat.SizeFactor), nil, style)
	}

	t.drawStatus(f, w)
	t.screen.Show()
}

// drawStatus renders the one-line HUD on the top row.
func (t *term) drawStatus(f sim.Frame, width int) {
	m := f.Metrics
	var status string
	if m.Strategy == config.StrategyHealth {
		status = fmt.Sprintf(" n=%d health=%.0f balance=%.0f%% dominant=%s",
			m.Population, m.Health, m.Balance, t.table.Name(m.Dominant))
	} else {
		status = fmt.Sprintf(" n=%d stage=%d balance=%.0f%% dominant=%s | %s",
			m.Population, m.Stage, m.Balance, t.table.Name(m.Dominant), m.Goal)
	}

	x := drawText(t.screen, 0, 0, width, status, tcell.StyleDefault.Reverse(true))

	selected := t.sim.Selected()
	for _, c := range t.table.All() {
		label := fmt.Sprintf(" %d:%s", int(c.ID)+1, c.Name)
		style := t.styles[c.ID]
		if c.ID == selected {
			style = style.Reverse(true)
		}
		x = drawText(t.screen, x, 0, width, label, style)
	}

	if t.message != "" && f.Tick < t.messageUntil {
		drawText(t.screen, x+2, 0, width, t.message, tcell.StyleDefault.Foreground(tcell.ColorGold).Bold(true))
	}
}

func (t *term) cleanup() {
	if t.chimer != nil {
		t.chimer.Close()
	}
	if err := t.sim.Close(); err != nil {
		slog.Error("closing output", "error", err)
	}
	t.screen.Fini()
}

// drawText writes s from (x, y), clipped at width, and returns the next column.
func drawText(screen tcell.Screen, x, y, width int, s string, style tcell.Style) int {
	for _, r := range s {
		if x >= width {
			break
		}
		screen.SetContent(x, y, r, nil, style)
		x++
	}
	return x
}
