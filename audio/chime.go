// Package audio plays short synthesized chimes for simulation events.
package audio

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"

	"github.com/pthm-cable/moodbiome/config"
	"github.com/pthm-cable/moodbiome/telemetry"
)

// Note frequencies in Hz.
const (
	noteC5 = 523.25
	noteE5 = 659.25
	noteG5 = 783.99
	noteA5 = 880.00
	noteC6 = 1046.50
	noteA3 = 220.00
)

const (
	attack       = 5 * time.Millisecond
	shortNote    = 90 * time.Millisecond
	bellDuration = 400 * time.Millisecond
	chordNote    = 600 * time.Millisecond
	maxPending   = 16 // streamers mixed at once; extra chimes are dropped
)

// Chimer maps frame events to sounds and mixes them onto the speaker.
// The zero value is silent; Init must succeed before anything plays.
type Chimer struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	rate        beep.SampleRate
	volume      float64
	initialized bool
}

// NewChimer creates a chimer from the audio config.
func NewChimer(cfg config.AudioConfig) *Chimer {
	rate := cfg.SampleRate
	if rate <= 0 {
		rate = 44100
	}
	return &Chimer{
		mixer:  &beep.Mixer{},
		rate:   beep.SampleRate(rate),
		volume: cfg.Volume,
	}
}

// Init opens the speaker. Callers treat failure as "run without sound".
func (c *Chimer) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized {
		return nil
	}
	if err := speaker.Init(c.rate, c.rate.N(100*time.Millisecond)); err != nil {
		return fmt.Errorf("audio: speaker init: %w", err)
	}
	speaker.Play(c.mixer)
	c.initialized = true
	return nil
}

// Close silences anything still playing.
func (c *Chimer) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return
	}
	speaker.Lock()
	c.mixer.Clear()
	speaker.Unlock()
	c.initialized = false
}

// Play queues the sound for e, if it has one.
func (c *Chimer) Play(e telemetry.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return
	}
	s := Sound(e, c.rate, c.volume)
	if s == nil {
		return
	}
	speaker.Lock()
	if c.mixer.Len() < maxPending {
		c.mixer.Add(s)
	}
	speaker.Unlock()
}

// Sound builds the streamer for an event, or nil when the event is silent.
func Sound(e telemetry.Event, rate beep.SampleRate, volume float64) beep.Streamer {
	var s beep.Streamer
	switch e.Type {
	case telemetry.EventEntityEvolved:
		s = bell(noteA5, rate)
	case telemetry.EventStageAdvanced:
		s = beep.Seq(tone(noteC5, shortNote, rate), tone(noteG5, shortNote*2, rate))
	case telemetry.EventAchievement:
		s = beep.Mix(
			scaled(tone(noteC5, chordNote, rate), 0.4),
			scaled(tone(noteE5, chordNote, rate), 0.3),
			scaled(tone(noteG5, chordNote, rate), 0.3),
		)
	case telemetry.EventHealthThreshold:
		if e.Direction == telemetry.DirectionUp {
			s = beep.Seq(tone(noteE5, shortNote, rate), tone(noteC6, shortNote, rate))
		} else {
			s = tone(noteA3, shortNote*3, rate)
		}
	default:
		return nil
	}
	return scaled(s, volume)
}

// bell mixes a fundamental with a quieter octave overtone.
func bell(freq float64, rate beep.SampleRate) beep.Streamer {
	fund := newEnvelope(newOscillator(freq, bellDuration, rate), bellDuration, attack, 300*time.Millisecond, rate)
	over := newEnvelope(newOscillator(freq*2, bellDuration, rate), bellDuration, attack, 150*time.Millisecond, rate)
	return beep.Mix(scaled(fund, 0.7), scaled(over, 0.3))
}

func tone(freq float64, d time.Duration, rate beep.SampleRate) beep.Streamer {
	return newEnvelope(newOscillator(freq, d, rate), d, attack, d/2, rate)
}

// scaled applies a linear gain. Zero or negative volume is silence.
func scaled(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

// oscillator is a sine source of fixed length.
type oscillator struct {
	freq     float64
	phase    float64
	total    int
	position int
	rate     beep.SampleRate
}

func newOscillator(freq float64, d time.Duration, rate beep.SampleRate) beep.Streamer {
	return &oscillator{freq: freq, total: rate.N(d), rate: rate}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.total {
			return i, i > 0
		}
		v := math.Sin(2 * math.Pi * o.phase)
		samples[i][0] = v
		samples[i][1] = v

		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope shapes a stream with a linear attack and release.
type envelope struct {
	streamer beep.Streamer
	position int
	attack   int
	release  int
	total    int
}

func newEnvelope(s beep.Streamer, d, att, rel time.Duration, rate beep.SampleRate) beep.Streamer {
	return &envelope{
		streamer: s,
		attack:   rate.N(att),
		release:  rate.N(rel),
		total:    rate.N(d),
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		g := e.gain()
		samples[i][0] *= g
		samples[i][1] *= g
		e.position++
	}
	return n, ok
}

func (e *envelope) gain() float64 {
	switch {
	case e.attack > 0 && e.position < e.attack:
		return float64(e.position) / float64(e.attack)
	case e.release > 0 && e.position >= e.total-e.release:
		left := e.total - e.position
		if left < 0 {
			return 0
		}
		return float64(left) / float64(e.release)
	default:
		return 1
	}
}

func (e *envelope) Err() error { return e.streamer.Err() }
