// Package telemetry provides ecosystem metrics, achievements, and experiment output.
package telemetry

import (
	"fmt"

	"github.com/pthm-cable/moodbiome/mood"
)

// EventType identifies frame events.
type EventType uint8

const (
	EventEntityEvolved EventType = iota
	EventStageAdvanced
	EventHealthThreshold
	EventSpawnBurst
	EventAchievement
)

var eventTypeNames = [...]string{
	EventEntityEvolved:   "entity_evolved",
	EventStageAdvanced:   "stage_advanced",
	EventHealthThreshold: "health_threshold_crossed",
	EventSpawnBurst:      "spawn_burst",
	EventAchievement:     "achievement_unlocked",
}

func (t EventType) String() string {
	if int(t) < len(eventTypeNames) {
		return eventTypeNames[t]
	}
	return fmt.Sprintf("event(%d)", t)
}

// Direction is the sense of a health threshold crossing.
type Direction int8

const (
	DirectionUp   Direction = 1
	DirectionDown Direction = -1
)

func (d Direction) String() string {
	if d == DirectionUp {
		return "up"
	}
	return "down"
}

// Event is a notable occurrence delivered with a frame. Which fields are
// meaningful depends on Type.
type Event struct {
	Type EventType
	Tick int64

	// entity_evolved, spawn_burst
	X, Y     float32
	Category mood.ID
	Count    int

	// stage_advanced
	Stage int

	// health_threshold_crossed
	Threshold float64
	Direction Direction

	// achievement_unlocked
	Achievement Achievement

	// Message is the human-readable popup text.
	Message string
}

// NewEvolvedEvent creates an evolution event at the entity's position.
func NewEvolvedEvent(tick int64, x, y float32, cat mood.ID) Event {
	return Event{
		Type:     EventEntityEvolved,
		Tick:     tick,
		X:        x,
		Y:        y,
		Category: cat,
		Message:  "Entity Evolved!",
	}
}

// NewStageEvent creates a stage advance event.
func NewStageEvent(tick int64, stage int) Event {
	return Event{
		Type:    EventStageAdvanced,
		Tick:    tick,
		Stage:   stage,
		Message: fmt.Sprintf("Evolution Stage %d Reached!", stage),
	}
}

// NewHealthEvent creates a health threshold crossing event.
func NewHealthEvent(tick int64, threshold float64, dir Direction) Event {
	msg := fmt.Sprintf("Ecosystem health rose above %g", threshold)
	if dir == DirectionDown {
		msg = fmt.Sprintf("Ecosystem health fell below %g", threshold)
	}
	return Event{
		Type:      EventHealthThreshold,
		Tick:      tick,
		Threshold: threshold,
		Direction: dir,
		Message:   msg,
	}
}

// NewSpawnBurstEvent creates a click burst event.
func NewSpawnBurstEvent(tick int64, x, y float32, cat mood.ID, count int) Event {
	return Event{
		Type:     EventSpawnBurst,
		Tick:     tick,
		X:        x,
		Y:        y,
		Category: cat,
		Count:    count,
	}
}

// NewAchievementEvent wraps an unlocked achievement.
func NewAchievementEvent(a Achievement) Event {
	return Event{
		Type:        EventAchievement,
		Tick:        a.Tick,
		Achievement: a,
		Message:     a.Description,
	}
}

// Popup reports whether the event carries a message meant for display.
func (e Event) Popup() bool {
	return e.Message != ""
}
