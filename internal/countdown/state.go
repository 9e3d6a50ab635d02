package countdown

import (
	"strconv"
	"strings"
	"time"
)

// Status is the lifecycle position of a countdown.
type Status int

const (
	StatusIdle Status = iota
	StatusRunning
	StatusPaused
	StatusFinished
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRunning:
		return "running"
	case StatusPaused:
		return "paused"
	case StatusFinished:
		return "finished"
	}
	return "status(" + strconv.Itoa(int(s)) + ")"
}

// State is a snapshot of an Engine.
type State struct {
	Status           Status
	SelectedLabel    string
	TotalSeconds     int
	RemainingSeconds int

	// HoursDisplay is "1" for hour selections of at least one hour and empty
	// otherwise. MinutesDisplay and SecondsDisplay are filled by ticks.
	HoursDisplay   string
	MinutesDisplay string
	SecondsDisplay string
}

// Progress is the fraction of the countdown still remaining, in [0, 1].
func (s State) Progress() float64 {
	if s.TotalSeconds <= 0 {
		return 0
	}
	return float64(s.RemainingSeconds) / float64(s.TotalSeconds)
}

// Display joins the non-empty display fields as "H:M:SS".
func (s State) Display() string {
	var parts []string
	for _, part := range []string{s.HoursDisplay, s.MinutesDisplay, s.SecondsDisplay} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, ":")
}

// Active reports whether a countdown is in progress, running or paused.
func (s State) Active() bool {
	return s.Status == StatusRunning || s.Status == StatusPaused
}

// EventType defines the type of Engine event.
type EventType string

const (
	EventSelected EventType = "selected"
	EventStarted  EventType = "started"
	EventPaused   EventType = "paused"
	EventReset    EventType = "reset"
	EventTick     EventType = "tick"
	EventFinished EventType = "finished"
)

// Event is published to subscribers after every change. Previous is the
// state the change was applied to.
type Event struct {
	Type     EventType
	State    State
	Previous State
	At       time.Time
}

func minutesDisplay(seconds int) string {
	return strconv.Itoa(seconds / 60)
}

func secondsDisplay(seconds int) string {
	rest := seconds % 60
	return strconv.Itoa(rest/10) + strconv.Itoa(rest%10)
}
