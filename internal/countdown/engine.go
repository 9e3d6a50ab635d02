// Package countdown implements the countdown state machine: select a preset,
// start, pause, reset, and a once-per-period tick that counts the remaining
// seconds down to zero.
package countdown

import (
	"errors"
	"sync"
	"time"

	"countdown_tui/internal/preset"
	"countdown_tui/internal/timer"
)

// ErrMalformedSelection is logged when Start cannot resolve the selected
// label into a duration. Start recovers from it by doing nothing.
var ErrMalformedSelection = errors.New("malformed selection")

// Engine is the countdown state machine. All state lives behind one mutex;
// only the tick path decrements the remaining seconds.
type Engine struct {
	mu       sync.Mutex
	opts     Options
	ticker   timer.Ticker
	state    State
	selected preset.Preset
	gen      uint64
	events   []chan Event
	closed   bool
}

// New creates an idle Engine ticking with a timer.Timer.
func New(opts Options) *Engine {
	t := timer.New(opts.TickInterval)
	opts.TickInterval = t.Interval()
	return NewWithTicker(opts, t)
}

// NewWithTicker creates an idle Engine driven by the given Ticker.
func NewWithTicker(opts Options, ticker timer.Ticker) *Engine {
	if opts.Logger == nil {
		opts.Logger = DefaultOptions().Logger
	}
	opts.Logger.WithField("tick_interval", opts.TickInterval).Debug("engine created")
	return &Engine{
		opts:   opts,
		ticker: ticker,
	}
}

// State returns a snapshot of the current state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Subscribe registers a new observer channel. Sends never block: an
// observer that falls behind by more than buffer events misses events, but
// the finished event always gets through.
func (e *Engine) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		close(ch)
		return ch
	}
	e.events = append(e.events, ch)
	return ch
}

// SelectLabel selects the preset described by label.
func (e *Engine) SelectLabel(label string) {
	e.Select(preset.FromLabel(label))
}

// Select records a new preset. A running or paused countdown is reset
// first. Duration resolution is deferred to Start.
func (e *Engine) Select(p preset.Preset) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}

	prev := e.state
	e.stopLocked()
	e.selected = p
	e.state = State{
		Status:        StatusIdle,
		SelectedLabel: p.Label,
	}
	e.opts.Logger.WithField("label", p.Label).Debug("selected")
	e.emitLocked(EventSelected, prev)
}

// Start begins or resumes the countdown. It does nothing without a
// selection, while already running, or when the selection cannot be
// resolved.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.state.SelectedLabel == "" || e.state.Status == StatusRunning {
		return
	}

	prev := e.state
	if e.state.RemainingSeconds == 0 {
		total, showHours, err := e.selected.Seconds()
		if err != nil {
			e.opts.Logger.
				WithField("label", e.state.SelectedLabel).
				WithError(err).
				Warnf("start aborted: %v", ErrMalformedSelection)
			return
		}
		e.state.TotalSeconds = total
		e.state.RemainingSeconds = total
		e.state.HoursDisplay = ""
		if showHours {
			e.state.HoursDisplay = "1"
		}
		e.state.MinutesDisplay = ""
		e.state.SecondsDisplay = ""
	}

	e.state.Status = StatusRunning
	e.gen++
	gen := e.gen
	e.ticker.Start(func() bool {
		return e.tick(gen)
	})

	e.opts.Logger.
		WithField("label", e.state.SelectedLabel).
		WithField("remaining", e.state.RemainingSeconds).
		Info("countdown started")
	e.emitLocked(EventStarted, prev)
}

// Pause stops a running countdown, keeping the remaining seconds. No tick
// changes the state once Pause has returned.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.Status != StatusRunning {
		return
	}

	prev := e.state
	e.stopLocked()
	e.state.Status = StatusPaused
	e.opts.Logger.WithField("remaining", e.state.RemainingSeconds).Info("countdown paused")
	e.emitLocked(EventPaused, prev)
}

// Reset returns to idle and zeroes every timing and display field. The
// selected label is kept only if keepSelection is set.
func (e *Engine) Reset(keepSelection bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}

	prev := e.state
	e.resetLocked(keepSelection)
	e.opts.Logger.WithField("keep_selection", keepSelection).Info("countdown reset")
	e.emitLocked(EventReset, prev)
}

// Close stops ticking and closes every subscriber channel.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.stopLocked()
	e.closed = true
	for _, ch := range e.events {
		close(ch)
	}
	e.events = nil
}

func (e *Engine) resetLocked(keepSelection bool) {
	e.stopLocked()
	label := e.state.SelectedLabel
	e.state = State{Status: StatusIdle}
	if keepSelection {
		e.state.SelectedLabel = label
	} else {
		e.selected = preset.Preset{}
	}
}

// stopLocked ends the tick loop. Bumping the generation turns any tick
// already waiting on the mutex into a no-op.
func (e *Engine) stopLocked() {
	e.ticker.Stop()
	e.gen++
}

func (e *Engine) tick(gen uint64) bool {
	e.mu.Lock()
	if gen != e.gen || e.state.Status != StatusRunning {
		e.mu.Unlock()
		return false
	}

	prev := e.state
	remaining := e.state.RemainingSeconds - 1
	if remaining < 0 {
		remaining = 0
	}
	e.state.RemainingSeconds = remaining
	e.state.MinutesDisplay = minutesDisplay(remaining)
	e.state.SecondsDisplay = secondsDisplay(remaining)
	e.opts.Logger.
		WithField("remaining", remaining).
		Debugf("tick %s", e.state.Display())

	if remaining > 0 {
		e.emitLocked(EventTick, prev)
		e.mu.Unlock()
		return true
	}

	e.stopLocked()
	e.state.Status = StatusFinished
	finished := e.state
	onFinished := e.opts.OnFinished
	e.opts.Logger.WithField("label", finished.SelectedLabel).Info("time's up")
	e.emitLocked(EventFinished, prev)
	e.mu.Unlock()

	if onFinished != nil {
		onFinished(finished)
	}
	return false
}

func (e *Engine) emitLocked(eventType EventType, prev State) {
	event := Event{
		Type:     eventType,
		State:    e.state,
		Previous: prev,
		At:       time.Now(),
	}
	for _, ch := range e.events {
		select {
		case ch <- event:
			continue
		default:
		}
		if eventType != EventFinished {
			continue
		}
		// a full subscriber gives up its oldest event for the finished one
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- event:
		default:
		}
	}
}
