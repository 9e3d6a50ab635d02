// Package runner drives a countdown without a UI, writing the remaining time
// to a writer on every tick.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"

	"countdown_tui/internal/countdown"
)

// ErrEngineClosed is returned when the engine stops publishing before the
// countdown finished.
var ErrEngineClosed = errors.New("engine closed")

// Run selects label, starts the countdown and blocks until it finishes or
// ctx is done. Cancelling ctx resets the engine and returns ctx.Err().
func Run(ctx context.Context, engine *countdown.Engine, label string, out io.Writer) error {
	events := engine.Subscribe(64)

	engine.SelectLabel(label)
	engine.Start()
	state := engine.State()
	if state.Status != countdown.StatusRunning {
		return fmt.Errorf("%w: %q", countdown.ErrMalformedSelection, label)
	}
	fmt.Fprintf(out, "Counting down %s (%d seconds)\n", label, state.TotalSeconds)

	for {
		select {
		case <-ctx.Done():
			engine.Reset(false)
			fmt.Fprintf(out, "\nStopped with %s left\n", remaining(state))
			return ctx.Err()
		case event, ok := <-events:
			if !ok {
				return ErrEngineClosed
			}
			state = event.State
			switch event.Type {
			case countdown.EventTick:
				fmt.Fprintf(out, "\r%s", remaining(state))
			case countdown.EventFinished:
				fmt.Fprintf(out, "\r%s\nTime's up!\n", remaining(state))
				return nil
			}
		}
	}
}

func remaining(state countdown.State) string {
	total := state.RemainingSeconds
	return fmt.Sprintf("%d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
