package timer

import (
	"sync"
	"time"
)

// DefaultInterval is the tick period used when none is configured.
const DefaultInterval = time.Second

// Ticker calls a function once per period until it is stopped or the
// function returns false.
type Ticker interface {
	Start(fn func() bool)
	Stop()
	Running() bool
}

// Timer is a Ticker backed by a goroutine and a time.Ticker. At most one
// call to fn is outstanding at any time.
type Timer struct {
	mu       sync.RWMutex
	running  bool
	interval time.Duration
	stopChan chan struct{}
}

func New(interval time.Duration) *Timer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Timer{
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

func (t *Timer) Interval() time.Duration {
	return t.interval
}

func (t *Timer) Start(fn func() bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return
	}

	t.running = true
	stopChan := make(chan struct{})
	t.stopChan = stopChan

	go func() {
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()

		for {
			select {
			case <-stopChan:
				return
			case <-ticker.C:
				// select picks randomly between ready cases
				select {
				case <-stopChan:
					return
				default:
				}
				if !fn() {
					t.finish(stopChan)
					return
				}
			}
		}
	}()
}

// Stop ends the tick loop. It never waits for the loop goroutine, so it is
// safe to call from inside fn.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running {
		return
	}

	t.running = false
	close(t.stopChan)
}

func (t *Timer) Running() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.running
}

func (t *Timer) finish(stopChan chan struct{}) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running || t.stopChan != stopChan {
		return
	}
	t.running = false
	close(stopChan)
}
