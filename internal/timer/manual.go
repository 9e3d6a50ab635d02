package timer

import "sync"

// Manual is a Ticker that only fires when Tick is called. fn runs on the
// caller's goroutine, which makes tick-driven code deterministic to test.
type Manual struct {
	mu      sync.Mutex
	fn      func() bool
	running bool
	gen     uint64
}

func NewManual() *Manual {
	return &Manual{}
}

func (m *Manual) Start(fn func() bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}
	m.running = true
	m.fn = fn
	m.gen++
}

func (m *Manual) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.running = false
	m.fn = nil
}

func (m *Manual) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Tick fires one period. It reports whether a callback was run.
func (m *Manual) Tick() bool {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return false
	}
	fn, gen := m.fn, m.gen
	m.mu.Unlock()

	if !fn() {
		m.mu.Lock()
		if m.gen == gen {
			m.running = false
			m.fn = nil
		}
		m.mu.Unlock()
	}
	return true
}

// Advance fires up to n periods and returns how many callbacks ran.
func (m *Manual) Advance(n int) int {
	fired := 0
	for i := 0; i < n; i++ {
		if !m.Tick() {
			break
		}
		fired++
	}
	return fired
}
