package history

import (
	"context"
	"sync"
	"time"

	"countdown_tui/internal/countdown"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Store persists entries.
type Store interface {
	Create(e *Entry) error
}

// Recorder turns engine events into history entries: one per session that
// finishes, is reset while active, or is replaced by a new selection.
type Recorder struct {
	mu        sync.Mutex
	store     Store
	logger    logrus.FieldLogger
	sessionID string
	startedAt time.Time
}

func NewRecorder(store Store, logger logrus.FieldLogger) *Recorder {
	return &Recorder{
		store: store,
		logger: logger.
			WithField("pkg", "history").
			WithField("com", "recorder"),
	}
}

// Observe applies one event. It returns the entry it stored, if any.
func (r *Recorder) Observe(event countdown.Event) (*Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch event.Type {
	case countdown.EventStarted:
		if event.Previous.Status != countdown.StatusPaused {
			r.sessionID = uuid.NewString()
			r.startedAt = event.At
		}
		return nil, nil
	case countdown.EventFinished:
		return r.storeLocked(event.State, OutcomeFinished, event.At)
	case countdown.EventReset:
		if event.Previous.Active() {
			return r.storeLocked(event.Previous, OutcomeReset, event.At)
		}
	case countdown.EventSelected:
		if event.Previous.Active() {
			return r.storeLocked(event.Previous, OutcomeReselected, event.At)
		}
	}
	return nil, nil
}

// Run observes events until the channel closes or ctx is done. Store
// failures are logged and do not stop the loop.
func (r *Recorder) Run(ctx context.Context, events <-chan countdown.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			entry, err := r.Observe(event)
			if err != nil {
				r.logger.WithError(err).Warn("cannot record countdown")
				continue
			}
			if entry != nil {
				r.logger.
					WithField("session", entry.SessionID).
					WithField("outcome", entry.Outcome).
					Debug("countdown recorded")
			}
		}
	}
}

func (r *Recorder) storeLocked(state countdown.State, outcome Outcome, at time.Time) (*Entry, error) {
	sessionID, startedAt := r.sessionID, r.startedAt
	r.sessionID, r.startedAt = "", time.Time{}

	if sessionID == "" {
		// session began before the recorder was attached
		sessionID = uuid.NewString()
		startedAt = at.Add(-time.Duration(state.TotalSeconds-state.RemainingSeconds) * time.Second)
	}

	entry := &Entry{
		SessionID:        sessionID,
		Label:            state.SelectedLabel,
		TotalSeconds:     state.TotalSeconds,
		RemainingSeconds: state.RemainingSeconds,
		Outcome:          outcome,
		StartedAt:        startedAt,
		EndedAt:          at,
	}
	if err := r.store.Create(entry); err != nil {
		return nil, err
	}
	return entry, nil
}
