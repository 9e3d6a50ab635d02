package history

import "time"

// Outcome is how a countdown session ended.
type Outcome string

const (
	OutcomeFinished   Outcome = "finished"
	OutcomeReset      Outcome = "reset"
	OutcomeReselected Outcome = "reselected"
)

// Entry represents one recorded countdown session.
type Entry struct {
	ID               int64
	SessionID        string
	Label            string
	TotalSeconds     int
	RemainingSeconds int
	Outcome          Outcome
	StartedAt        time.Time
	EndedAt          time.Time
}

// Elapsed is the number of seconds counted down before the session ended.
func (e Entry) Elapsed() time.Duration {
	return time.Duration(e.TotalSeconds-e.RemainingSeconds) * time.Second
}
