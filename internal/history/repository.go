package history

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// fixed width so that text order matches time order
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type Repository struct {
	db *sql.DB
}

// NewRepository opens the sqlite database at path, creating the schema if
// needed. ":memory:" gives a private in-memory database.
func NewRepository(path string) (*Repository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// one connection keeps ":memory:" databases shared across queries
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	repo := &Repository{db: db}
	if err := repo.init(); err != nil {
		db.Close()
		return nil, err
	}

	return repo, nil
}

func (r *Repository) init() error {
	query := `
	CREATE TABLE IF NOT EXISTS countdowns (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL UNIQUE,
		label TEXT NOT NULL,
		total_seconds INTEGER NOT NULL,
		remaining_seconds INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		started_at TEXT NOT NULL,
		ended_at TEXT NOT NULL
	)
	`
	if _, err := r.db.Exec(query); err != nil {
		return fmt.Errorf("create countdowns table: %w", err)
	}
	return nil
}

// Create stores e and fills in its ID. A missing SessionID is generated.
func (r *Repository) Create(e *Entry) error {
	if e.SessionID == "" {
		e.SessionID = uuid.NewString()
	}

	result, err := r.db.Exec(
		`INSERT INTO countdowns (session_id, label, total_seconds, remaining_seconds, outcome, started_at, ended_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.SessionID,
		e.Label,
		e.TotalSeconds,
		e.RemainingSeconds,
		string(e.Outcome),
		e.StartedAt.UTC().Format(timeLayout),
		e.EndedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert countdown %s: %w", e.SessionID, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = id
	return nil
}

// Recent returns up to limit entries, newest first. A limit of zero or less
// returns every entry.
func (r *Repository) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.Query(
		`SELECT id, session_id, label, total_seconds, remaining_seconds, outcome, started_at, ended_at
		 FROM countdowns
		 ORDER BY ended_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var outcome, startedAt, endedAt string
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Label, &e.TotalSeconds, &e.RemainingSeconds, &outcome, &startedAt, &endedAt); err != nil {
			return nil, err
		}
		e.Outcome = Outcome(outcome)
		if e.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
			return nil, fmt.Errorf("parse started_at of %s: %w", e.SessionID, err)
		}
		if e.EndedAt, err = time.Parse(timeLayout, endedAt); err != nil {
			return nil, fmt.Errorf("parse ended_at of %s: %w", e.SessionID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *Repository) Count() (int, error) {
	var n int
	err := r.db.QueryRow("SELECT COUNT(*) FROM countdowns").Scan(&n)
	return n, err
}

func (r *Repository) Close() error {
	return r.db.Close()
}
