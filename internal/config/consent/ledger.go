// Package consent records the history of LLM-summarisation consent
// grants and revocations in a local SQLite database, distinct from the
// single current-state boolean kept in config.toml. Adapted from the
// teacher's config/auditlog SQLite logger.
package consent

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Action identifies what happened to consent at a point in time.
type Action string

const (
	ActionGranted Action = "granted"
	ActionRevoked Action = "revoked"
)

// Event is a single consent ledger entry.
type Event struct {
	ID        int64
	Action    Action
	Timestamp time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS consent_events (
	id        INTEGER PRIMARY KEY,
	action    TEXT NOT NULL,
	timestamp TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_consent_ts ON consent_events(timestamp DESC);
`

const maxQueryLimit = 500

// Ledger is an append-only log of consent grant/revoke actions.
type Ledger struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database at dbPath and runs the
// consent_events schema. Use ":memory:" for an in-memory database in tests.
func Open(dbPath string) (*Ledger, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db for consent ledger: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run consent ledger schema: %w", err)
	}

	return &Ledger{db: db}, nil
}

// Record appends an event. If ts is zero, time.Now() is used.
func (l *Ledger) Record(action Action, ts time.Time) error {
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := l.db.Exec(
		`INSERT INTO consent_events (action, timestamp) VALUES (?, ?)`,
		string(action), formatTime(ts),
	)
	if err != nil {
		return fmt.Errorf("record consent event: %w", err)
	}
	return nil
}

// History returns the most recent consent events, newest first, capped at
// limit (or 500 if limit is non-positive or too large).
func (l *Ledger) History(limit int) ([]Event, error) {
	if limit <= 0 || limit > maxQueryLimit {
		limit = maxQueryLimit
	}

	rows, err := l.db.Query(
		`SELECT id, action, timestamp FROM consent_events ORDER BY timestamp DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query consent events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var ts string
		if err := rows.Scan(&e.ID, (*string)(&e.Action), &ts); err != nil {
			return nil, fmt.Errorf("scan consent event: %w", err)
		}
		e.Timestamp = parseTime(ts)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate consent events: %w", err)
	}
	return events, nil
}

// Close releases the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
