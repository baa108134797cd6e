package types

import (
	"fmt"

	"github.com/google/uuid"
)

// SchemaVersion is stamped onto every SessionSnapshot this version of Perth
// writes; Restore does not read it, so snapshots of other versions are
// restored without any check.
const SchemaVersion = "2.0"

// SessionSnapshot is a versioned, serializable capture of a session's tab
// and pane layout.
type SessionSnapshot struct {
	SchemaVersion string        `json:"schema_version"`
	ID            uuid.UUID     `json:"id"`
	Name          string        `json:"name"`
	Session       string        `json:"session"`
	CreatedAt     string        `json:"created_at"`
	Description   *string       `json:"description,omitempty"`
	ParentID      *uuid.UUID    `json:"parent_id,omitempty"`
	Tabs          []TabSnapshot `json:"tabs"`
	PaneCount     int           `json:"pane_count"`
}

// RedisKey is the State Store key this snapshot is addressed by.
func (s *SessionSnapshot) RedisKey() string {
	return fmt.Sprintf("perth:snapshots:%s:%s", s.Session, s.Name)
}

// NewSessionSnapshot builds an empty snapshot shell; callers populate Tabs
// and call RecomputePaneCount before persisting.
func NewSessionSnapshot(name, session, now string) *SessionSnapshot {
	return &SessionSnapshot{
		SchemaVersion: SchemaVersion,
		ID:            uuid.New(),
		Name:          name,
		Session:       session,
		CreatedAt:     now,
		Tabs:          []TabSnapshot{},
	}
}

// RecomputePaneCount sets PaneCount to the sum of each tab's pane count, the
// invariant spec.md §3 requires of every persisted snapshot.
func (s *SessionSnapshot) RecomputePaneCount() {
	total := 0
	for _, t := range s.Tabs {
		total += len(t.Panes)
	}
	s.PaneCount = total
}

// TabSnapshot captures one tab's layout at capture time.
type TabSnapshot struct {
	Name          string        `json:"name"`
	Index         int           `json:"index"`
	Active        bool          `json:"active"`
	Layout        string        `json:"layout"`
	CorrelationID *string       `json:"correlation_id,omitempty"`
	Panes         []PaneSnapshot `json:"panes"`
}

// PaneSnapshot captures one pane's state within a tab.
type PaneSnapshot struct {
	Name    string            `json:"name"`
	Position int              `json:"position"`
	Cwd     *string           `json:"cwd,omitempty"`
	Command *string           `json:"command,omitempty"`
	PaneID  *string           `json:"pane_id,omitempty"`
	Focused bool              `json:"focused"`
	Meta    map[string]string `json:"meta,omitempty"`
}
