package types

import (
	"time"

	"github.com/google/uuid"
)

// IntentEntry is an immutable log record: created once, never mutated.
type IntentEntry struct {
	ID          uuid.UUID    `json:"id"`
	Timestamp   time.Time    `json:"timestamp"`
	Summary     string       `json:"summary"`
	EntryType   IntentType   `json:"entry_type"`
	Source      IntentSource `json:"source"`
	Artifacts   []string     `json:"artifacts"`
	CommandsRun *int         `json:"commands_run,omitempty"`
	GoalDelta   *string      `json:"goal_delta,omitempty"`
}

// NewIntentEntry stamps a fresh ID and timestamp; entryType and source
// default to checkpoint/manual when left zero-valued by the caller.
func NewIntentEntry(summary string, entryType IntentType, source IntentSource) *IntentEntry {
	if entryType == "" {
		entryType = IntentTypeCheckpoint
	}
	if source == "" {
		source = IntentSourceManual
	}
	return &IntentEntry{
		ID:        uuid.New(),
		Timestamp: time.Now().UTC(),
		Summary:   summary,
		EntryType: entryType,
		Source:    source,
		Artifacts: []string{},
	}
}

// IsMilestone reports whether this entry should trigger the Event
// Publisher's dual-emit path (perth.milestone.recorded alongside
// perth.intent.logged).
func (e *IntentEntry) IsMilestone() bool {
	return e.EntryType == IntentTypeMilestone
}
