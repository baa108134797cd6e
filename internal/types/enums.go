// Package types holds Perth's wire-level data model: the records persisted
// in the State Store, the snapshot/restore shapes, and the small enums that
// tag them. Every enum serialises as its lower-case string tag and ignores
// unknown values on decode, per the forward-compatibility contract in
// spec.md §6.
package types

import (
	"encoding/json"
)

// IntentType classifies an IntentEntry. The zero value is not valid on its
// own; callers should use IntentTypeCheckpoint as the default.
type IntentType string

const (
	IntentTypeMilestone   IntentType = "milestone"
	IntentTypeCheckpoint  IntentType = "checkpoint"
	IntentTypeExploration IntentType = "exploration"
)

// ParseIntentType maps a free-form string (e.g. an LLM's suggested_type, or
// a --type flag) to an IntentType, defaulting to checkpoint for anything it
// doesn't recognise.
func ParseIntentType(s string) IntentType {
	switch IntentType(s) {
	case IntentTypeMilestone:
		return IntentTypeMilestone
	case IntentTypeExploration:
		return IntentTypeExploration
	default:
		return IntentTypeCheckpoint
	}
}

func (t IntentType) String() string { return string(t) }

func (t IntentType) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(t))
}

func (t *IntentType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*t = ParseIntentType(s)
	return nil
}

// IntentSource records who produced an IntentEntry.
type IntentSource string

const (
	IntentSourceManual    IntentSource = "manual"
	IntentSourceAutomated IntentSource = "automated"
	IntentSourceAgent     IntentSource = "agent"
)

// ParseIntentSource defaults to manual for anything unrecognised, per
// spec.md §3's IntentEntry.source default.
func ParseIntentSource(s string) IntentSource {
	switch IntentSource(s) {
	case IntentSourceAutomated:
		return IntentSourceAutomated
	case IntentSourceAgent:
		return IntentSourceAgent
	default:
		return IntentSourceManual
	}
}

func (s IntentSource) String() string { return string(s) }

func (s IntentSource) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

func (s *IntentSource) UnmarshalJSON(b []byte) error {
	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*s = ParseIntentSource(v)
	return nil
}

// PaneStatus is the status field of a pane-info lookup (§6: used to pick the
// CLI's exit code).
type PaneStatus string

const (
	PaneStatusFound   PaneStatus = "found"
	PaneStatusStale   PaneStatus = "stale"
	PaneStatusMissing PaneStatus = "missing"
)

// RestoreStatus is the auto-promoted overall result of a restore operation
// (spec.md §3: any error -> failed; any warning-level entry (and not failed)
// -> partial; info-level entries do not change it).
type RestoreStatus string

const (
	RestoreStatusSuccess RestoreStatus = "success"
	RestoreStatusPartial RestoreStatus = "partial"
	RestoreStatusFailed  RestoreStatus = "failed"
)

// WarningLevel tags a RestoreWarning's severity.
type WarningLevel string

const (
	WarningLevelInfo    WarningLevel = "info"
	WarningLevelWarning WarningLevel = "warning"
	WarningLevelError   WarningLevel = "error"
)
