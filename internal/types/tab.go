package types

import "fmt"

// TabRecord identifies a named tab within a session. When CorrelationID is
// set, the multiplexer sees EffectiveName instead of TabName; the stored
// TabName never carries the suffix.
type TabRecord struct {
	TabName       string            `json:"tab_name"`
	Session       string            `json:"session"`
	CorrelationID *string           `json:"correlation_id,omitempty"`
	CreatedAt     string            `json:"created_at"`
	LastAccessed  string            `json:"last_accessed"`
	Meta          map[string]string `json:"meta"`
}

// NewTabRecord builds a fresh TabRecord with both timestamps set to now.
func NewTabRecord(tabName, session, now string, meta map[string]string) *TabRecord {
	if meta == nil {
		meta = map[string]string{}
	}
	return &TabRecord{
		TabName:      tabName,
		Session:      session,
		CreatedAt:    now,
		LastAccessed: now,
		Meta:         meta,
	}
}

// EffectiveName is the name the multiplexer actually sees: the tab name
// suffixed with the correlation ID when one is present.
func (t *TabRecord) EffectiveName() string {
	if t.CorrelationID == nil || *t.CorrelationID == "" {
		return t.TabName
	}
	return fmt.Sprintf("%s-%s", t.TabName, *t.CorrelationID)
}
