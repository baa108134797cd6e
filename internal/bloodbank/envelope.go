// Package bloodbank publishes Perth domain events onto RabbitMQ for the
// wider ecosystem, following the Bloodbank naming convention
// `<source>.<entity>.<past-tense-action>`.
package bloodbank

import "time"

// Event types, each doubling as its routing key.
const (
	EventPaneCreated       = "perth.pane.created"
	EventPaneOpened        = "perth.pane.opened"
	EventTabCreated        = "perth.tab.created"
	EventIntentLogged      = "perth.intent.logged"
	EventMilestoneRecorded = "perth.milestone.recorded"
)

// perthVersion is the source version stamped into every event's metadata.
const perthVersion = "0.1.0"

// Envelope wraps every event published onto the exchange.
type Envelope struct {
	EventType string      `json:"event_type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
	Metadata  Metadata    `json:"metadata"`
}

// Metadata is attached to every event.
type Metadata struct {
	Source        string `json:"source"`
	Version       string `json:"version"`
	CorrelationID string `json:"correlation_id,omitempty"`
	Session       string `json:"session,omitempty"`
}

// NewMetadata builds the default metadata block: source "perth", the
// current build's version, no correlation ID or session.
func NewMetadata() Metadata {
	return Metadata{Source: "perth", Version: perthVersion}
}

func (m Metadata) WithCorrelationID(id string) Metadata {
	m.CorrelationID = id
	return m
}

func (m Metadata) WithSession(session string) Metadata {
	m.Session = session
	return m
}

// NewEnvelope builds an Envelope for eventType at the given timestamp.
func NewEnvelope(eventType string, timestamp time.Time, payload interface{}, metadata Metadata) Envelope {
	return Envelope{EventType: eventType, Timestamp: timestamp, Payload: payload, Metadata: metadata}
}
