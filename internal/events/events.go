// Package events publishes tracker events to Kafka for downstream
// consumers. Publishing is optional: when no brokers are configured
// the mock publisher logs events instead.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event types published by the tracker.
const (
	TypeFlightLanding = "flight.landing"
	TypeAlertOnset    = "alert.onset"
)

// Event is one tracker occurrence: a flight admitted to the history
// ledger, or a hazard alert onset.
type Event struct {
	EventID string `json:"event_id"`
	Type    string `json:"type"`
	// Subject is the flight id or the alert area.
	Subject string `json:"subject"`
	// Payload carries event-specific fields.
	Payload map[string]any `json:"payload,omitempty"`
	EventTS int64          `json:"event_ts"`
}

// NewEvent creates an event stamped with a fresh id and the current
// time.
func NewEvent(eventType, subject string, payload map[string]any) *Event {
	return &Event{
		EventID: uuid.New().String(),
		Type:    eventType,
		Subject: subject,
		Payload: payload,
		EventTS: time.Now().Unix(),
	}
}

// Publisher is implemented by the Kafka producer and the mock.
type Publisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}
