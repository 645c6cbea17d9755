package events

import (
	"context"
	"log/slog"
	"sync"
)

// Mock is a Publisher that logs events instead of sending them to
// Kafka. Used when no brokers are configured, and in tests.
type Mock struct {
	topic string

	mu        sync.Mutex
	published []*Event
}

// NewMock creates a mock publisher.
func NewMock(topic string) *Mock {
	return &Mock{topic: topic}
}

// Publish records the event and logs it.
func (m *Mock) Publish(ctx context.Context, event *Event) error {
	m.mu.Lock()
	m.published = append(m.published, event)
	m.mu.Unlock()

	slog.Info("Mock publish",
		"topic", m.topic,
		"event_id", event.EventID,
		"type", event.Type,
		"subject", event.Subject,
	)
	return nil
}

// Close is a no-op.
func (m *Mock) Close() error {
	return nil
}

// Published returns a copy of everything published so far.
func (m *Mock) Published() []*Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*Event(nil), m.published...)
}
