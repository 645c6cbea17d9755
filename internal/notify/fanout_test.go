package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

// mockSubscriberSource implements SubscriberSource for testing.
type mockSubscriberSource struct {
	entries []string
	err     error
}

func (m *mockSubscriberSource) Subscribers(ctx context.Context) ([]string, error) {
	return m.entries, m.err
}

// mockSender implements MessageSender with a controllable callback.
type mockSender struct {
	channel string
	mu      sync.Mutex
	sent    []string
	sendFn  func(target string) error
}

func (m *mockSender) Type() string { return m.channel }

func (m *mockSender) Send(ctx context.Context, target string, msg *Message) error {
	if m.sendFn != nil {
		if err := m.sendFn(target); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, target)
	return nil
}

func (m *mockSender) sentTargets() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.sent...)
}

// mockAudit implements AuditRecorder.
type mockAudit struct {
	mu      sync.Mutex
	records []string
}

func (m *mockAudit) RecordDelivery(ctx context.Context, kind, subject, subscriber, status, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, fmt.Sprintf("%s/%s/%s", subscriber, kind, status))
	return nil
}

func TestFanout_Deliver_AllSubscribers(t *testing.T) {
	sender := &mockSender{channel: "telegram"}
	registry := NewRegistry()
	registry.Register(sender)

	subs := &mockSubscriberSource{entries: []string{"telegram:1", "telegram:2", "telegram:3"}}
	f := NewFanout(registry, subs, nil, time.Second)

	msg := &Message{Kind: "flight", Subject: "3a2b1c", Text: "test"}
	if err := f.Deliver(context.Background(), msg); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}

	if got := sender.sentTargets(); len(got) != 3 {
		t.Errorf("delivered to %d subscribers, want 3: %v", len(got), got)
	}
}

func TestFanout_Deliver_FailureIsolation(t *testing.T) {
	// Subscriber "2" always fails with a permanent error; the other
	// two must still be delivered.
	sender := &mockSender{
		channel: "telegram",
		sendFn: func(target string) error {
			if target == "2" {
				return errors.New("chat not found")
			}
			return nil
		},
	}
	registry := NewRegistry()
	registry.Register(sender)

	subs := &mockSubscriberSource{entries: []string{"telegram:1", "telegram:2", "telegram:3"}}
	audit := &mockAudit{}
	f := NewFanout(registry, subs, audit, time.Second)

	msg := &Message{Kind: "flight", Subject: "3a2b1c", Text: "test"}
	if err := f.Deliver(context.Background(), msg); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}

	got := sender.sentTargets()
	if len(got) != 2 {
		t.Errorf("delivered to %d subscribers, want 2: %v", len(got), got)
	}

	audit.mu.Lock()
	defer audit.mu.Unlock()
	var failed int
	for _, rec := range audit.records {
		if rec == "telegram:2/flight/failed" {
			failed++
		}
	}
	if failed != 1 {
		t.Errorf("audit should record exactly one failure, records: %v", audit.records)
	}
}

func TestFanout_Deliver_MalformedSubscriberSkipped(t *testing.T) {
	sender := &mockSender{channel: "telegram"}
	registry := NewRegistry()
	registry.Register(sender)

	subs := &mockSubscriberSource{entries: []string{"carrier-pigeon:coop-7", "telegram:1"}}
	f := NewFanout(registry, subs, nil, time.Second)

	msg := &Message{Kind: "alert", Subject: "X", Text: "test"}
	if err := f.Deliver(context.Background(), msg); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}

	if got := sender.sentTargets(); len(got) != 1 || got[0] != "1" {
		t.Errorf("sent = %v, want just telegram:1", got)
	}
}

func TestFanout_Deliver_SubscriberListError(t *testing.T) {
	registry := NewRegistry()
	subs := &mockSubscriberSource{err: errors.New("redis down")}
	f := NewFanout(registry, subs, nil, time.Second)

	err := f.Deliver(context.Background(), &Message{Kind: "flight", Subject: "a", Text: "t"})
	if err == nil {
		t.Error("Deliver() should surface a subscriber listing error")
	}
}

func TestFanout_Deliver_NoSubscribers(t *testing.T) {
	registry := NewRegistry()
	f := NewFanout(registry, &mockSubscriberSource{}, nil, time.Second)

	if err := f.Deliver(context.Background(), &Message{Kind: "flight", Subject: "a", Text: "t"}); err != nil {
		t.Errorf("Deliver() with no subscribers should be a no-op, got %v", err)
	}
}
