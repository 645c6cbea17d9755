package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/algoldenberg/AirPlaneTracker/internal/metrics"
)

// SubscriberSource lists the current subscriber set. Implemented by
// the Redis store.
type SubscriberSource interface {
	Subscribers(ctx context.Context) ([]string, error)
}

// AuditRecorder records the outcome of one delivery attempt.
// Implemented by the Postgres audit log; a nil recorder disables
// auditing.
type AuditRecorder interface {
	RecordDelivery(ctx context.Context, kind, subject, subscriber, status, errMsg string) error
}

// Fanout delivers a message to every subscriber, isolating failures
// per subscriber.
type Fanout struct {
	registry    *Registry
	subscribers SubscriberSource
	audit       AuditRecorder
	timeout     time.Duration
	retry       RetryConfig
}

// NewFanout creates a fan-out coordinator. audit may be nil.
func NewFanout(registry *Registry, subscribers SubscriberSource, audit AuditRecorder, timeout time.Duration) *Fanout {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Fanout{
		registry:    registry,
		subscribers: subscribers,
		audit:       audit,
		timeout:     timeout,
		retry:       DefaultRetryConfig(),
	}
}

// Deliver sends the message to every current subscriber. Each
// delivery runs in its own goroutine with its own bounded-timeout
// context; a failing or slow subscriber is logged and audited without
// affecting the others. Deliver itself never returns a per-subscriber
// error: the only error is failing to list the subscribers.
func (f *Fanout) Deliver(ctx context.Context, msg *Message) error {
	entries, err := f.subscribers.Subscribers(ctx)
	if err != nil {
		return fmt.Errorf("failed to list subscribers: %w", err)
	}
	if len(entries) == 0 {
		slog.Debug("No subscribers, skipping delivery", "kind", msg.Kind, "subject", msg.Subject)
		return nil
	}

	var wg sync.WaitGroup
	for _, entry := range entries {
		wg.Add(1)
		go func(entry string) {
			defer wg.Done()
			f.deliverOne(ctx, entry, msg)
		}(entry)
	}
	wg.Wait()
	return nil
}

func (f *Fanout) deliverOne(ctx context.Context, entry string, msg *Message) {
	sub, err := ParseSubscriber(entry)
	if err != nil {
		slog.Warn("Skipping malformed subscriber", "subscriber", entry, "error", err)
		f.recordAudit(ctx, msg, entry, "skipped", err)
		return
	}

	sender, ok := f.registry.Get(sub.Channel)
	if !ok {
		slog.Warn("No sender registered for channel, skipping",
			"channel", sub.Channel, "subscriber", entry)
		f.recordAudit(ctx, msg, entry, "skipped", fmt.Errorf("unknown channel %s", sub.Channel))
		return
	}

	callCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	operation := fmt.Sprintf("send_%s_%s", sub.Channel, msg.Subject)
	err = withRetry(callCtx, f.retry, operation, func() error {
		return sender.Send(callCtx, sub.Target, msg)
	})
	if err != nil {
		slog.Error("Delivery failed",
			"kind", msg.Kind,
			"subject", msg.Subject,
			"channel", sub.Channel,
			"error", err,
		)
		metrics.RecordDelivery(sub.Channel, "failed")
		f.recordAudit(ctx, msg, entry, "failed", err)
		return
	}

	slog.Info("Delivered notification",
		"kind", msg.Kind,
		"subject", msg.Subject,
		"channel", sub.Channel,
	)
	metrics.RecordDelivery(sub.Channel, "sent")
	f.recordAudit(ctx, msg, entry, "sent", nil)
}

func (f *Fanout) recordAudit(ctx context.Context, msg *Message, subscriber, status string, deliveryErr error) {
	if f.audit == nil {
		return
	}
	errMsg := ""
	if deliveryErr != nil {
		errMsg = deliveryErr.Error()
	}
	if err := f.audit.RecordDelivery(ctx, msg.Kind, msg.Subject, subscriber, status, errMsg); err != nil {
		slog.Warn("Failed to record delivery audit", "error", err)
	}
}
