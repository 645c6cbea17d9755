// Package notify implements delivery fan-out to subscribers. Each
// subscriber names a channel and a target ("telegram:123456",
// "webhook:https://example.com/hook"); a strategy registry routes the message to the
// matching sender. Deliveries run independently per subscriber with a
// bounded timeout, so one unreachable subscriber never delays or
// aborts the rest.
package notify

import (
	"context"
	"fmt"
	"strings"
)

// Message is one formatted notification owed to every subscriber.
type Message struct {
	// Kind is "flight" or "alert".
	Kind string
	// Subject identifies what the message is about: a flight id or
	// an alert area name.
	Subject string
	// Text is the formatted message body (Markdown).
	Text string
}

// MessageSender is implemented by each delivery channel.
type MessageSender interface {
	// Send delivers the message to the channel-specific target.
	Send(ctx context.Context, target string, msg *Message) error
	// Type returns the channel name this sender handles.
	Type() string
}

// Registry maps channel names to senders.
type Registry struct {
	senders map[string]MessageSender
}

// NewRegistry creates an empty sender registry.
func NewRegistry() *Registry {
	return &Registry{senders: make(map[string]MessageSender)}
}

// Register adds a sender strategy.
func (r *Registry) Register(sender MessageSender) {
	r.senders[sender.Type()] = sender
}

// Get retrieves a sender by channel name.
func (r *Registry) Get(channel string) (MessageSender, bool) {
	s, ok := r.senders[channel]
	return s, ok
}

// List returns all registered channel names.
func (r *Registry) List() []string {
	types := make([]string, 0, len(r.senders))
	for t := range r.senders {
		types = append(types, t)
	}
	return types
}

// Subscriber is a parsed "channel:target" entry.
type Subscriber struct {
	Channel string
	Target  string
}

// ParseSubscriber splits a subscriber entry into channel and target.
// A bare entry with no channel prefix is treated as a telegram chat
// id.
func ParseSubscriber(entry string) (Subscriber, error) {
	entry = strings.TrimSpace(entry)
	if entry == "" {
		return Subscriber{}, fmt.Errorf("subscriber entry is empty")
	}

	channel, target, found := strings.Cut(entry, ":")
	if !found {
		return Subscriber{Channel: "telegram", Target: entry}, nil
	}
	// URLs contain ":" after the scheme; only a known channel prefix
	// counts as a separator.
	switch channel {
	case "telegram", "webhook":
		if target == "" {
			return Subscriber{}, fmt.Errorf("subscriber %q has no target", entry)
		}
		return Subscriber{Channel: channel, Target: target}, nil
	default:
		return Subscriber{}, fmt.Errorf("subscriber %q has unknown channel %q", entry, channel)
	}
}

// String returns the storable "channel:target" form.
func (s Subscriber) String() string {
	return s.Channel + ":" + s.Target
}
