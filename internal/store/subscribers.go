package store

import (
	"context"
	"fmt"
)

// SubscribersKey is the Redis set of opted-in subscribers, stored as
// "channel:target" strings.
const SubscribersKey = "subscribers"

// AddSubscriber adds a subscriber to the set. Adding an existing
// subscriber is a no-op.
func (s *Store) AddSubscriber(ctx context.Context, subscriber string) error {
	if subscriber == "" {
		return fmt.Errorf("subscriber cannot be empty")
	}
	if err := s.client.SAdd(ctx, SubscribersKey, subscriber).Err(); err != nil {
		return fmt.Errorf("failed to add subscriber: %w", err)
	}
	return nil
}

// RemoveSubscriber removes a subscriber from the set. Removing an
// unknown subscriber is a no-op.
func (s *Store) RemoveSubscriber(ctx context.Context, subscriber string) error {
	if subscriber == "" {
		return fmt.Errorf("subscriber cannot be empty")
	}
	if err := s.client.SRem(ctx, SubscribersKey, subscriber).Err(); err != nil {
		return fmt.Errorf("failed to remove subscriber: %w", err)
	}
	return nil
}

// Subscribers returns the current subscriber set.
func (s *Store) Subscribers(ctx context.Context) ([]string, error) {
	members, err := s.client.SMembers(ctx, SubscribersKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list subscribers: %w", err)
	}
	return members, nil
}
