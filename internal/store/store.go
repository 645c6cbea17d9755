// Package store persists tracker state in Redis: the live landing
// snapshot, the 24h history ledger, and the subscriber set.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/algoldenberg/AirPlaneTracker/internal/model"
)

const (
	// LiveKey holds the JSON array of flights currently classified
	// as landing.
	LiveKey = "flights:current"
	// LiveUpdatedKey holds the RFC3339 timestamp of the last commit.
	LiveUpdatedKey = "flights:updated_at"
	// HistoryIndexKey is the sorted set of flight ids scored by
	// first-seen unix time.
	HistoryIndexKey = "flights:history:index"

	historySeenPrefix = "flights:history:seen:"
	historyItemPrefix = "flights:history:item:"
)

// Store wraps a Redis client with the tracker's key discipline.
type Store struct {
	client    *redis.Client
	retention time.Duration
}

// New creates a store with the given retention window for history
// records.
func New(client *redis.Client, retention time.Duration) *Store {
	return &Store{client: client, retention: retention}
}

// Ping verifies the Redis connection.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}
	return nil
}

// CommitLive atomically replaces the live snapshot. Both keys are
// written in a single pipeline so a reader never observes flights
// from one cycle with the timestamp of another.
func (s *Store) CommitLive(ctx context.Context, flights []model.FlightObservation, ts time.Time) error {
	if flights == nil {
		flights = []model.FlightObservation{}
	}
	data, err := json.Marshal(flights)
	if err != nil {
		return fmt.Errorf("failed to marshal live snapshot: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, LiveKey, data, 0)
	pipe.Set(ctx, LiveUpdatedKey, ts.Format(time.RFC3339), 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to commit live snapshot: %w", err)
	}
	return nil
}

// ReadLive returns the last committed snapshot. ok is false when
// nothing has ever been committed.
func (s *Store) ReadLive(ctx context.Context) (flights []model.FlightObservation, updatedAt string, ok bool, err error) {
	data, err := s.client.Get(ctx, LiveKey).Bytes()
	if err == redis.Nil {
		return nil, "", false, nil
	}
	if err != nil {
		return nil, "", false, fmt.Errorf("failed to read live snapshot: %w", err)
	}

	if err := json.Unmarshal(data, &flights); err != nil {
		return nil, "", false, fmt.Errorf("failed to unmarshal live snapshot: %w", err)
	}

	updatedAt, err = s.client.Get(ctx, LiveUpdatedKey).Result()
	if err == redis.Nil {
		updatedAt = ""
	} else if err != nil {
		return nil, "", false, fmt.Errorf("failed to read snapshot timestamp: %w", err)
	}
	return flights, updatedAt, true, nil
}

// RecordIfNew inserts a history record for the observation unless one
// already exists inside the retention window. Returns true when the
// record was inserted. The operation is idempotent by construction:
// the SETNX sentinel decides, and losing the race just means another
// writer already recorded the same id.
func (s *Store) RecordIfNew(ctx context.Context, obs model.FlightObservation, firstSeen time.Time) (bool, error) {
	inserted, err := s.client.SetNX(ctx, historySeenKey(obs.ID), "1", s.retention).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark flight %s as seen: %w", obs.ID, err)
	}
	if !inserted {
		return false, nil
	}

	rec := model.HistoryRecord{FlightObservation: obs, FirstSeen: firstSeen}
	data, err := json.Marshal(rec)
	if err != nil {
		return false, fmt.Errorf("failed to marshal history record: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, historyItemKey(obs.ID), data, s.retention)
	pipe.ZAdd(ctx, HistoryIndexKey, redis.Z{
		Score:  float64(firstSeen.Unix()),
		Member: obs.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		// Release the sentinel so a later cycle can insert the
		// record; otherwise the id stays latched as seen with no
		// history entry behind it.
		if delErr := s.client.Del(ctx, historySeenKey(obs.ID)).Err(); delErr != nil {
			slog.Warn("Failed to release seen sentinel", "id", obs.ID, "error", delErr)
		}
		return false, fmt.Errorf("failed to write history record for %s: %w", obs.ID, err)
	}
	return true, nil
}

// ExpireHistory deletes every record whose first-seen time is
// strictly older than the retention window. A record first seen
// exactly retention ago is still inside the window and stays.
// Returns the number of ids removed from the index.
func (s *Store) ExpireHistory(ctx context.Context, now time.Time) (int64, error) {
	cutoff := expiryCutoff(now, s.retention)
	// Exclusive bound: scores equal to the cutoff are retained.
	maxScore := "(" + strconv.FormatInt(cutoff, 10)

	stale, err := s.client.ZRangeByScore(ctx, HistoryIndexKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: maxScore,
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to list expired history ids: %w", err)
	}
	if len(stale) == 0 {
		return 0, nil
	}

	pipe := s.client.TxPipeline()
	for _, id := range stale {
		pipe.Del(ctx, historyItemKey(id), historySeenKey(id))
	}
	removed := pipe.ZRemRangeByScore(ctx, HistoryIndexKey, "-inf", maxScore)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to expire history records: %w", err)
	}

	slog.Info("Expired history records", "removed", len(stale))
	return removed.Val(), nil
}

// History returns the records first seen inside the window, newest
// first. Ids whose record already expired between index read and
// fetch are skipped.
func (s *Store) History(ctx context.Context, now time.Time, window time.Duration) ([]model.HistoryRecord, error) {
	if window <= 0 || window > s.retention {
		window = s.retention
	}
	minScore := strconv.FormatInt(now.Add(-window).Unix(), 10)

	ids, err := s.client.ZRevRangeByScore(ctx, HistoryIndexKey, &redis.ZRangeBy{
		Min: minScore,
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read history index: %w", err)
	}
	if len(ids) == 0 {
		return []model.HistoryRecord{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = historyItemKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch history records: %w", err)
	}

	records := make([]model.HistoryRecord, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Record expired after the index was read.
			continue
		}
		var rec model.HistoryRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			slog.Warn("Skipping undecodable history record", "id", ids[i], "error", err)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func historySeenKey(id string) string {
	return historySeenPrefix + id
}

func historyItemKey(id string) string {
	return historyItemPrefix + id
}

// expiryCutoff returns the newest first-seen unix time that is
// already outside the window at the given instant.
func expiryCutoff(now time.Time, retention time.Duration) int64 {
	return now.Add(-retention).Unix()
}
