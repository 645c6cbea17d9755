// Package database provides the optional Postgres audit log of
// subscriber deliveries.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

// Delivery is one recorded delivery attempt.
type Delivery struct {
	DeliveryID string    `json:"delivery_id"`
	Kind       string    `json:"kind"`
	Subject    string    `json:"subject"`
	Subscriber string    `json:"subscriber"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// DB wraps a database connection for delivery audit operations.
type DB struct {
	conn *sql.DB
}

// NewDB opens and verifies a Postgres connection.
func NewDB(dsn string) (*DB, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("Connected to PostgreSQL delivery audit log")
	return &DB{conn: conn}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// EnsureSchema creates the deliveries table if it does not exist.
func (db *DB) EnsureSchema(ctx context.Context) error {
	_, err := db.conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS deliveries (
			delivery_id TEXT PRIMARY KEY,
			kind        TEXT NOT NULL,
			subject     TEXT NOT NULL,
			subscriber  TEXT NOT NULL,
			status      TEXT NOT NULL,
			error       TEXT NOT NULL DEFAULT '',
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to ensure deliveries schema: %w", err)
	}
	return nil
}

// RecordDelivery inserts one delivery attempt outcome.
func (db *DB) RecordDelivery(ctx context.Context, kind, subject, subscriber, status, errMsg string) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO deliveries (delivery_id, kind, subject, subscriber, status, error)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.New().String(), kind, subject, subscriber, status, errMsg)
	if err != nil {
		return fmt.Errorf("failed to record delivery: %w", err)
	}
	return nil
}

// ListDeliveries returns the most recent deliveries of one kind,
// newest first.
func (db *DB) ListDeliveries(ctx context.Context, kind string, limit int) ([]*Delivery, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT delivery_id, kind, subject, subscriber, status, error, created_at
		FROM deliveries
		WHERE kind = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, kind, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list deliveries: %w", err)
	}
	defer rows.Close()

	var deliveries []*Delivery
	for rows.Next() {
		var d Delivery
		if err := rows.Scan(&d.DeliveryID, &d.Kind, &d.Subject, &d.Subscriber, &d.Status, &d.Error, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan delivery: %w", err)
		}
		deliveries = append(deliveries, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate deliveries: %w", err)
	}
	return deliveries, nil
}
