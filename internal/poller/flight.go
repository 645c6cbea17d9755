// Package poller runs the two scheduled reconciliation loops: the
// flight pipeline and the hazard-alert pipeline. The loops are fully
// independent: separate tickers, separate state, and no shared locks;
// any error inside a tick is logged and the loop continues.
package poller

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/algoldenberg/AirPlaneTracker/internal/classify"
	"github.com/algoldenberg/AirPlaneTracker/internal/events"
	"github.com/algoldenberg/AirPlaneTracker/internal/metrics"
	"github.com/algoldenberg/AirPlaneTracker/internal/model"
	"github.com/algoldenberg/AirPlaneTracker/internal/notify"
	"github.com/algoldenberg/AirPlaneTracker/internal/track"
)

// TelemetrySource fetches the current aircraft samples.
type TelemetrySource interface {
	Fetch(ctx context.Context) ([]model.FlightObservation, error)
}

// LiveStore is the store surface the flight loop writes to.
type LiveStore interface {
	CommitLive(ctx context.Context, flights []model.FlightObservation, ts time.Time) error
	RecordIfNew(ctx context.Context, obs model.FlightObservation, firstSeen time.Time) (bool, error)
	ExpireHistory(ctx context.Context, now time.Time) (int64, error)
}

// Deliverer fans a message out to all subscribers.
type Deliverer interface {
	Deliver(ctx context.Context, msg *notify.Message) error
}

// FlightPoller runs the flight pipeline: fetch, classify, commit,
// record history, reconcile sightings, notify.
type FlightPoller struct {
	source    TelemetrySource
	criteria  classify.Criteria
	store     LiveStore
	state     *track.SightingState
	fanout    Deliverer
	publisher events.Publisher
	interval  time.Duration
	now       func() time.Time
}

// NewFlightPoller wires a flight poller. publisher may be a mock but
// not nil.
func NewFlightPoller(source TelemetrySource, criteria classify.Criteria, store LiveStore,
	fanout Deliverer, publisher events.Publisher, interval time.Duration) *FlightPoller {
	return &FlightPoller{
		source:    source,
		criteria:  criteria,
		store:     store,
		state:     track.NewSightingState(),
		fanout:    fanout,
		publisher: publisher,
		interval:  interval,
		now:       time.Now,
	}
}

// Run executes cycles on the configured interval until the context is
// cancelled. Errors are logged; the loop never terminates on a
// transient provider failure.
func (p *FlightPoller) Run(ctx context.Context) {
	slog.Info("Flight poller started", "interval", p.interval)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			slog.Info("Flight poller stopped")
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *FlightPoller) tick(ctx context.Context) {
	if err := p.RunCycle(ctx); err != nil {
		slog.Error("Flight cycle failed", "error", err)
		metrics.RecordCycle("flights", "error")
		return
	}
	metrics.RecordCycle("flights", "ok")
}

// RunCycle executes one full flight pipeline pass.
func (p *FlightPoller) RunCycle(ctx context.Context) error {
	now := p.now().UTC()

	observations, err := p.source.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("telemetry fetch failed: %w", err)
	}

	landing := make([]model.FlightObservation, 0, len(observations))
	for _, obs := range observations {
		if obs.OnGround {
			continue
		}
		if p.criteria.IsLanding(obs) {
			landing = append(landing, obs)
		}
	}

	if err := p.store.CommitLive(ctx, landing, now); err != nil {
		return fmt.Errorf("snapshot commit failed: %w", err)
	}
	metrics.SetFlightsOverhead(len(landing))

	byID := make(map[string]model.FlightObservation, len(landing))
	ids := make([]string, 0, len(landing))
	for _, obs := range landing {
		byID[obs.ID] = obs
		ids = append(ids, obs.ID)

		inserted, err := p.store.RecordIfNew(ctx, obs, now)
		if err != nil {
			slog.Error("History insert failed", "id", obs.ID, "error", err)
			continue
		}
		if inserted {
			slog.Info("Logged flight",
				"id", obs.ID,
				"callsign", obs.Callsign,
				"origin", obs.Origin,
				"destination", obs.Destination,
				"altitude_ft", obs.AltitudeFt,
			)
			metrics.RecordHistoryInsert()
			p.publishLanding(ctx, obs)
		}
	}

	if _, err := p.store.ExpireHistory(ctx, now); err != nil {
		slog.Error("History expiry failed", "error", err)
	}

	due := p.state.Reconcile(ids)
	for _, id := range due {
		obs := byID[id]
		if err := p.fanout.Deliver(ctx, notify.FormatFlight(obs)); err != nil {
			slog.Error("Flight notification fan-out failed", "id", id, "error", err)
		}
	}

	slog.Info("Flight cycle complete",
		"overhead", len(landing),
		"notified", len(due),
	)
	return nil
}

func (p *FlightPoller) publishLanding(ctx context.Context, obs model.FlightObservation) {
	event := events.NewEvent(events.TypeFlightLanding, obs.ID, map[string]any{
		"callsign":    obs.Callsign,
		"origin":      obs.Origin,
		"destination": obs.Destination,
		"altitude_ft": obs.AltitudeFt,
	})
	if err := p.publisher.Publish(ctx, event); err != nil {
		slog.Warn("Failed to publish landing event", "id", obs.ID, "error", err)
	}
}
