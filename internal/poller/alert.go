package poller

import (
	"context"
	"log/slog"
	"time"

	"github.com/algoldenberg/AirPlaneTracker/internal/events"
	"github.com/algoldenberg/AirPlaneTracker/internal/metrics"
	"github.com/algoldenberg/AirPlaneTracker/internal/notify"
	"github.com/algoldenberg/AirPlaneTracker/internal/provider"
	"github.com/algoldenberg/AirPlaneTracker/internal/track"
)

// HazardSource fetches the currently alerted areas.
type HazardSource interface {
	ActiveAreas(ctx context.Context) ([]string, error)
}

// AlertPoller runs the hazard pipeline on its own short cadence,
// independent of the flight loop.
type AlertPoller struct {
	source    HazardSource
	targets   []string
	state     *track.AlertState
	fanout    Deliverer
	publisher events.Publisher
	interval  time.Duration
}

// NewAlertPoller wires an alert poller for the given target areas.
func NewAlertPoller(source HazardSource, targets []string, fanout Deliverer,
	publisher events.Publisher, interval time.Duration) *AlertPoller {
	return &AlertPoller{
		source:    source,
		targets:   targets,
		state:     track.NewAlertState(),
		fanout:    fanout,
		publisher: publisher,
		interval:  interval,
	}
}

// Run executes cycles on the configured interval until the context is
// cancelled.
func (p *AlertPoller) Run(ctx context.Context) {
	slog.Info("Alert poller started", "interval", p.interval, "targets", p.targets)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.RunCycle(ctx)
	for {
		select {
		case <-ctx.Done():
			slog.Info("Alert poller stopped")
			return
		case <-ticker.C:
			p.RunCycle(ctx)
		}
	}
}

// RunCycle executes one hazard pass. A feed error resolves to zero
// active alerts; state never survives a failed fetch.
func (p *AlertPoller) RunCycle(ctx context.Context) {
	reported, err := p.source.ActiveAreas(ctx)
	if err != nil {
		slog.Error("Hazard fetch failed, clearing alert state", "error", err)
		metrics.RecordCycle("alerts", "error")
		reported = nil
	} else {
		metrics.RecordCycle("alerts", "ok")
	}

	matched := provider.MatchAreas(reported, p.targets)
	onset := p.state.Reconcile(matched)
	metrics.SetAlertsActive(p.state.ActiveCount())

	for _, area := range onset {
		slog.Info("Hazard alert onset", "area", area)
		if err := p.fanout.Deliver(ctx, notify.FormatAlert(area)); err != nil {
			slog.Error("Alert notification fan-out failed", "area", area, "error", err)
		}
		event := events.NewEvent(events.TypeAlertOnset, area, nil)
		if err := p.publisher.Publish(ctx, event); err != nil {
			slog.Warn("Failed to publish alert event", "area", area, "error", err)
		}
	}
}
