// Package model defines the flight observation schema shared by the
// tracker pipeline, the store, and the HTTP API.
package model

import (
	"fmt"
	"time"
)

// FlightObservation is one telemetry sample for a single aircraft leg.
// The provider may omit any field except ID; Normalize fills the
// defaults so downstream code never deals with missing values.
type FlightObservation struct {
	ID            string  `json:"id"`
	Callsign      string  `json:"callsign"`
	AirlineICAO   string  `json:"airline_icao,omitempty"`
	Aircraft      string  `json:"aircraft"`
	Registration  string  `json:"registration,omitempty"`
	Origin        string  `json:"origin"`
	Destination   string  `json:"destination"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	AltitudeFt    float64 `json:"altitude_ft"`
	SpeedKts      float64 `json:"speed_kts"`
	HeadingDeg    float64 `json:"heading_deg"`
	VerticalSpeed float64 `json:"vertical_speed"`
	OnGround      bool    `json:"on_ground"`
	UpdatedAt     string  `json:"updated_at"`
}

// HistoryRecord is a FlightObservation that was admitted to the
// history ledger, stamped with the time it was first seen.
type HistoryRecord struct {
	FlightObservation
	FirstSeen time.Time `json:"first_seen"`
}

// Normalize applies defaults for optional fields. Numeric fields keep
// their zero value when absent, which conservatively fails the
// landing-corridor range checks.
func (o *FlightObservation) Normalize(observedAt time.Time) {
	if o.Callsign == "" {
		o.Callsign = "—"
	}
	if o.UpdatedAt == "" {
		o.UpdatedAt = observedAt.Format(time.RFC3339)
	}
}

// Validate reports whether the observation is usable at all. Records
// without a stable identity cannot be deduplicated and are dropped
// individually at the ingestion boundary.
func (o *FlightObservation) Validate() error {
	if o.ID == "" {
		return fmt.Errorf("observation has no id")
	}
	return nil
}
