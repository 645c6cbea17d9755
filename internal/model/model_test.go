package model

import (
	"testing"
	"time"
)

func TestFlightObservation_Normalize(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		obs          FlightObservation
		wantCallsign string
		wantUpdated  string
	}{
		{
			name:         "empty callsign defaulted",
			obs:          FlightObservation{ID: "abc123"},
			wantCallsign: "—",
			wantUpdated:  "2025-06-01T12:00:00Z",
		},
		{
			name: "present fields untouched",
			obs: FlightObservation{
				ID:        "abc123",
				Callsign:  "ELY382",
				UpdatedAt: "2025-05-31T08:00:00Z",
			},
			wantCallsign: "ELY382",
			wantUpdated:  "2025-05-31T08:00:00Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.obs.Normalize(now)
			if tt.obs.Callsign != tt.wantCallsign {
				t.Errorf("Callsign = %q, want %q", tt.obs.Callsign, tt.wantCallsign)
			}
			if tt.obs.UpdatedAt != tt.wantUpdated {
				t.Errorf("UpdatedAt = %q, want %q", tt.obs.UpdatedAt, tt.wantUpdated)
			}
		})
	}
}

func TestFlightObservation_Validate(t *testing.T) {
	obs := FlightObservation{Callsign: "ELY382"}
	if err := obs.Validate(); err == nil {
		t.Error("Validate() should reject an observation without an id")
	}

	obs.ID = "abc123"
	if err := obs.Validate(); err != nil {
		t.Errorf("Validate() unexpected error: %v", err)
	}
}
