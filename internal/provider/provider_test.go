package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestParseFeed(t *testing.T) {
	body := []byte(`{
		"full_count": 12345,
		"version": 4,
		"3a2b1c": ["4X-EHD", 32.1, 34.8, 100, 2000, 140, "1234", "radar1", "B738", "4X-EHD", 1717243200, "LCA", "TLV", "LY382", 0, -700, "ELY382", 0, "ELY"],
		"9f8e7d": ["4X-AAA", 32.2, 34.9, 270, 500, 120, "4321", "radar1", "C172", "4X-AAA", 1717243200, "", "", "", 1, 0, "", 0, ""]
	}`)

	observedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	observations, err := ParseFeed(body, observedAt)
	if err != nil {
		t.Fatalf("ParseFeed() error = %v", err)
	}
	if len(observations) != 2 {
		t.Fatalf("ParseFeed() returned %d observations, want 2", len(observations))
	}

	byID := map[string]int{}
	for i, o := range observations {
		byID[o.ID] = i
	}

	landing := observations[byID["3a2b1c"]]
	if landing.Callsign != "ELY382" {
		t.Errorf("Callsign = %q, want ELY382", landing.Callsign)
	}
	if landing.Origin != "LCA" || landing.Destination != "TLV" {
		t.Errorf("route = %s->%s, want LCA->TLV", landing.Origin, landing.Destination)
	}
	if landing.AltitudeFt != 2000 || landing.HeadingDeg != 100 || landing.SpeedKts != 140 {
		t.Errorf("numerics = alt %v hdg %v spd %v", landing.AltitudeFt, landing.HeadingDeg, landing.SpeedKts)
	}
	if landing.VerticalSpeed != -700 {
		t.Errorf("VerticalSpeed = %v, want -700", landing.VerticalSpeed)
	}
	if landing.OnGround {
		t.Error("OnGround = true, want false")
	}

	grounded := observations[byID["9f8e7d"]]
	if !grounded.OnGround {
		t.Error("OnGround = false, want true")
	}
	if grounded.Callsign != "—" {
		t.Errorf("missing callsign = %q, want placeholder", grounded.Callsign)
	}
}

func TestParseFeed_InvalidDocument(t *testing.T) {
	if _, err := ParseFeed([]byte("not json"), time.Now()); err == nil {
		t.Error("ParseFeed() should fail on invalid JSON")
	}
}

func TestParseFeed_TruncatedEntry(t *testing.T) {
	// Entries shorter than the full field list default missing fields.
	body := []byte(`{"ab12cd": ["4X-EHD", 32.1, 34.8, 100, 2000]}`)
	observations, err := ParseFeed(body, time.Now().UTC())
	if err != nil {
		t.Fatalf("ParseFeed() error = %v", err)
	}
	if len(observations) != 1 {
		t.Fatalf("got %d observations, want 1", len(observations))
	}
	obs := observations[0]
	if obs.AltitudeFt != 2000 {
		t.Errorf("AltitudeFt = %v, want 2000", obs.AltitudeFt)
	}
	if obs.Destination != "" || obs.SpeedKts != 0 {
		t.Errorf("missing fields should be zero, got dest %q speed %v", obs.Destination, obs.SpeedKts)
	}
}

func TestBoundsByPoint(t *testing.T) {
	bounds := boundsByPoint(32.0, 34.8, 5000)
	parts := strings.Split(bounds, ",")
	if len(parts) != 4 {
		t.Fatalf("bounds %q should have 4 parts", bounds)
	}
	// North must exceed south, east must exceed west.
	if parts[0] <= parts[1] {
		t.Errorf("north %s should exceed south %s", parts[0], parts[1])
	}
}

func TestHazardClient_ActiveAreas(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    []string
		wantErr bool
	}{
		{
			name:   "active alerts",
			status: http.StatusOK,
			body:   `{"data": ["תל אביב - דרום", "חולון"]}`,
			want:   []string{"תל אביב - דרום", "חולון"},
		},
		{
			name:   "empty body means no alerts",
			status: http.StatusOK,
			body:   "  \n",
			want:   nil,
		},
		{
			name:    "non-success status",
			status:  http.StatusServiceUnavailable,
			body:    "",
			wantErr: true,
		},
		{
			name:    "invalid body",
			status:  http.StatusOK,
			body:    "<html>blocked</html>",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("X-Requested-With") != "XMLHttpRequest" {
					t.Error("request is missing X-Requested-With header")
				}
				if r.Header.Get("Referer") == "" {
					t.Error("request is missing Referer header")
				}
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewHazardClient(srv.URL)
			got, err := client.ActiveAreas(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("ActiveAreas() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ActiveAreas() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatchAreas(t *testing.T) {
	targets := []string{"תל אביב - דרום", "תל אביב"}

	tests := []struct {
		name     string
		reported []string
		want     []string
	}{
		{
			name:     "substring match",
			reported: []string{"תל אביב - מרכז העיר", "חיפה"},
			want:     []string{"תל אביב - מרכז העיר"},
		},
		{
			name:     "no match",
			reported: []string{"חיפה", "אשדוד"},
			want:     nil,
		},
		{
			name:     "each area matched once",
			reported: []string{"תל אביב - דרום"},
			want:     []string{"תל אביב - דרום"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchAreas(tt.reported, targets)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MatchAreas() = %v, want %v", got, tt.want)
			}
		})
	}
}
