// Package provider implements HTTP clients for the two external
// feeds: the aircraft telemetry snapshot and the hazard-alert
// service. Both carry explicit timeouts; a slow or failing provider
// costs one cycle, never blocks a loop.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/algoldenberg/AirPlaneTracker/internal/model"
)

const telemetryTimeout = 10 * time.Second

// TelemetryClient fetches aircraft inside a bounding box around the
// home point from a radar-feed endpoint. The feed returns a JSON
// object keyed by flight id, each value a positional array of sample
// fields, plus a few scalar bookkeeping entries that are skipped.
type TelemetryClient struct {
	baseURL    string
	httpClient *http.Client
	bounds     string
}

// NewTelemetryClient creates a client centered on (lat, lon) with a
// search radius in meters.
func NewTelemetryClient(baseURL string, lat, lon float64, radiusMeters int) *TelemetryClient {
	return &TelemetryClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: telemetryTimeout},
		bounds:     boundsByPoint(lat, lon, radiusMeters),
	}
}

// Fetch returns the current aircraft samples inside the bounding box.
// Samples with unusable required fields are dropped individually.
func (c *TelemetryClient) Fetch(ctx context.Context) ([]model.FlightObservation, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid telemetry url: %w", err)
	}
	q := u.Query()
	q.Set("bounds", c.bounds)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create telemetry request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch telemetry: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("telemetry provider returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read telemetry body: %w", err)
	}

	return ParseFeed(body, time.Now().UTC())
}

// ParseFeed decodes the raw feed document into observations.
// Exported for tests; Fetch is a thin transport wrapper around it.
func ParseFeed(body []byte, observedAt time.Time) ([]model.FlightObservation, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode telemetry feed: %w", err)
	}

	observations := make([]model.FlightObservation, 0, len(doc))
	for id, raw := range doc {
		var fields []any
		if err := json.Unmarshal(raw, &fields); err != nil {
			// Scalar bookkeeping entries such as full_count.
			continue
		}
		obs := observationFromFields(id, fields)
		obs.Normalize(observedAt)
		if err := obs.Validate(); err != nil {
			continue
		}
		observations = append(observations, obs)
	}
	return observations, nil
}

// Field positions in the radar feed's per-flight array.
const (
	fieldLatitude = 1 + iota
	fieldLongitude
	fieldHeading
	fieldAltitude
	fieldSpeed
	_ // squawk
	_ // radar
	fieldAircraft
	fieldRegistration
	_ // timestamp
	fieldOrigin
	fieldDestination
	_ // flight number
	fieldOnGround
	fieldVerticalSpeed
	fieldCallsign
	_ // glider flag
	fieldAirlineICAO
)

func observationFromFields(id string, fields []any) model.FlightObservation {
	return model.FlightObservation{
		ID:            id,
		Callsign:      stringAt(fields, fieldCallsign),
		AirlineICAO:   stringAt(fields, fieldAirlineICAO),
		Aircraft:      stringAt(fields, fieldAircraft),
		Registration:  stringAt(fields, fieldRegistration),
		Origin:        stringAt(fields, fieldOrigin),
		Destination:   stringAt(fields, fieldDestination),
		Latitude:      floatAt(fields, fieldLatitude),
		Longitude:     floatAt(fields, fieldLongitude),
		AltitudeFt:    floatAt(fields, fieldAltitude),
		SpeedKts:      floatAt(fields, fieldSpeed),
		HeadingDeg:    floatAt(fields, fieldHeading),
		VerticalSpeed: floatAt(fields, fieldVerticalSpeed),
		OnGround:      floatAt(fields, fieldOnGround) != 0,
	}
}

func stringAt(fields []any, i int) string {
	if i >= len(fields) {
		return ""
	}
	s, _ := fields[i].(string)
	return s
}

func floatAt(fields []any, i int) float64 {
	if i >= len(fields) {
		return 0
	}
	switch v := fields[i].(type) {
	case float64:
		return v
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// boundsByPoint converts a center point and radius into the
// "north,south,west,east" bounds string the feed expects.
func boundsByPoint(lat, lon float64, radiusMeters int) string {
	const metersPerDegreeLat = 111320.0

	latDelta := float64(radiusMeters) / metersPerDegreeLat
	lonScale := metersPerDegreeLat * math.Cos(lat*math.Pi/180)
	if lonScale < 1 {
		lonScale = 1
	}
	lonDelta := float64(radiusMeters) / lonScale

	return fmt.Sprintf("%.4f,%.4f,%.4f,%.4f",
		lat+latDelta, lat-latDelta, lon-lonDelta, lon+lonDelta)
}
