// Package classify implements the landing-corridor classifier.
package classify

import (
	"fmt"

	"github.com/algoldenberg/AirPlaneTracker/internal/model"
)

// Criteria describes the landing corridor for the home airport. An
// observation is considered to be on final approach when its altitude
// and heading fall inside the corridor, it is not departing from the
// home airport, and its destination is either unknown or the home
// airport itself.
type Criteria struct {
	MinAltitudeFt float64
	MaxAltitudeFt float64
	MinHeadingDeg float64
	MaxHeadingDeg float64
	HomeAirport   string
}

// Validate checks that the corridor bounds are coherent.
func (c Criteria) Validate() error {
	if c.MinAltitudeFt > c.MaxAltitudeFt {
		return fmt.Errorf("min altitude %v exceeds max altitude %v", c.MinAltitudeFt, c.MaxAltitudeFt)
	}
	if c.MinHeadingDeg > c.MaxHeadingDeg {
		return fmt.Errorf("min heading %v exceeds max heading %v", c.MinHeadingDeg, c.MaxHeadingDeg)
	}
	if c.HomeAirport == "" {
		return fmt.Errorf("home airport cannot be empty")
	}
	return nil
}

// IsLanding reports whether the observation is inside the landing
// corridor. Pure and deterministic; bounds are inclusive on both
// ends. Missing numeric fields are zero and fail the range checks, so
// absent data never classifies as landing.
func (c Criteria) IsLanding(o model.FlightObservation) bool {
	if o.AltitudeFt < c.MinAltitudeFt || o.AltitudeFt > c.MaxAltitudeFt {
		return false
	}
	if o.HeadingDeg < c.MinHeadingDeg || o.HeadingDeg > c.MaxHeadingDeg {
		return false
	}
	// Inbound to home, or destination unknown.
	if o.Destination != "" && o.Destination != c.HomeAirport {
		return false
	}
	// Not a departure from home.
	if o.Origin == c.HomeAirport {
		return false
	}
	return true
}
