package notify

import (
	"fmt"

	"github.com/algoldenberg/AirPlaneTracker/internal/model"
)

// FormatFlight renders a landing notification the way subscribers see
// it: callsign and type, route, then the approach numbers.
func FormatFlight(o model.FlightObservation) *Message {
	origin := orPlaceholder(o.Origin, "???")
	destination := orPlaceholder(o.Destination, "???")
	callsign := orPlaceholder(o.Callsign, "—")
	aircraft := orPlaceholder(o.Aircraft, "—")

	alt := "—"
	if o.AltitudeFt != 0 {
		alt = fmt.Sprintf("%.0f ft", o.AltitudeFt)
	}
	spd := "—"
	if o.SpeedKts != 0 {
		spd = fmt.Sprintf("%.0f kts", o.SpeedKts)
	}
	hdg := "—"
	if o.HeadingDeg != 0 {
		hdg = fmt.Sprintf("%.0f°", o.HeadingDeg)
	}

	text := fmt.Sprintf("✈ *%s* — %s\n🛫 %s → %s\n📐 %s | %s | %s",
		callsign, aircraft, origin, destination, alt, spd, hdg)

	return &Message{Kind: "flight", Subject: o.ID, Text: text}
}

// FormatAlert renders a hazard onset notification for one area.
func FormatAlert(area string) *Message {
	return &Message{
		Kind:    "alert",
		Subject: area,
		Text:    fmt.Sprintf("🚨 *Hazard alert*\n\n📍 %s", area),
	}
}

func orPlaceholder(s, placeholder string) string {
	if s == "" {
		return placeholder
	}
	return s
}
