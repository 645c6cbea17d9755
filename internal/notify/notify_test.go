package notify

import (
	"context"
	"strings"
	"testing"

	"github.com/algoldenberg/AirPlaneTracker/internal/model"
)

func TestParseSubscriber(t *testing.T) {
	tests := []struct {
		name    string
		entry   string
		want    Subscriber
		wantErr bool
	}{
		{
			name:  "telegram with prefix",
			entry: "telegram:123456",
			want:  Subscriber{Channel: "telegram", Target: "123456"},
		},
		{
			name:  "bare chat id defaults to telegram",
			entry: "123456",
			want:  Subscriber{Channel: "telegram", Target: "123456"},
		},
		{
			name:  "webhook keeps the full URL",
			entry: "webhook:https://example.net/hook",
			want:  Subscriber{Channel: "webhook", Target: "https://example.net/hook"},
		},
		{
			name:  "whitespace trimmed",
			entry: "  telegram:123456 ",
			want:  Subscriber{Channel: "telegram", Target: "123456"},
		},
		{name: "empty entry", entry: "", wantErr: true},
		{name: "unknown channel", entry: "carrier-pigeon:coop-7", wantErr: true},
		{name: "missing target", entry: "telegram:", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSubscriber(tt.entry)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSubscriber(%q) error = %v, wantErr %v", tt.entry, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseSubscriber(%q) = %+v, want %+v", tt.entry, got, tt.want)
			}
		})
	}
}

func TestSubscriber_String(t *testing.T) {
	s := Subscriber{Channel: "webhook", Target: "https://example.net/hook"}
	if got := s.String(); got != "webhook:https://example.net/hook" {
		t.Errorf("String() = %q", got)
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register(NewWebhookSender())

	if _, ok := r.Get("webhook"); !ok {
		t.Error("Get(webhook) should find the registered sender")
	}
	if _, ok := r.Get("telegram"); ok {
		t.Error("Get(telegram) should not find an unregistered sender")
	}
	if got := r.List(); len(got) != 1 || got[0] != "webhook" {
		t.Errorf("List() = %v", got)
	}
}

func TestFormatFlight(t *testing.T) {
	obs := model.FlightObservation{
		ID:          "3a2b1c",
		Callsign:    "ELY382",
		Aircraft:    "B738",
		Origin:      "LCA",
		Destination: "TLV",
		AltitudeFt:  2000,
		SpeedKts:    140,
		HeadingDeg:  100,
	}

	msg := FormatFlight(obs)
	if msg.Kind != "flight" || msg.Subject != "3a2b1c" {
		t.Errorf("message envelope = %s/%s", msg.Kind, msg.Subject)
	}
	for _, want := range []string{"ELY382", "B738", "LCA", "TLV", "2000 ft", "140 kts", "100°"} {
		if !strings.Contains(msg.Text, want) {
			t.Errorf("FormatFlight() text missing %q:\n%s", want, msg.Text)
		}
	}
}

func TestFormatFlight_MissingFields(t *testing.T) {
	msg := FormatFlight(model.FlightObservation{ID: "3a2b1c"})
	if !strings.Contains(msg.Text, "???") {
		t.Errorf("missing route should render placeholders:\n%s", msg.Text)
	}
	if strings.Contains(msg.Text, "0 ft") {
		t.Errorf("zero altitude should render a placeholder, not 0 ft:\n%s", msg.Text)
	}
}

func TestFormatAlert(t *testing.T) {
	msg := FormatAlert("תל אביב - דרום")
	if msg.Kind != "alert" || msg.Subject != "תל אביב - דרום" {
		t.Errorf("message envelope = %s/%s", msg.Kind, msg.Subject)
	}
	if !strings.Contains(msg.Text, "תל אביב - דרום") {
		t.Errorf("FormatAlert() text missing area:\n%s", msg.Text)
	}
}

func TestWebhookSender_Send_Validation(t *testing.T) {
	s := NewWebhookSender()
	msg := &Message{Kind: "flight", Subject: "3a2b1c", Text: "test"}

	if err := s.Send(context.Background(), "", msg); err == nil {
		t.Error("Send() should reject an empty URL")
	}
	if err := s.Send(context.Background(), "ftp://example.net", msg); err == nil {
		t.Error("Send() should reject a non-HTTP URL")
	}
}

func TestTelegramSender_Send_Validation(t *testing.T) {
	s := NewTelegramSender("test-token")
	msg := &Message{Kind: "flight", Subject: "3a2b1c", Text: "test"}

	if err := s.Send(context.Background(), "", msg); err == nil {
		t.Error("Send() should reject an empty chat id")
	}
}
