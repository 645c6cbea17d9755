package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// WebhookSender delivers messages as JSON HTTP POSTs. The target is
// the webhook URL.
type WebhookSender struct {
	httpClient *http.Client
}

// NewWebhookSender creates a webhook sender.
func NewWebhookSender() *WebhookSender {
	return &WebhookSender{
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Type returns the channel name this sender handles.
func (s *WebhookSender) Type() string {
	return "webhook"
}

type webhookPayload struct {
	Kind      string `json:"kind"`
	Subject   string `json:"subject"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// Send posts the message to the webhook URL.
func (s *WebhookSender) Send(ctx context.Context, target string, msg *Message) error {
	if target == "" {
		return fmt.Errorf("webhook URL is required")
	}
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		return fmt.Errorf("invalid webhook URL: %q", target)
	}

	payload, err := json.Marshal(webhookPayload{
		Kind:      msg.Kind,
		Subject:   msg.Subject,
		Text:      msg.Text,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
