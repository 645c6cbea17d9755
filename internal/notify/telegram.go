package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const telegramAPIBase = "https://api.telegram.org"

// TelegramSender delivers messages through the Telegram Bot API.
type TelegramSender struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

// NewTelegramSender creates a telegram sender for the given bot token.
func NewTelegramSender(token string) *TelegramSender {
	return &TelegramSender{
		token:      token,
		baseURL:    telegramAPIBase,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Type returns the channel name this sender handles.
func (s *TelegramSender) Type() string {
	return "telegram"
}

type telegramRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Send posts the message to the subscriber's chat. The target is the
// telegram chat id.
func (s *TelegramSender) Send(ctx context.Context, target string, msg *Message) error {
	if target == "" {
		return fmt.Errorf("telegram chat id is required")
	}

	payload, err := json.Marshal(telegramRequest{
		ChatID:    target,
		Text:      msg.Text,
		ParseMode: "Markdown",
	})
	if err != nil {
		return fmt.Errorf("failed to marshal telegram request: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.baseURL, s.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read telegram response: %w", err)
	}

	var tr telegramResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return fmt.Errorf("telegram returned status %d with unreadable body", resp.StatusCode)
	}
	if !tr.OK {
		return fmt.Errorf("telegram rejected message for chat %s: %s", target, tr.Description)
	}
	return nil
}
