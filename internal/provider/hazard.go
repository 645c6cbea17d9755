package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const hazardTimeout = 4 * time.Second

// HazardClient polls the public hazard-alert service. The service
// only answers requests carrying the headers its own site sends.
type HazardClient struct {
	url        string
	httpClient *http.Client
}

// NewHazardClient creates a client for the given alert document URL.
func NewHazardClient(url string) *HazardClient {
	return &HazardClient{
		url:        url,
		httpClient: &http.Client{Timeout: hazardTimeout},
	}
}

// hazardDocument is the alert service response shape.
type hazardDocument struct {
	Data []string `json:"data"`
}

// ActiveAreas returns the area names currently under alert. Any
// transport error, non-success status, or empty/invalid body is
// returned as an error; the caller resolves every error to "zero
// active alerts this cycle".
func (c *HazardClient) ActiveAreas(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create hazard request: %w", err)
	}
	req.Header.Set("Referer", "https://www.oref.org.il/")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch hazard feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("hazard feed returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read hazard body: %w", err)
	}

	// The service returns an empty body when no alerts are active.
	if strings.TrimSpace(string(body)) == "" {
		return nil, nil
	}

	var doc hazardDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode hazard document: %w", err)
	}
	return doc.Data, nil
}

// MatchAreas filters the reported areas down to those containing any
// of the configured target names.
func MatchAreas(reported, targets []string) []string {
	var matched []string
	for _, area := range reported {
		for _, target := range targets {
			if strings.Contains(area, target) {
				matched = append(matched, area)
				break
			}
		}
	}
	return matched
}
