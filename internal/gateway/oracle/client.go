// Package oracle is the HTTP client for the external decision service used
// by the weighted dispatch strategy.
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"dispatch-service/internal/service/dispatch"
)

// StatusError is a non-2xx answer from the decision service.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("decision oracle returned %d", e.Code)
}

// Client calls the decision service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a decision-oracle client. Returns nil when no URL is
// configured, which disables the weighted strategy.
func NewClient(baseURL string, timeout time.Duration) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Decide posts the scoring request and parses the structured decision.
func (c *Client) Decide(ctx context.Context, req dispatch.DecisionRequest) (*dispatch.Decision, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("oracle: marshal request: %w", err)
	}

	url := c.baseURL + "/v1/decisions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("oracle: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("oracle: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	var dec dispatch.Decision
	if err := json.NewDecoder(resp.Body).Decode(&dec); err != nil {
		return nil, fmt.Errorf("oracle: decode response: %w", err)
	}
	return &dec, nil
}
