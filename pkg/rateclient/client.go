/**
 * @description
 * This package provides a thin client for the public exchange-rate source: a single
 * unauthenticated "latest rates relative to a base currency" fetch returning a
 * currency-code-to-rate mapping and an as-of timestamp.
 *
 * @dependencies
 * - context, encoding/json, fmt, net/http, time: Standard Go libraries.
 */
package rateclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client fetches exchange-rate tables.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a new rate source client with a bounded request timeout.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type latestResponse struct {
	Result             string             `json:"result"`
	BaseCode           string             `json:"base_code"`
	Rates              map[string]float64 `json:"rates"`
	TimeLastUpdateUnix int64              `json:"time_last_update_unix"`
}

// FetchLatest retrieves the latest rate table relative to base. The returned time is
// the source's as-of timestamp when present, otherwise the fetch time.
func (c *Client) FetchLatest(ctx context.Context, base string) (map[string]float64, time.Time, error) {
	url := fmt.Sprintf("%s/v6/latest/%s", c.BaseURL, base)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to create rate request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to execute rate request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to read rate response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, time.Time{}, fmt.Errorf("rate source returned status %d", resp.StatusCode)
	}

	var decoded latestResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to decode rate response: %w", err)
	}
	if decoded.Result != "" && decoded.Result != "success" {
		return nil, time.Time{}, fmt.Errorf("rate source returned result %q", decoded.Result)
	}
	if len(decoded.Rates) == 0 {
		return nil, time.Time{}, fmt.Errorf("rate source returned an empty table for base %s", base)
	}

	asOf := time.Now().UTC()
	if decoded.TimeLastUpdateUnix > 0 {
		asOf = time.Unix(decoded.TimeLastUpdateUnix, 0).UTC()
	}
	return decoded.Rates, asOf, nil
}
