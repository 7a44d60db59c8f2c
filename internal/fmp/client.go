// Package fmp is the REST client for the trade-disclosure provider.
// All requests flow through a Doer so that rate limiting and request
// serialization happen in one place.
package fmp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// MaxPageLimit is the provider's hard cap on the limit query parameter.
const MaxPageLimit = 250

// Endpoint paths.
const (
	pathSenateLatest   = "/senate-latest"
	pathHouseLatest    = "/house-latest"
	pathInsiderTrading = "/insider-trading"
)

// Doer issues a single HTTP request. Implemented by dispatch.Dispatcher.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// APIError represents a non-2xx response from the provider.
type APIError struct {
	StatusCode int
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("provider api error %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// IsAuth reports whether the error is an authentication failure.
// Auth failures are fatal for a run: retrying cannot fix a bad key.
func (e *APIError) IsAuth() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsRetryable reports whether the request may succeed on retry.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// Client provides access to the disclosure endpoints.
type Client struct {
	baseURL string
	apiKey  string
	doer    Doer
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a new provider client. doer is required.
func NewClient(baseURL, apiKey string, doer Doer, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		doer:    doer,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// get performs a GET against path with page/limit pagination and decodes the
// JSON array response into out.
func (c *Client) get(ctx context.Context, path string, page, limit int, out interface{}) error {
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}

	query := url.Values{}
	query.Set("apikey", c.apiKey)
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.doer.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return &APIError{StatusCode: resp.StatusCode, Body: body}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// SenateLatest fetches one page of Senate disclosures. page is 1-based.
func (c *Client) SenateLatest(ctx context.Context, page, limit int) ([]CongressionalTrade, error) {
	var records []CongressionalTrade
	if err := c.get(ctx, pathSenateLatest, page, limit, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// HouseLatest fetches one page of House disclosures. page is 1-based.
func (c *Client) HouseLatest(ctx context.Context, page, limit int) ([]CongressionalTrade, error) {
	var records []CongressionalTrade
	if err := c.get(ctx, pathHouseLatest, page, limit, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// InsiderTrading fetches one page of corporate insider disclosures.
func (c *Client) InsiderTrading(ctx context.Context, page, limit int) ([]InsiderTrade, error) {
	var records []InsiderTrade
	if err := c.get(ctx, pathInsiderTrading, page, limit, &records); err != nil {
		return nil, err
	}
	return records, nil
}
