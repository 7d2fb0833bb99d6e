package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Extra-Chill/url-cleaner/internal/clipboard"
)

var _ clipboard.TextCleaner = (*Client)(nil)

// APIError is a non-2xx response from the management API.
type APIError struct {
	Status  int
	Message string
	Details string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("api: %s (%d): %s", e.Message, e.Status, e.Details)
	}
	return fmt.Sprintf("api: %s (%d)", e.Message, e.Status)
}

// Client talks to a running url-cleaner management API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a client for the API at baseURL.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Status fetches GET /status.
func (c *Client) Status(ctx context.Context) (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.do(ctx, http.MethodGet, "/status", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Clean cleans a single URL remotely.
func (c *Client) Clean(ctx context.Context, rawURL string) (*CleanResponse, error) {
	var resp CleanResponse
	if err := c.do(ctx, http.MethodPost, "/clean", CleanRequest{URL: rawURL}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CleanText implements clipboard.TextCleaner against the remote engine.
func (c *Client) CleanText(ctx context.Context, text string) (string, error) {
	var resp CleanTextResponse
	if err := c.do(ctx, http.MethodPost, "/clean/text", CleanTextRequest{Text: text}, &resp); err != nil {
		return text, err
	}
	return resp.Cleaned, nil
}

// Rules fetches the active rules document.
func (c *Client) Rules(ctx context.Context) (*RulesResponse, error) {
	var resp RulesResponse
	if err := c.do(ctx, http.MethodGet, "/rules", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PutRules replaces the rules document.
func (c *Client) PutRules(ctx context.Context, text string) (*RulesResponse, error) {
	var resp RulesResponse
	if err := c.do(ctx, http.MethodPut, "/rules", PutRulesRequest{Text: text}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ResetRules restores the default rules document.
func (c *Client) ResetRules(ctx context.Context) (*RulesResponse, error) {
	var resp RulesResponse
	if err := c.do(ctx, http.MethodPost, "/rules/reset", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Mode fetches the global mode and client overrides.
func (c *Client) Mode(ctx context.Context) (*ModeResponse, error) {
	var resp ModeResponse
	if err := c.do(ctx, http.MethodGet, "/mode", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SetMode changes the global mode or a client override.
func (c *Client) SetMode(ctx context.Context, req SetModeRequest) (*ModeResponse, error) {
	var resp ModeResponse
	if err := c.do(ctx, http.MethodPut, "/mode", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logs fetches one page of the cleaning history, oldest first.
func (c *Client) Logs(ctx context.Context, offset, limit int) (*LogListResponse, error) {
	var resp LogListResponse
	path := fmt.Sprintf("/logs?offset=%d&limit=%d", offset, limit)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("api unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var e ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&e); err == nil && e.Error != "" {
			apiErr.Message, apiErr.Details = e.Error, e.Details
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
