// Package api provides the REST API for url-cleaner management.
package api

import (
	"time"

	"github.com/Extra-Chill/url-cleaner/internal/history"
	"github.com/Extra-Chill/url-cleaner/internal/logging"
	"github.com/Extra-Chill/url-cleaner/internal/mode"
	"github.com/Extra-Chill/url-cleaner/internal/rules"
)

// StatusResponse is the response for GET /status.
type StatusResponse struct {
	Status        string         `json:"status"`
	Version       string         `json:"version"`
	Uptime        string         `json:"uptime"`
	StartedAt     time.Time      `json:"started_at"`
	Mode          mode.Mode      `json:"mode"`
	Revision      string         `json:"revision"`
	RulesLoadedAt time.Time      `json:"rules_loaded_at"`
	RuleCount     int            `json:"rule_count"`
	Rules         rules.Stats    `json:"rules"`
	Totals        history.Totals `json:"totals"`
}

// RulesResponse is the response for GET /rules, PUT /rules and POST /rules/reset.
type RulesResponse struct {
	Text     string        `json:"text"`
	Revision string        `json:"revision"`
	Stats    rules.Stats   `json:"stats"`
	Issues   []rules.Issue `json:"issues,omitempty"`
}

// PutRulesRequest is the request body for PUT /rules.
type PutRulesRequest struct {
	Text string `json:"text"`
}

// CleanRequest is the request body for POST /clean.
type CleanRequest struct {
	URL string `json:"url"`
}

// CleanResponse is the response for POST /clean.
type CleanResponse struct {
	URL       string   `json:"url"`
	Cleaned   string   `json:"cleaned"`
	Changed   bool     `json:"changed"`
	Audit     bool     `json:"audit,omitempty"` // would have changed, but in audit mode
	Decisions []string `json:"decisions,omitempty"`
}

// CleanTextRequest is the request body for POST /clean/text.
type CleanTextRequest struct {
	Text string `json:"text"`
}

// CleanTextResponse is the response for POST /clean/text.
type CleanTextResponse struct {
	Text    string `json:"text"`
	Cleaned string `json:"cleaned"`
	Changed bool   `json:"changed"`
	Audit   bool   `json:"audit,omitempty"`
}

// LogListResponse is the response for GET /logs.
type LogListResponse struct {
	Logs   []history.Event `json:"logs"`
	Total  int             `json:"total"`
	Offset int             `json:"offset"`
	Limit  int             `json:"limit"`
}

// ServerLogResponse is the response for GET /debug/log.
type ServerLogResponse struct {
	Entries []logging.Entry `json:"entries"`
}

// ModeResponse is the response for GET /mode and PUT /mode.
type ModeResponse struct {
	Global  mode.Mode            `json:"global"`
	Clients map[string]mode.Mode `json:"clients"`
}

// SetModeRequest is the request body for PUT /mode.
// With Client set, the override applies to that client IP only; Clear
// removes the override instead.
type SetModeRequest struct {
	Mode   string `json:"mode,omitempty"`
	Client string `json:"client,omitempty"`
	Clear  bool   `json:"clear,omitempty"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Details string `json:"details,omitempty"`
}
