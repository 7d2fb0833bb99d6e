// Package proxy provides the HTTP forward proxy that cleans navigations.
package proxy

import (
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/Extra-Chill/url-cleaner/internal/history"
	"github.com/Extra-Chill/url-cleaner/internal/mode"
	"github.com/Extra-Chill/url-cleaner/internal/rules"
)

// Skip reasons reported in a Verdict.
const (
	SkipNotNavigation = "not a navigation"
	SkipExempt        = "exempt scheme"
	SkipModeOff       = "mode off"
	SkipIgnoredHost   = "ignored host"
)

// Verdict is the outcome of inspecting one request.
type Verdict struct {
	Client    string
	Original  string
	Cleaned   string
	Decisions []rules.Decision
	Rewrite   bool   // redirect the client to Cleaned
	Audit     bool   // would have redirected, but in audit mode
	Skipped   string // non-empty when cleaning was not attempted
}

// Changed reports whether the rules would change the URL.
func (v Verdict) Changed() bool {
	return v.Cleaned != "" && v.Cleaned != v.Original
}

// Inspector decides whether a proxied request gets its URL cleaned.
type Inspector struct {
	engine      *rules.Engine
	modeManager *mode.Manager
	history     *history.Log
	ignore      *IgnoreList
	logger      *slog.Logger
}

// InspectorOption configures the Inspector.
type InspectorOption func(*Inspector)

// WithHistory records every changed navigation in h.
func WithHistory(h *history.Log) InspectorOption {
	return func(i *Inspector) {
		i.history = h
	}
}

// WithIgnoreList leaves navigations to hosts on l untouched.
func WithIgnoreList(l *IgnoreList) InspectorOption {
	return func(i *Inspector) {
		i.ignore = l
	}
}

// WithLogger sets the logger for inspection decisions.
func WithLogger(l *slog.Logger) InspectorOption {
	return func(i *Inspector) {
		if l != nil {
			i.logger = l
		}
	}
}

// NewInspector creates a new request inspector.
func NewInspector(engine *rules.Engine, modeManager *mode.Manager, opts ...InspectorOption) *Inspector {
	i := &Inspector{
		engine:      engine,
		modeManager: modeManager,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// ExtractHost extracts the host/domain from an HTTP request.
// For CONNECT requests, it parses the host from the URL.
// For regular requests, it uses the Host header.
func (i *Inspector) ExtractHost(r *http.Request) string {
	host := r.Host
	if host == "" {
		host = r.URL.Host
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.ToLower(strings.Trim(host, "[]"))
}

// extractClientIP returns the IP part of the request's remote address.
func extractClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// isNavigation reports whether r is a top-level page load.
// Browsers send Sec-Fetch-Dest: document for main frame navigations; older
// clients send nothing.
func isNavigation(r *http.Request) bool {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return false
	}
	switch r.Header.Get("Sec-Fetch-Dest") {
	case "", "document":
		return true
	}
	return false
}

// Inspect cleans the request URL according to the current rules and mode.
func (i *Inspector) Inspect(r *http.Request) Verdict {
	v := Verdict{
		Client:   extractClientIP(r),
		Original: r.URL.String(),
	}

	switch {
	case !isNavigation(r):
		v.Skipped = SkipNotNavigation
		return v
	case rules.Exempt(v.Original):
		v.Skipped = SkipExempt
		return v
	case !i.modeManager.Enabled(v.Client):
		v.Skipped = SkipModeOff
		return v
	case i.ignore.Has(i.ExtractHost(r)):
		v.Skipped = SkipIgnoredHost
		return v
	}

	v.Cleaned, v.Decisions = i.engine.Trace(v.Original)
	v.Rewrite, v.Audit = i.modeManager.Resolve(v.Client, v.Changed())

	switch {
	case v.Rewrite:
		i.logger.Info("navigation cleaned", "client", v.Client, "url", v.Original, "cleaned", v.Cleaned, "passes", len(v.Decisions))
		i.record(v, history.ActionCleaned)
	case v.Audit:
		i.logger.Info("navigation audit", "client", v.Client, "url", v.Original, "would_clean", v.Cleaned)
		i.record(v, history.ActionAudit)
	}
	return v
}

func (i *Inspector) record(v Verdict, action history.Action) {
	if i.history == nil {
		return
	}
	reasons := make([]string, len(v.Decisions))
	for n, d := range v.Decisions {
		reasons[n] = d.String()
	}
	i.history.Add(history.Event{
		Source:   history.SourceNavigation,
		Client:   v.Client,
		Original: v.Original,
		Cleaned:  v.Cleaned,
		Action:   action,
		Reason:   strings.Join(reasons, "; "),
	})
}

// Mode returns the current mode for a client.
func (i *Inspector) Mode(client string) mode.Mode {
	return i.modeManager.ClientMode(client)
}
