package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/Extra-Chill/url-cleaner/internal/clipboard"
	"github.com/Extra-Chill/url-cleaner/internal/history"
	"github.com/Extra-Chill/url-cleaner/internal/logging"
	"github.com/Extra-Chill/url-cleaner/internal/mode"
	"github.com/Extra-Chill/url-cleaner/internal/rules"
	"github.com/Extra-Chill/url-cleaner/internal/store"
)

// maxBodySize bounds request bodies; rule documents are small.
const maxBodySize = 1 << 20

// Deps are the components the handlers operate on.
// Store, History and Logs may be nil.
type Deps struct {
	Engine  *rules.Engine
	Store   *store.Store
	Modes   *mode.Manager
	History *history.Log
	Logs    *logging.Buffer
	Logger  *slog.Logger
	Version string
}

// Handlers holds all HTTP handlers and their dependencies.
type Handlers struct {
	Deps
	startedAt time.Time
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(d Deps) *Handlers {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Modes == nil {
		d.Modes = mode.NewManager()
	}
	return &Handlers{Deps: d, startedAt: time.Now()}
}

// StatusHandler handles GET /status.
func (h *Handlers) StatusHandler(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Status:        "operational",
		Version:       h.Version,
		Uptime:        time.Since(h.startedAt).Round(time.Second).String(),
		StartedAt:     h.startedAt,
		Mode:          h.Modes.GlobalMode(),
		Revision:      h.Engine.Revision(),
		RulesLoadedAt: h.Engine.LoadedAt(),
		RuleCount:     h.Engine.RuleCount(),
		Rules:         h.Engine.Stats(),
	}
	if h.History != nil {
		resp.Totals = h.History.Totals()
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetRulesHandler handles GET /rules.
func (h *Handlers) GetRulesHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.rulesResponse())
}

// PutRulesHandler handles PUT /rules.
func (h *Handlers) PutRulesHandler(w http.ResponseWriter, r *http.Request) {
	var req PutRulesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.saveRules(w, req.Text)
}

// ResetRulesHandler handles POST /rules/reset.
func (h *Handlers) ResetRulesHandler(w http.ResponseWriter, r *http.Request) {
	h.saveRules(w, rules.DefaultRules)
}

func (h *Handlers) saveRules(w http.ResponseWriter, text string) {
	if h.Store == nil {
		h.Engine.LoadText(text)
		writeJSON(w, http.StatusOK, h.rulesResponse())
		return
	}

	if err := h.Store.Save(text); err != nil {
		h.Logger.Error("save rules", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save rules")
		return
	}
	// Load whatever is on disk now; a later Save wins over this request's text.
	if _, err := h.Store.Apply(h.Engine.LoadText); err != nil {
		h.Logger.Error("apply rules", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to apply rules")
		return
	}
	writeJSON(w, http.StatusOK, h.rulesResponse())
}

func (h *Handlers) rulesResponse() RulesResponse {
	text := h.Engine.Text()
	return RulesResponse{
		Text:     text,
		Revision: h.Engine.Revision(),
		Stats:    h.Engine.Stats(),
		Issues:   rules.Lint(text),
	}
}

// CleanHandler handles POST /clean.
func (h *Handlers) CleanHandler(w http.ResponseWriter, r *http.Request) {
	var req CleanRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	client := clientIP(r)
	resp := CleanResponse{URL: req.URL, Cleaned: req.URL}
	if !h.Modes.Enabled(client) || rules.Exempt(req.URL) {
		writeJSON(w, http.StatusOK, resp)
		return
	}

	cleaned, decisions := h.Engine.Trace(req.URL)
	rewrite, audit := h.Modes.Resolve(client, cleaned != req.URL)
	for _, d := range decisions {
		resp.Decisions = append(resp.Decisions, d.String())
	}
	if rewrite {
		resp.Cleaned, resp.Changed = cleaned, true
	}
	resp.Audit = audit

	h.record(client, req.URL, cleaned, rewrite, audit)
	writeJSON(w, http.StatusOK, resp)
}

// CleanTextHandler handles POST /clean/text.
func (h *Handlers) CleanTextHandler(w http.ResponseWriter, r *http.Request) {
	var req CleanTextRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	client := clientIP(r)
	resp := CleanTextResponse{Text: req.Text, Cleaned: req.Text}
	if !h.Modes.Enabled(client) || clipboard.DocumentGuard(h.Engine.Text)(req.Text) {
		writeJSON(w, http.StatusOK, resp)
		return
	}

	cleaned := clipboard.CleanText(req.Text, clipboard.URLCleaner(h.Engine))
	rewrite, audit := h.Modes.Resolve(client, cleaned != req.Text)
	if rewrite {
		resp.Cleaned, resp.Changed = cleaned, true
	}
	resp.Audit = audit

	h.record(client, req.Text, cleaned, rewrite, audit)
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) record(client, original, cleaned string, rewrite, audit bool) {
	if h.History == nil || (!rewrite && !audit) {
		return
	}
	action := history.ActionCleaned
	if audit {
		action = history.ActionAudit
	}
	h.History.Record(history.SourceAPI, client, original, cleaned, action)
}

// ListLogsHandler handles GET /logs.
func (h *Handlers) ListLogsHandler(w http.ResponseWriter, r *http.Request) {
	offset, limit := pagination(r, 100)

	resp := LogListResponse{Logs: []history.Event{}, Offset: offset, Limit: limit}
	if h.History != nil {
		resp.Logs, resp.Total = h.History.List(offset, limit)
	}
	writeJSON(w, http.StatusOK, resp)
}

// ServerLogHandler handles GET /debug/log.
func (h *Handlers) ServerLogHandler(w http.ResponseWriter, r *http.Request) {
	_, limit := pagination(r, 100)

	resp := ServerLogResponse{Entries: []logging.Entry{}}
	if h.Logs != nil {
		resp.Entries = h.Logs.Entries(limit)
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetModeHandler handles GET /mode.
func (h *Handlers) GetModeHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.modeResponse())
}

// SetModeHandler handles PUT /mode.
func (h *Handlers) SetModeHandler(w http.ResponseWriter, r *http.Request) {
	var req SetModeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Clear {
		if req.Client == "" {
			writeError(w, http.StatusBadRequest, "clear requires a client")
			return
		}
		h.Modes.ClearClientMode(req.Client)
		h.Logger.Info("mode override cleared", "client", req.Client)
		writeJSON(w, http.StatusOK, h.modeResponse())
		return
	}

	m, err := mode.Parse(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Client != "" {
		h.Modes.SetClientMode(req.Client, m)
	} else {
		h.Modes.SetGlobalMode(m)
	}
	h.Logger.Info("mode changed", "mode", m, "client", req.Client)
	writeJSON(w, http.StatusOK, h.modeResponse())
}

func (h *Handlers) modeResponse() ModeResponse {
	return ModeResponse{
		Global:  h.Modes.GlobalMode(),
		Clients: h.Modes.AllClientModes(),
	}
}

// HealthHandler handles GET /health.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// pagination reads offset and limit query parameters.
func pagination(r *http.Request, defaultLimit int) (offset, limit int) {
	query := r.URL.Query()
	limit = defaultLimit

	if l := query.Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 1000 {
			limit = parsed
		}
	}
	if o := query.Get("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	return offset, limit
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// decodeJSON reads a JSON body into v and writes a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		case errors.Is(err, io.EOF):
			writeError(w, http.StatusBadRequest, "request body is empty")
		default:
			writeErrorDetails(w, http.StatusBadRequest, "invalid JSON", err.Error())
		}
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeErrorDetails(w, status, message, "")
}

func writeErrorDetails(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, ErrorResponse{
		Error:   message,
		Code:    status,
		Details: details,
	})
}
