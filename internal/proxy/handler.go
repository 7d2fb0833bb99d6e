package proxy

import (
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// Hop-by-hop headers are meaningful for a single connection only.
var hopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Proxy-Connection",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// Handler is the main proxy HTTP handler.
type Handler struct {
	inspector   *Inspector
	client      *http.Client
	dialTimeout time.Duration
	logger      *slog.Logger
}

// NewHandler creates a new proxy handler.
func NewHandler(inspector *Inspector) *Handler {
	return &Handler{
		inspector: inspector,
		client: &http.Client{
			Timeout: 30 * time.Second,
			// Don't follow redirects - let the client handle them
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		dialTimeout: 10 * time.Second,
		logger:      inspector.logger,
	}
}

// ServeHTTP handles incoming proxy requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodConnect {
		h.handleConnect(w, r)
		return
	}
	h.handleHTTP(w, r)
}

// handleHTTP redirects navigations the rules change and forwards everything else.
func (h *Handler) handleHTTP(w http.ResponseWriter, r *http.Request) {
	if !r.URL.IsAbs() {
		http.Error(w, "url-cleaner is a forward proxy; request an absolute URL", http.StatusBadRequest)
		return
	}

	v := h.inspector.Inspect(r)
	if v.Rewrite {
		w.Header().Set("Location", v.Cleaned)
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusTemporaryRedirect)
		return
	}

	outReq, err := http.NewRequestWithContext(r.Context(), r.Method, r.URL.String(), r.Body)
	if err != nil {
		http.Error(w, "Failed to create request: "+err.Error(), http.StatusInternalServerError)
		return
	}
	outReq.ContentLength = r.ContentLength

	// Copy headers, but remove proxy-specific ones
	copyHeaders(outReq.Header, r.Header)
	removeHopHeaders(outReq.Header)

	resp, err := h.client.Do(outReq)
	if err != nil {
		h.logger.Warn("upstream error", "url", v.Original, "error", err)
		http.Error(w, "Upstream error: "+err.Error(), http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	removeHopHeaders(resp.Header)
	copyHeaders(w.Header(), resp.Header)
	w.WriteHeader(resp.StatusCode)

	if _, err := io.Copy(w, resp.Body); err != nil {
		h.logger.Debug("copy response", "url", v.Original, "error", err)
	}
}

// handleConnect tunnels HTTPS. URLs inside the tunnel are not visible.
func (h *Handler) handleConnect(w http.ResponseWriter, r *http.Request) {
	targetHost := r.Host
	if r.URL.Host != "" {
		targetHost = r.URL.Host
	}
	client := extractClientIP(r)
	h.logger.Debug("tunnel", "client", client, "host", h.inspector.ExtractHost(r), "mode", h.inspector.Mode(client))

	dialer := net.Dialer{Timeout: h.dialTimeout}
	targetConn, err := dialer.DialContext(r.Context(), "tcp", targetHost)
	if err != nil {
		http.Error(w, "Failed to connect to target: "+err.Error(), http.StatusBadGateway)
		return
	}
	defer targetConn.Close()

	hijacker, ok := w.(http.Hijacker)
	if !ok {
		http.Error(w, "Hijacking not supported", http.StatusInternalServerError)
		return
	}

	clientConn, _, err := hijacker.Hijack()
	if err != nil {
		http.Error(w, "Failed to hijack connection: "+err.Error(), http.StatusInternalServerError)
		return
	}
	defer clientConn.Close()

	if _, err := clientConn.Write([]byte("HTTP/1.1 200 Connection Established\r\n\r\n")); err != nil {
		return
	}

	// Tunnel data bidirectionally
	done := make(chan struct{}, 2)

	go func() {
		io.Copy(targetConn, clientConn)
		done <- struct{}{}
	}()

	go func() {
		io.Copy(clientConn, targetConn)
		done <- struct{}{}
	}()

	// Wait for either direction to finish
	<-done
}

// copyHeaders copies HTTP headers from src to dst.
func copyHeaders(dst, src http.Header) {
	for key, values := range src {
		for _, value := range values {
			dst.Add(key, value)
		}
	}
}

func removeHopHeaders(h http.Header) {
	for _, k := range hopHeaders {
		h.Del(k)
	}
}
