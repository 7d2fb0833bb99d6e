package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"
)

// ServerConfig holds server configuration.
type ServerConfig struct {
	Addr            string
	ManagementToken string
}

// Server is the url-cleaner management API server.
type Server struct {
	httpServer *http.Server
	handlers   *Handlers
}

// NewServer creates a new API server.
func NewServer(cfg ServerConfig, handlers *Handlers) *Server {
	auth := ManagementAuth(&AuthConfig{ManagementToken: cfg.ManagementToken})
	logged := RequestLogger(handlers.Logger)

	mux := http.NewServeMux()
	route := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, applyMiddleware(fn, logged, auth))
	}

	route("GET /status", handlers.StatusHandler)
	route("GET /rules", handlers.GetRulesHandler)
	route("PUT /rules", handlers.PutRulesHandler)
	route("POST /rules/reset", handlers.ResetRulesHandler)
	route("POST /clean", handlers.CleanHandler)
	route("POST /clean/text", handlers.CleanTextHandler)
	route("GET /logs", handlers.ListLogsHandler)
	route("GET /debug/log", handlers.ServerLogHandler)
	route("GET /mode", handlers.GetModeHandler)
	route("PUT /mode", handlers.SetModeHandler)

	// Health check (no auth)
	mux.HandleFunc("GET /health", HealthHandler)

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Addr,
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		handlers: handlers,
	}
}

// Handler returns the routed handler (for testing).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Serve accepts connections on ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.handlers.Logger.Info("api listening", "addr", ln.Addr().String())
	if err := s.httpServer.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Start listens on the configured address and serves.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
