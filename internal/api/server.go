package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"dabwish/internal/api/health"
	"dabwish/internal/metrics"
	"dabwish/pkg/errors"
	"dabwish/pkg/logger"
)

// ServerConfig contains configuration for HTTP server
type ServerConfig struct {
	Port         int
	ServiceName  string
	Version      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Routes mounts service specific endpoints
type Routes func(r chi.Router)

// Server wraps HTTP server with lifecycle management
type Server struct {
	httpServer *http.Server
	log        *logger.Logger
}

// NewServer creates the HTTP server with probes, metrics and the given routes
func NewServer(cfg ServerConfig, healthHandler *health.Handler, routes Routes, log *logger.Logger) *Server {
	log = log.With("component", "http_server")

	port := 8080
	if cfg.Port > 0 {
		port = cfg.Port
	}
	readTimeout := cfg.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 10 * time.Second
	}
	writeTimeout := cfg.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      NewRouter(cfg, healthHandler, routes, log),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	log.Infof("HTTP server configured on port %d", port)
	return &Server{httpServer: httpServer, log: log}
}

// NewRouter builds the chi router shared by both services
func NewRouter(cfg ServerConfig, healthHandler *health.Handler, routes Routes, log *logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(RequestLogger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(Metrics)

	// Kubernetes probes
	r.Get("/health", healthHandler.HandleHealth)
	r.Get("/ready", healthHandler.HandleReadiness)
	r.Get("/live", healthHandler.HandleLiveness)

	r.Handle("/metrics", metrics.Handler())

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"service":"%s","version":"%s","status":"running"}`,
			cfg.ServiceName, cfg.Version)
	})

	if routes != nil {
		routes(r)
	}
	return r
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start listens until the server is shut down
func (s *Server) Start() error {
	s.log.Infof("Starting HTTP server on %s", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "http server failed")
	}
	return nil
}

// Shutdown waits for active requests to finish within ctx
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Stopping HTTP server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "http server shutdown failed")
	}

	s.log.Info("✓ HTTP server stopped")
	return nil
}
