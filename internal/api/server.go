// Package api provides the read-only status HTTP server: health, latest
// weights, and run history per workload.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/anodelabs/anode-agent/internal/api/health"
	"github.com/anodelabs/anode-agent/internal/api/middleware"
	"github.com/anodelabs/anode-agent/internal/store"
)

// Version is the agent version, set at build time using ldflags.
var Version = "dev"

// Server is the status HTTP server.
type Server struct {
	router        chi.Router
	httpServer    *http.Server
	runs          store.Store
	logger        *slog.Logger
	healthChecker *health.Checker
}

// NewServer creates a status server over the given run-history store.
func NewServer(runs store.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		runs:   runs,
		logger: logger,
	}
	s.healthChecker = health.NewChecker(runs, Version)
	s.setupRouter()
	return s
}

// setupRouter configures the router with middleware and routes.
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(s.logger))
	r.Use(middleware.Recovery(s.logger))
	r.Use(chimiddleware.Timeout(30 * time.Second))

	r.Get("/health", s.healthChecker.Handler())
	r.Route("/v1/workloads/{workload}", func(r chi.Router) {
		r.Get("/weights", s.handleLatestWeights)
		r.Get("/runs", s.handleListRuns)
	})

	s.router = r
}

// Start begins serving on addr and blocks until the server stops.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.logger.Info("status server listening", "addr", addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("status server: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the underlying router, for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}
