// Package api exposes the daemon's read-only HTTP surface: the current
// moisture state, a health endpoint probing the sensor hub and cycle
// freshness, and the prometheus exposition.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"grasswatch/internal/config"
	"grasswatch/internal/types"
)

// StateSource provides the latest model output and cycle counters. The
// scheduler's poller satisfies it.
type StateSource interface {
	Last() (types.ModelResult, bool)
	Status() types.CycleStatus
}

// HubPinger checks reachability of the upstream sensor hub.
type HubPinger interface {
	Ping(ctx context.Context) error
}

// Server bundles the dependencies of the read API.
type Server struct {
	cfg     config.ServerConfig
	poll    config.PollConfig
	source  StateSource
	hub     HubPinger
	metrics http.Handler
	clock   types.Clock
	logger  *slog.Logger

	router *chi.Mux
}

// ServerConfig holds the dependencies for creating a Server.
type ServerConfig struct {
	Config  config.ServerConfig
	Poll    config.PollConfig
	Source  StateSource
	Hub     HubPinger
	Metrics http.Handler // prometheus exposition; optional
	Clock   types.Clock
	Logger  *slog.Logger
}

// NewServer builds the server and mounts its routes.
func NewServer(cfg ServerConfig) *Server {
	clock := cfg.Clock
	if clock == nil {
		clock = types.RealClock{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:     cfg.Config,
		poll:    cfg.Poll,
		source:  cfg.Source,
		hub:     cfg.Hub,
		metrics: cfg.Metrics,
		clock:   clock,
		logger:  logger,
		router:  chi.NewRouter(),
	}
	s.mountRoutes()
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe runs the HTTP server until ctx is cancelled, then shuts it
// down within the configured grace period.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
