// Package httpserver exposes the daemon over a local HTTP API so
// launchers, editor plugins, and shell scripts can save pages and fire
// commands without going through a surface.
package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/visualstash/stash/internal/config"
	"github.com/visualstash/stash/internal/daemon"
	"github.com/visualstash/stash/internal/httpserver/mw"
	"github.com/visualstash/stash/internal/logger"
	"github.com/visualstash/stash/internal/pipeline"
	"github.com/visualstash/stash/internal/storage"
)

// Deps bundles what the handlers need.
type Deps struct {
	Store     storage.Store
	Daemon    *daemon.Daemon
	Badge     *pipeline.Badge
	Logger    logger.Logger
	Backend   string
	StartTime time.Time
}

// Server wraps the HTTP server and its dependencies.
type Server struct {
	http   *http.Server
	logger logger.Logger
}

// New builds the HTTP server (router, middlewares, route registration).
func New(cfg *config.Config, d Deps) *Server {
	if d.Logger == nil {
		d.Logger = logger.Nop()
	}

	s := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           Router(d),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return &Server{http: s, logger: d.Logger}
}

// Router builds the chi router on its own so tests can drive the handlers
// without binding a port.
func Router(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.GetHead)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	// Saves may fetch the page for a title, so the request budget has to
	// cover the pipeline's own fetch timeout.
	r.Use(middleware.Timeout(15 * time.Second))
	r.Use(mw.Log(d.Logger))

	r.Route("/api", func(r chi.Router) {
		r.Get("/healthz", handleHealthz(d))
		r.Post("/save", handleSave(d))
		r.Post("/command/{name}", handleCommand(d))
	})
	return r
}

// Start runs the HTTP server (blocks until error or shutdown).
func (s *Server) Start() error {
	s.logger.Infof("HTTP server listening on %s", s.http.Addr)
	err := s.http.ListenAndServe()
	// http.ErrServerClosed is expected on graceful shutdown.
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop gracefully shuts down the server with the provided context deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("HTTP server shutting down...")
	return s.http.Shutdown(ctx)
}
