// Package server assembles the HTTP API for the serve command.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/pkg/ratelimit"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Deps are the collaborators the router serves. Metrics and Limiter may be
// nil.
type Deps struct {
	Search    *handler.Handler
	Analytics *analytics.Handler
	Health    *health.Checker
	Metrics   *metrics.Metrics
	Limiter   *ratelimit.Limiter
}

type Server struct {
	router chi.Router
	http   *http.Server
	cfg    config.ServerConfig
	logger *slog.Logger
}

func New(cfg config.ServerConfig, deps Deps) *Server {
	s := &Server{
		cfg:    cfg,
		logger: slog.Default().With("component", "http-server"),
	}
	s.router = routes(cfg, deps)
	s.http = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func routes(cfg config.ServerConfig, deps Deps) chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLogger)
	if deps.Metrics != nil {
		r.Use(middleware.Metrics(deps.Metrics))
	}

	r.Get("/health/live", deps.Health.LiveHandler())
	r.Get("/health/ready", deps.Health.ReadyHandler())

	r.Route("/api/v1", func(r chi.Router) {
		if deps.Limiter != nil {
			r.Use(middleware.RateLimit(deps.Limiter))
		}
		if cfg.RequestTimeout > 0 {
			r.Use(middleware.Timeout(cfg.RequestTimeout))
		}
		r.Get("/search", deps.Search.Search)
		r.Get("/documents/{id}", deps.Search.Document)
		r.Get("/index/stats", deps.Search.IndexStats)
		r.Get("/cache/stats", deps.Search.CacheStats)
		r.Post("/cache/invalidate", deps.Search.CacheInvalidate)
		if deps.Analytics != nil {
			r.Get("/analytics", deps.Analytics.Stats)
		}
	})
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	s.logger.Info("http server stopped")
	return nil
}
