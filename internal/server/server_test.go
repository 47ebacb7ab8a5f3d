package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/document"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/searcher/service"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/pkg/ratelimit"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, limit int) (*Server, *metrics.Metrics, *analytics.Aggregator) {
	t.Helper()
	engine, err := indexer.NewEngine([]document.Document{
		{ID: 1, Title: "Sonnet 1: Foo", Lines: []string{"the rose of love"}},
		{ID: 2, Title: "Sonnet 2: Bar", Lines: []string{"love is blind"}},
	}, nil, nil)
	require.NoError(t, err)

	m := metrics.New(nil)
	agg := analytics.NewAggregator(5)
	svc := service.New(engine, service.Options{Metrics: m, Sink: agg})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	checker := health.NewChecker(0)
	checker.Register("index", health.Ping(func(context.Context) error { return nil }, false))

	cfg := config.Default().Server
	cfg.RequestTimeout = time.Second
	return New(cfg, Deps{
		Search:    handler.New(svc, nil, "AND"),
		Analytics: analytics.NewHandler(agg),
		Health:    checker,
		Metrics:   m,
		Limiter:   ratelimit.New(ctx, limit, time.Minute),
	}), m, agg
}

func TestRoutes(t *testing.T) {
	s, m, agg := newTestServer(t, 100)

	for _, path := range []string{
		"/health/live",
		"/health/ready",
		"/api/v1/search?q=love&mode=OR",
		"/api/v1/documents/1",
		"/api/v1/index/stats",
		"/api/v1/cache/stats",
		"/api/v1/analytics",
	} {
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.NotEmpty(t, rec.Header().Get("Content-Type"), path)
	}
	assert.Equal(t, int64(1), agg.Stats().TotalQueries)
	assert.Equal(t, 1.0, testutil.ToFloat64(
		m.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/v1/documents/{id}", "200")))

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRateLimitAppliesToAPIOnly(t *testing.T) {
	s, _, _ := newTestServer(t, 1)

	do := func(path string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = "192.0.2.7:1234"
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)
		return rec.Code
	}
	assert.Equal(t, http.StatusOK, do("/api/v1/index/stats"))
	assert.Equal(t, http.StatusTooManyRequests, do("/api/v1/index/stats"))
	assert.Equal(t, http.StatusOK, do("/health/live"))
}
