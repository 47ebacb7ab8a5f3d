// Package service runs queries for every front end (REPL, one-shot CLI,
// HTTP) and records timing, cache use, metrics, analytics and traces.
package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/document"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/searcher/result"
	apperrors "github.com/Adithya-Monish-Kumar-K/sonnet-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/pkg/tracing"
)

// Options are all optional.
type Options struct {
	Cache   *cache.QueryCache
	Metrics *metrics.Metrics
	Sink    analytics.Sink
	Tracing bool
}

type Service struct {
	engine *indexer.Engine
	exec   *executor.Executor
	opts   Options
	logger *slog.Logger
}

func New(engine *indexer.Engine, opts Options) *Service {
	return &Service{
		engine: engine,
		exec:   executor.New(engine),
		opts:   opts,
		logger: slog.Default().With("component", "search-service"),
	}
}

// Response is one evaluated query. Total is the collection size.
type Response struct {
	Query    string                `json:"query"`
	Mode     string                `json:"mode"`
	Results  []result.SearchResult `json:"results"`
	Matched  int                   `json:"matched"`
	Total    int                   `json:"total"`
	Elapsed  time.Duration         `json:"elapsed_ns"`
	CacheHit bool                  `json:"cache_hit"`
	TraceID  string                `json:"trace_id,omitempty"`
}

// Search evaluates query under mode. source names the caller for
// analytics ("repl", "cli", "http"). An unknown mode returns
// ErrInvalidSearchMode and no results.
func (s *Service) Search(ctx context.Context, query, mode, source string) (*Response, error) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, "search", "")
	span.SetAttr("query", query)
	span.SetAttr("source", source)

	plan, err := parser.Parse(query, mode)
	if err != nil {
		elapsed := time.Since(start)
		span.SetAttr("error", err.Error())
		span.End()
		s.finishTrace(span)
		s.observe(analytics.QueryEvent{
			Query:     query,
			Mode:      mode,
			LatencyUs: elapsed.Microseconds(),
			Outcome:   analytics.OutcomeInvalidMode,
			Source:    source,
			TraceID:   span.TraceID,
			Timestamp: start.UTC(),
		}, elapsed)
		return nil, err
	}

	results, hit := s.evaluate(ctx, plan)
	elapsed := time.Since(start)
	span.SetAttr("results", len(results))
	span.SetAttr("cache_hit", hit)
	span.End()
	s.finishTrace(span)

	outcome := analytics.OutcomeOK
	if len(results) == 0 {
		outcome = analytics.OutcomeZeroResults
	}
	s.observe(analytics.QueryEvent{
		Query:     query,
		Mode:      plan.Type.String(),
		Words:     len(plan.Words),
		Matched:   len(results),
		TotalDocs: s.engine.TotalDocs(),
		LatencyUs: elapsed.Microseconds(),
		CacheHit:  hit,
		Outcome:   outcome,
		Source:    source,
		TraceID:   span.TraceID,
		Timestamp: start.UTC(),
	}, elapsed)

	return &Response{
		Query:    query,
		Mode:     plan.Type.String(),
		Results:  results,
		Matched:  len(results),
		Total:    s.engine.TotalDocs(),
		Elapsed:  elapsed,
		CacheHit: hit,
		TraceID:  span.TraceID,
	}, nil
}

func (s *Service) evaluate(ctx context.Context, plan *parser.QueryPlan) ([]result.SearchResult, bool) {
	compute := func() []result.SearchResult {
		_, span := tracing.StartChildSpan(ctx, "execute")
		defer span.End()
		results := s.exec.Execute(plan)
		span.SetAttr("words", len(plan.Words))
		return results
	}
	if s.opts.Cache == nil || len(plan.Words) == 0 {
		return compute(), false
	}
	_, span := tracing.StartChildSpan(ctx, "cache")
	defer span.End()
	return s.opts.Cache.GetOrCompute(ctx, plan, compute)
}

func (s *Service) observe(e analytics.QueryEvent, elapsed time.Duration) {
	if m := s.opts.Metrics; m != nil {
		m.SearchQueriesTotal.WithLabelValues(e.Mode, string(e.Outcome)).Inc()
		if e.Outcome != analytics.OutcomeInvalidMode {
			status := "miss"
			if e.CacheHit {
				status = "hit"
			}
			m.SearchLatency.WithLabelValues(status).Observe(elapsed.Seconds())
			m.SearchResultsCount.Observe(float64(e.Matched))
		}
	}
	if s.opts.Sink != nil {
		s.opts.Sink.Record(e)
	}
}

func (s *Service) finishTrace(span *tracing.Span) {
	if s.opts.Tracing {
		span.Log(s.logger)
	}
}

// Document returns the indexed document with the given id.
func (s *Service) Document(id int) (document.Document, error) {
	doc, ok := s.engine.Index().Document(id)
	if !ok {
		return document.Document{}, apperrors.Newf(apperrors.ErrDocumentNotFound, http.StatusNotFound, "document %d not found", id)
	}
	return doc, nil
}

func (s *Service) IndexStats() indexer.Stats {
	return s.engine.Stats()
}

func (s *Service) TotalDocs() int {
	return s.engine.TotalDocs()
}

// IsInvalidMode reports whether err rejected the search mode.
func IsInvalidMode(err error) bool {
	return errors.Is(err, apperrors.ErrInvalidSearchMode)
}
