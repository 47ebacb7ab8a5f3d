package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/document"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/searcher/cache"
	apperrors "github.com/Adithya-Monish-Kumar-K/sonnet-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/sonnet-search/pkg/redis"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu     sync.Mutex
	events []analytics.QueryEvent
}

func (r *recordingSink) Record(e analytics.QueryEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

type memStore struct {
	mu   sync.Mutex
	data map[string]string
}

func (m *memStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", pkgredis.Nil
	}
	return v, nil
}

func (m *memStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = string(value.([]byte))
	return nil
}

func (m *memStore) FlushByPattern(context.Context, string) (int64, error) { return 0, nil }

func newEngine(t *testing.T) *indexer.Engine {
	t.Helper()
	e, err := indexer.NewEngine([]document.Document{
		{ID: 1, Title: "Sonnet 1: Foo", Lines: []string{"the rose of love"}},
		{ID: 2, Title: "Sonnet 2: Bar", Lines: []string{"love is blind"}},
		{ID: 3, Title: "Sonnet 3: Baz", Lines: []string{"winter"}},
	}, nil, nil)
	require.NoError(t, err)
	return e
}

func TestSearch(t *testing.T) {
	sink := &recordingSink{}
	m := metrics.New(nil)
	svc := New(newEngine(t), Options{Metrics: m, Sink: sink, Tracing: true})

	resp, err := svc.Search(context.Background(), "love blind", "and", "test")
	require.NoError(t, err)
	assert.Equal(t, "AND", resp.Mode)
	assert.Equal(t, 1, resp.Matched)
	assert.Equal(t, 3, resp.Total)
	assert.Equal(t, 2, resp.Results[0].Matches)
	assert.NotEmpty(t, resp.TraceID)
	assert.False(t, resp.CacheHit)

	require.Len(t, sink.events, 1)
	e := sink.events[0]
	assert.Equal(t, analytics.OutcomeOK, e.Outcome)
	assert.Equal(t, 2, e.Words)
	assert.Equal(t, "test", e.Source)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchQueriesTotal.WithLabelValues("AND", "ok")))
}

func TestSearchInvalidMode(t *testing.T) {
	sink := &recordingSink{}
	svc := New(newEngine(t), Options{Sink: sink})

	resp, err := svc.Search(context.Background(), "love", "XYZ", "test")
	assert.ErrorIs(t, err, apperrors.ErrInvalidSearchMode)
	assert.True(t, IsInvalidMode(err))
	assert.Nil(t, resp)
	require.Len(t, sink.events, 1)
	assert.Equal(t, analytics.OutcomeInvalidMode, sink.events[0].Outcome)
}

func TestSearchZeroResults(t *testing.T) {
	sink := &recordingSink{}
	svc := New(newEngine(t), Options{Sink: sink})

	resp, err := svc.Search(context.Background(), "zebra", "OR", "test")
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
	assert.Equal(t, 3, resp.Total)
	assert.Equal(t, analytics.OutcomeZeroResults, sink.events[0].Outcome)
}

func TestSearchUsesCache(t *testing.T) {
	qc := cache.New(&memStore{data: map[string]string{}}, time.Minute, "porter", nil)
	svc := New(newEngine(t), Options{Cache: qc})
	ctx := context.Background()

	first, err := svc.Search(ctx, "love", "OR", "test")
	require.NoError(t, err)
	assert.False(t, first.CacheHit)

	second, err := svc.Search(ctx, "love", "OR", "test")
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.Equal(t, first.Results, second.Results)
}

func TestDocument(t *testing.T) {
	svc := New(newEngine(t), Options{})
	doc, err := svc.Document(2)
	require.NoError(t, err)
	assert.Equal(t, "Sonnet 2: Bar", doc.Title)

	_, err = svc.Document(99)
	assert.ErrorIs(t, err, apperrors.ErrDocumentNotFound)
	assert.Equal(t, 3, svc.IndexStats().Documents)
}
