// Package integration wires the loader, index, search service and HTTP
// server together against an httptest document source and in-memory
// stand-ins for Redis.
//
// Run with:
//
//	go test -v ./test/integration/...
package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/ingestion"
	ingestcache "github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/ingestion/cache"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/ingestion/loader"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/ingestion/source"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/searcher/service"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/server"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/sonnet-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/sonnet-search/pkg/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var sonnets = []ingestion.RawDocument{
	{
		Title:     "Sonnet 18: Shall I compare thee to a summer's day?",
		Author:    "William Shakespeare",
		Lines:     []string{"Shall I compare thee to a summer's day?", "Thou art more fair and more temperate:"},
		LineCount: "2",
	},
	{
		Title:     "Sonnet 116: Let me not to the marriage of true minds",
		Author:    "William Shakespeare",
		Lines:     []string{"Let me not to the marriage of true minds", "Love is not love"},
		LineCount: "2",
	},
	{
		Title:     "Sonnet 130: My mistress' eyes are nothing like the sun",
		Author:    "William Shakespeare",
		Lines:     []string{"My mistress' eyes are nothing like the sun;", "I love to hear her speak"},
		LineCount: "2",
	},
}

// upstream serves docs PoetryDB-style and counts requests.
func upstream(t *testing.T, docs []ingestion.RawDocument) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(docs)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

// memStore stands in for the Redis client.
type memStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]string)}
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
	switch v := value.(type) {
	case []byte:
		m.data[key] = string(v)
	case string:
		m.data[key] = v
	}
	return nil
}

func (m *memStore) FlushByPattern(_ context.Context, pattern string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	var n int64
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
			n++
		}
	}
	return n, nil
}

type stack struct {
	srv        *httptest.Server
	aggregator *analytics.Aggregator
	loaded     *loader.Result
}

func newStack(t *testing.T, sourceURL, cacheFile string) *stack {
	t.Helper()
	ctx := context.Background()

	ld := loader.New(source.NewHTTP(sourceURL, 2*time.Second, 1), ingestcache.NewFile(cacheFile))
	loaded, err := ld.Load(ctx)
	require.NoError(t, err)

	m := metrics.New(nil)
	engine, err := indexer.NewEngine(loaded.Documents, nil, m)
	require.NoError(t, err)

	qc := cache.New(newMemStore(), time.Minute, "porter", m)
	agg := analytics.NewAggregator(5)
	svc := service.New(engine, service.Options{Cache: qc, Metrics: m, Sink: agg, Tracing: true})

	checker := health.NewChecker(0)
	checker.Register("index", health.Ping(func(context.Context) error { return nil }, false))

	cfg := config.Default().Server
	cfg.RequestTimeout = 5 * time.Second
	s := server.New(cfg, server.Deps{
		Search:    handler.New(svc, qc, "AND"),
		Analytics: analytics.NewHandler(agg),
		Health:    checker,
		Metrics:   m,
	})
	srv := httptest.NewServer(s)
	t.Cleanup(srv.Close)
	return &stack{srv: srv, aggregator: agg, loaded: loaded}
}

func getJSON(t *testing.T, url string, into any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if into != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(into))
	}
	return resp.StatusCode
}

type searchBody struct {
	Mode     string `json:"mode"`
	Matched  int    `json:"matched"`
	Total    int    `json:"total"`
	CacheHit bool   `json:"cache_hit"`
	TraceID  string `json:"trace_id"`
	Results  []struct {
		Rank  int    `json:"rank"`
		DocID int    `json:"doc_id"`
		Title string `json:"title"`
		Lines []struct {
			LineNo   int    `json:"line_no"`
			Rendered string `json:"rendered"`
		} `json:"lines"`
	} `json:"results"`
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestSearchEndToEnd(t *testing.T) {
	up, _ := upstream(t, sonnets)
	st := newStack(t, up.URL, filepath.Join(t.TempDir(), "sonnets.json"))
	assert.Equal(t, "http", st.loaded.From)

	var body searchBody
	require.Equal(t, http.StatusOK, getJSON(t, st.srv.URL+"/api/v1/search?q=love&mode=OR&highlight=default", &body))
	assert.Equal(t, "OR", body.Mode)
	assert.Equal(t, 3, body.Total)
	require.Equal(t, 2, body.Matched)
	assert.Equal(t, 116, body.Results[0].DocID)
	assert.Equal(t, 130, body.Results[1].DocID)
	assert.Equal(t, 2, body.Results[1].Rank)
	assert.Equal(t, 2, body.Results[1].Lines[0].LineNo)
	assert.Contains(t, body.Results[1].Lines[0].Rendered, "\033[43m\033[30mlove\033[0m")
	assert.NotEmpty(t, body.TraceID)
	assert.False(t, body.CacheHit)

	var again searchBody
	require.Equal(t, http.StatusOK, getJSON(t, st.srv.URL+"/api/v1/search?q=love&mode=or", &again))
	assert.True(t, again.CacheHit)
	assert.Equal(t, body.Matched, again.Matched)

	var and searchBody
	require.Equal(t, http.StatusOK, getJSON(t, st.srv.URL+"/api/v1/search?q=love+mistress", &and))
	assert.Equal(t, "AND", and.Mode)
	require.Equal(t, 1, and.Matched)
	assert.Equal(t, 130, and.Results[0].DocID)
}

func TestInvalidModeRejected(t *testing.T) {
	up, _ := upstream(t, sonnets)
	st := newStack(t, up.URL, filepath.Join(t.TempDir(), "sonnets.json"))

	var body map[string]string
	assert.Equal(t, http.StatusBadRequest, getJSON(t, st.srv.URL+"/api/v1/search?q=love&mode=XOR", &body))
	assert.Contains(t, body["error"], "XOR")
	assert.Equal(t, int64(1), st.aggregator.Stats().InvalidQueries)
}

func TestAnalyticsAndCacheEndpoints(t *testing.T) {
	up, _ := upstream(t, sonnets)
	st := newStack(t, up.URL, filepath.Join(t.TempDir(), "sonnets.json"))

	for _, q := range []string{"love", "love", "eyes", "xylophone"} {
		getJSON(t, st.srv.URL+"/api/v1/search?q="+q, nil)
	}

	var stats analytics.AggregatedStats
	require.Equal(t, http.StatusOK, getJSON(t, st.srv.URL+"/api/v1/analytics", &stats))
	assert.Equal(t, int64(4), stats.TotalQueries)
	assert.Equal(t, int64(1), stats.ZeroResultCount)
	require.NotEmpty(t, stats.TopQueries)
	assert.Equal(t, "love", stats.TopQueries[0].Query)

	var cacheStats map[string]any
	require.Equal(t, http.StatusOK, getJSON(t, st.srv.URL+"/api/v1/cache/stats", &cacheStats))
	assert.Equal(t, float64(1), cacheStats["hits"])

	resp, err := http.Post(st.srv.URL+"/api/v1/cache/invalidate", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var doc map[string]any
	require.Equal(t, http.StatusOK, getJSON(t, st.srv.URL+"/api/v1/documents/18", &doc))
	assert.Equal(t, http.StatusNotFound, getJSON(t, st.srv.URL+"/api/v1/documents/1", nil))
	assert.Equal(t, http.StatusOK, getJSON(t, st.srv.URL+"/health/ready", nil))
}

func TestSecondStartupUsesFileCache(t *testing.T) {
	up, hits := upstream(t, sonnets)
	cacheFile := filepath.Join(t.TempDir(), "sonnets.json")

	first := newStack(t, up.URL, cacheFile)
	assert.Equal(t, "http", first.loaded.From)
	second := newStack(t, up.URL, cacheFile)
	assert.Equal(t, "file", second.loaded.From)
	assert.Equal(t, int32(1), hits.Load())
	assert.Len(t, second.loaded.Documents, len(sonnets))
}

func TestMalformedTitleAbortsLoad(t *testing.T) {
	bad := append([]ingestion.RawDocument{}, sonnets...)
	bad = append(bad, ingestion.RawDocument{Title: "A Lover's Complaint", Lines: []string{"From off a hill"}})
	up, _ := upstream(t, bad)

	ld := loader.New(source.NewHTTP(up.URL, time.Second, 1), ingestcache.NewFile(filepath.Join(t.TempDir(), "c.json")))
	_, err := ld.Load(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrMalformedDocument)
}
