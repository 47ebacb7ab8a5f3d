package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/document"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/searcher/result"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/searcher/service"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	engine, err := indexer.NewEngine([]document.Document{
		{ID: 1, Title: "Sonnet 1: Foo", Lines: []string{"the rose of love"}},
		{ID: 2, Title: "Sonnet 2: Bar", Lines: []string{"love is blind", "Love, love"}},
	}, nil, nil)
	require.NoError(t, err)
	h := New(service.New(engine, service.Options{}), nil, "AND")

	r := chi.NewRouter()
	r.Get("/search", h.Search)
	r.Get("/documents/{id}", h.Document)
	r.Get("/index/stats", h.IndexStats)
	r.Get("/cache/stats", h.CacheStats)
	r.Post("/cache/invalidate", h.CacheInvalidate)
	return r
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestSearch(t *testing.T) {
	r := newRouter(t)
	rec := get(t, r, "/search?q=love&mode=or&highlight=green")
	require.Equal(t, http.StatusOK, rec.Code)

	var body searchJSON
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "OR", body.Mode)
	assert.Equal(t, 2, body.Matched)
	assert.Equal(t, 2, body.Total)
	require.Len(t, body.Results, 2)

	first := body.Results[0]
	assert.Equal(t, 1, first.Rank)
	assert.Equal(t, 1, first.DocID)
	assert.Equal(t, 1, first.Matches)
	assert.Empty(t, first.RenderedTitle, "title has no match")

	second := body.Results[1]
	assert.Equal(t, 2, second.Rank)
	assert.Equal(t, 2, second.DocID)
	assert.Equal(t, 3, second.Matches)
	require.Len(t, second.Lines, 2)
	assert.Equal(t, 2, second.Lines[1].LineNo)
	assert.Len(t, second.Lines[1].Spans, 2)
	assert.Contains(t, second.Lines[0].Rendered, "\033[1;92mlove\033[0m")
}

func TestSearchSpansAreByteOffsets(t *testing.T) {
	engine, err := indexer.NewEngine([]document.Document{
		{ID: 3, Title: "Sonnet 3: Café love", Lines: []string{"Æther, love"}},
	}, nil, nil)
	require.NoError(t, err)
	h := New(service.New(engine, service.Options{}), nil, "AND")

	rec := get(t, http.HandlerFunc(h.Search), "/search?q=love")
	require.Equal(t, http.StatusOK, rec.Code)
	var body searchJSON
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Results, 1)

	hit := body.Results[0]
	assert.Equal(t, []result.Span{{Start: 16, End: 20}}, hit.TitleSpans)
	assert.Equal(t, "love", hit.Title[16:20])
	require.Len(t, hit.Lines, 1)
	line := hit.Lines[0]
	assert.Equal(t, []result.Span{{Start: 8, End: 12}}, line.Spans)
	assert.Equal(t, "love", line.Text[8:12])
}

func TestSearchDefaultsAndErrors(t *testing.T) {
	r := newRouter(t)

	rec := get(t, r, "/search?q=love+blind")
	require.Equal(t, http.StatusOK, rec.Code)
	var body searchJSON
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "AND", body.Mode)
	assert.Equal(t, 1, body.Matched)
	assert.Empty(t, body.Results[0].Lines[0].Rendered)

	assert.Equal(t, http.StatusBadRequest, get(t, r, "/search?q=love&mode=XYZ").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, r, "/search").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, r, "/search?q=x&highlight=blue").Code)

	rec = get(t, r, "/search?q=")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"results":[]`)
}

func TestDocument(t *testing.T) {
	r := newRouter(t)
	rec := get(t, r, "/documents/2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sonnet 2: Bar")

	assert.Equal(t, http.StatusNotFound, get(t, r, "/documents/42").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, r, "/documents/abc").Code)
}

func TestStatsEndpoints(t *testing.T) {
	r := newRouter(t)
	rec := get(t, r, "/index/stats")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"documents":2`)

	assert.Contains(t, get(t, r, "/cache/stats").Body.String(), "disabled")

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/cache/invalidate", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
