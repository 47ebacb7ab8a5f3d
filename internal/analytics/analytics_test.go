package analytics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregatorStats(t *testing.T) {
	a := NewAggregator(2)
	a.Record(QueryEvent{Query: "love", Mode: "AND", Matched: 2, LatencyUs: 1000})
	a.Record(QueryEvent{Query: "love", Mode: "OR", Matched: 2, LatencyUs: 3000, CacheHit: true})
	a.Record(QueryEvent{Query: "zebra", Mode: "AND", Matched: 0, LatencyUs: 2000})
	a.Record(QueryEvent{Query: "rose", Mode: "AND", Matched: 1, LatencyUs: 2000})
	a.Record(QueryEvent{Query: "x", Mode: "XYZ", Outcome: OutcomeInvalidMode})

	s := a.Stats()
	assert.Equal(t, int64(5), s.TotalQueries)
	assert.Equal(t, int64(1), s.InvalidQueries)
	assert.Equal(t, int64(1), s.ZeroResultCount)
	assert.Equal(t, int64(1), s.CacheHits)
	assert.Equal(t, int64(3), s.CacheMisses)
	assert.Equal(t, map[string]int64{"AND": 3, "OR": 1}, s.ByMode)
	assert.InDelta(t, 2.0, s.AvgLatencyMs, 0.001)
	assert.InDelta(t, 2.0, s.P50LatencyMs, 0.001)
	assert.InDelta(t, 3.0, s.P99LatencyMs, 0.001)
	assert.Equal(t, []QueryCount{{"love", 2}, {"rose", 1}}, s.TopQueries)
	assert.Equal(t, []QueryCount{{"zebra", 1}}, s.ZeroResultQueries)
}

func TestAggregatorLatencyWindow(t *testing.T) {
	a := NewAggregator(0)
	for i := 0; i < latencyWindow+10; i++ {
		a.Record(QueryEvent{Query: "q", Matched: 1, LatencyUs: 5000})
	}
	assert.Len(t, a.latencies, latencyWindow)
	assert.InDelta(t, 5.0, a.Stats().AvgLatencyMs, 0.001)
}

type countingSink struct{ n int }

func (c *countingSink) Record(QueryEvent) { c.n++ }

func TestSinksFanOut(t *testing.T) {
	a, b := &countingSink{}, &countingSink{}
	Sinks{a, b}.Record(QueryEvent{})
	assert.Equal(t, 1, a.n)
	assert.Equal(t, 1, b.n)
}

func TestHandler(t *testing.T) {
	a := NewAggregator(5)
	a.Record(QueryEvent{Query: "love", Mode: "AND", Matched: 1})

	rec := httptest.NewRecorder()
	NewHandler(a).Stats(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analytics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var s AggregatedStats
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&s))
	assert.Equal(t, int64(1), s.TotalQueries)
}
