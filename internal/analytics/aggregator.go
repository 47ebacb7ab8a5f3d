package analytics

import (
	"sort"
	"sync"
	"time"
)

const latencyWindow = 10000

type AggregatedStats struct {
	TotalQueries      int64            `json:"total_queries"`
	InvalidQueries    int64            `json:"invalid_queries"`
	ZeroResultCount   int64            `json:"zero_result_count"`
	CacheHits         int64            `json:"cache_hits"`
	CacheMisses       int64            `json:"cache_misses"`
	ByMode            map[string]int64 `json:"by_mode"`
	AvgLatencyMs      float64          `json:"avg_latency_ms"`
	P50LatencyMs      float64          `json:"p50_latency_ms"`
	P95LatencyMs      float64          `json:"p95_latency_ms"`
	P99LatencyMs      float64          `json:"p99_latency_ms"`
	TopQueries        []QueryCount     `json:"top_queries"`
	ZeroResultQueries []QueryCount     `json:"zero_result_queries"`
	QueriesPerMinute  float64          `json:"queries_per_minute"`
	Since             time.Time        `json:"since"`
}

type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// Aggregator keeps in-process query statistics. Latency percentiles cover
// the most recent queries only.
type Aggregator struct {
	mu                sync.RWMutex
	totalQueries      int64
	invalidQueries    int64
	zeroResults       int64
	cacheHits         int64
	cacheMisses       int64
	byMode            map[string]int64
	latencies         []int64
	next              int
	queryCounts       map[string]int64
	zeroResultQueries map[string]int64
	topN              int
	startTime         time.Time
}

func NewAggregator(topN int) *Aggregator {
	if topN <= 0 {
		topN = 10
	}
	return &Aggregator{
		byMode:            make(map[string]int64),
		latencies:         make([]int64, 0, 1024),
		queryCounts:       make(map[string]int64),
		zeroResultQueries: make(map[string]int64),
		topN:              topN,
		startTime:         time.Now(),
	}
}

func (a *Aggregator) Record(e QueryEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.totalQueries++
	if e.Outcome == OutcomeInvalidMode {
		a.invalidQueries++
		return
	}
	a.byMode[e.Mode]++
	if e.CacheHit {
		a.cacheHits++
	} else {
		a.cacheMisses++
	}
	if len(a.latencies) < latencyWindow {
		a.latencies = append(a.latencies, e.LatencyUs)
	} else {
		a.latencies[a.next] = e.LatencyUs
		a.next = (a.next + 1) % latencyWindow
	}
	a.queryCounts[e.Query]++
	if e.Matched == 0 {
		a.zeroResults++
		a.zeroResultQueries[e.Query]++
	}
}

func (a *Aggregator) Stats() AggregatedStats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := AggregatedStats{
		TotalQueries:    a.totalQueries,
		InvalidQueries:  a.invalidQueries,
		ZeroResultCount: a.zeroResults,
		CacheHits:       a.cacheHits,
		CacheMisses:     a.cacheMisses,
		ByMode:          make(map[string]int64, len(a.byMode)),
		Since:           a.startTime,
	}
	for mode, n := range a.byMode {
		stats.ByMode[mode] = n
	}
	if len(a.latencies) > 0 {
		sorted := make([]int64, len(a.latencies))
		copy(sorted, a.latencies)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		var sum int64
		for _, l := range sorted {
			sum += l
		}
		stats.AvgLatencyMs = float64(sum) / float64(len(sorted)) / 1000
		stats.P50LatencyMs = float64(percentile(sorted, 50)) / 1000
		stats.P95LatencyMs = float64(percentile(sorted, 95)) / 1000
		stats.P99LatencyMs = float64(percentile(sorted, 99)) / 1000
	}
	stats.TopQueries = topN(a.queryCounts, a.topN)
	stats.ZeroResultQueries = topN(a.zeroResultQueries, a.topN)
	if elapsed := time.Since(a.startTime).Minutes(); elapsed > 0 {
		stats.QueriesPerMinute = float64(stats.TotalQueries) / elapsed
	}
	return stats
}

func percentile(sorted []int64, pct int) int64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (pct * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// topN orders by count, then query, so equal counts list stably.
func topN(counts map[string]int64, n int) []QueryCount {
	result := make([]QueryCount, 0, len(counts))
	for query, count := range counts {
		result = append(result, QueryCount{Query: query, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Query < result[j].Query
	})
	if len(result) > n {
		result = result[:n]
	}
	return result
}
