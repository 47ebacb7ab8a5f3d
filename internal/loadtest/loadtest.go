// Package loadtest drives concurrent queries against a running search API
// and reports throughput and latency.
package loadtest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

type Config struct {
	BaseURL     string
	Concurrency int
	Duration    time.Duration
	Queries     []string
	Modes       []string
}

// DefaultQueries cover single words, stemmed variants and multi-word
// queries that match in some sonnets but not others.
var DefaultQueries = []string{
	"love",
	"beauty",
	"summer day",
	"thee thou",
	"time",
	"loving",
	"eyes heart",
	"death",
	"rose",
	"fair youth",
	"sweet",
	"night",
	"praise verse",
	"truth",
}

type Stats struct {
	totalRequests atomic.Int64
	successCount  atomic.Int64
	errorCount    atomic.Int64
	cacheHits     atomic.Int64
	latencies     []time.Duration
	latenciesMu   sync.Mutex
	statusCodes   map[int]int64
	statusCodesMu sync.Mutex
}

func NewStats() *Stats {
	return &Stats{
		latencies:   make([]time.Duration, 0, 100000),
		statusCodes: make(map[int]int64),
	}
}

func (s *Stats) Record(duration time.Duration, statusCode int, cacheHit bool, err error) {
	s.totalRequests.Add(1)
	if err != nil {
		s.errorCount.Add(1)
		return
	}
	if statusCode >= 200 && statusCode < 300 {
		s.successCount.Add(1)
	} else {
		s.errorCount.Add(1)
	}
	if cacheHit {
		s.cacheHits.Add(1)
	}

	s.latenciesMu.Lock()
	s.latencies = append(s.latencies, duration)
	s.latenciesMu.Unlock()

	s.statusCodesMu.Lock()
	s.statusCodes[statusCode]++
	s.statusCodesMu.Unlock()
}

func (s *Stats) Total() int64   { return s.totalRequests.Load() }
func (s *Stats) Success() int64 { return s.successCount.Load() }
func (s *Stats) Errors() int64  { return s.errorCount.Load() }

// ErrNoRequests is returned when not a single request completed.
var ErrNoRequests = errors.New("no requests completed")

// Run issues queries from Concurrency workers until Duration elapses or ctx
// is cancelled. Workers rotate through Queries and Modes.
func Run(ctx context.Context, cfg Config) (*Stats, error) {
	if len(cfg.Queries) == 0 {
		cfg.Queries = DefaultQueries
	}
	if len(cfg.Modes) == 0 {
		cfg.Modes = []string{"AND", "OR"}
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	stats := NewStats()
	client := &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        cfg.Concurrency * 2,
			MaxIdleConnsPerHost: cfg.Concurrency * 2,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Duration)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < cfg.Concurrency; w++ {
		w := w
		g.Go(func() error {
			for i := w; ctx.Err() == nil; i++ {
				query := cfg.Queries[i%len(cfg.Queries)]
				mode := cfg.Modes[(i/len(cfg.Queries))%len(cfg.Modes)]
				searchURL := fmt.Sprintf("%s/api/v1/search?q=%s&mode=%s",
					cfg.BaseURL, url.QueryEscape(query), mode)

				req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
				if err != nil {
					return fmt.Errorf("building request: %w", err)
				}
				start := time.Now()
				resp, err := client.Do(req)
				elapsed := time.Since(start)
				if err != nil {
					if ctx.Err() != nil {
						return nil
					}
					stats.Record(elapsed, 0, false, err)
					continue
				}
				var body struct {
					CacheHit bool `json:"cache_hit"`
				}
				json.NewDecoder(resp.Body).Decode(&body)
				io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
				stats.Record(elapsed, resp.StatusCode, body.CacheHit, nil)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return stats, err
	}
	if stats.Total() == 0 {
		return stats, ErrNoRequests
	}
	return stats, nil
}

// Report writes a human-readable summary of stats.
func Report(w io.Writer, stats *Stats, duration time.Duration) {
	total := stats.Total()
	errs := stats.Errors()

	fmt.Fprintln(w, "=== Results ===")
	fmt.Fprintf(w, "Total Requests:  %d\n", total)
	fmt.Fprintf(w, "Successful:      %d\n", stats.Success())
	fmt.Fprintf(w, "Errors:          %d\n", errs)
	fmt.Fprintf(w, "Cache Hits:      %d\n", stats.cacheHits.Load())
	if total > 0 {
		fmt.Fprintf(w, "Error Rate:      %.2f%%\n", float64(errs)/float64(total)*100)
		fmt.Fprintf(w, "Requests/sec:    %.2f\n", float64(total)/duration.Seconds())
	}

	stats.latenciesMu.Lock()
	latencies := make([]time.Duration, len(stats.latencies))
	copy(latencies, stats.latencies)
	stats.latenciesMu.Unlock()

	if len(latencies) > 0 {
		sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
		var sum time.Duration
		for _, l := range latencies {
			sum += l
		}
		avg := sum / time.Duration(len(latencies))

		var sumSquared float64
		for _, l := range latencies {
			diff := float64(l) - float64(avg)
			sumSquared += diff * diff
		}

		fmt.Fprintln(w)
		fmt.Fprintln(w, "=== Latency ===")
		fmt.Fprintf(w, "Min:    %s\n", latencies[0])
		fmt.Fprintf(w, "Avg:    %s\n", avg)
		fmt.Fprintf(w, "P50:    %s\n", Percentile(latencies, 50))
		fmt.Fprintf(w, "P95:    %s\n", Percentile(latencies, 95))
		fmt.Fprintf(w, "P99:    %s\n", Percentile(latencies, 99))
		fmt.Fprintf(w, "Max:    %s\n", latencies[len(latencies)-1])
		fmt.Fprintf(w, "StdDev: %s\n", time.Duration(math.Sqrt(sumSquared/float64(len(latencies)))))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "=== Status Codes ===")
	stats.statusCodesMu.Lock()
	codes := make([]int, 0, len(stats.statusCodes))
	for code := range stats.statusCodes {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	for _, code := range codes {
		fmt.Fprintf(w, "  %d: %d\n", code, stats.statusCodes[code])
	}
	stats.statusCodesMu.Unlock()
}

// Percentile returns the nearest-rank percentile of sorted.
func Percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
