package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/searcher/result"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/sonnet-search/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/pkg/resilience"
	"golang.org/x/sync/singleflight"
)

const keyPrefix = "search:"

// Store is the subset of the Redis client the cache uses.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
}

// QueryCache caches ordered result lists per (stemmer, mode, words). Redis
// failures degrade to computing the result; the breaker stops hammering a
// Redis that is down.
type QueryCache struct {
	store   Store
	ttl     time.Duration
	scope   string
	breaker *resilience.CircuitBreaker
	group   singleflight.Group
	metrics *metrics.Metrics
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

// New creates a cache. scope separates entries built with different
// normalizers, typically the stemmer name. m may be nil.
func New(store Store, ttl time.Duration, scope string, m *metrics.Metrics) *QueryCache {
	cbCfg := resilience.CircuitBreakerConfig{
		FailureThreshold: 3,
		ResetTimeout:     10 * time.Second,
		IsFailure:        isStoreFailure,
	}
	if m != nil {
		cbCfg.OnStateChange = func(name string, to resilience.State) {
			m.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
		}
	}
	return &QueryCache{
		store:   store,
		ttl:     ttl,
		scope:   scope,
		breaker: resilience.NewCircuitBreaker("query-cache", cbCfg),
		metrics: m,
		logger:  slog.Default().With("component", "query-cache"),
	}
}

func (c *QueryCache) Get(ctx context.Context, plan *parser.QueryPlan) ([]result.SearchResult, bool) {
	key := c.buildKey(plan)
	var data string
	err := c.breaker.Execute(func() error {
		var err error
		data, err = c.store.Get(ctx, key)
		if pkgredis.IsNilError(err) {
			return nil
		}
		return err
	})
	if err != nil {
		c.logger.Warn("cache get failed", "key", key, "error", err)
		c.miss()
		return nil, false
	}
	if data == "" {
		c.miss()
		return nil, false
	}
	var results []result.SearchResult
	if err := json.Unmarshal([]byte(data), &results); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.miss()
		return nil, false
	}
	c.hit()
	c.logger.Debug("cache hit", "query", plan.RawQuery, "key", key)
	return results, true
}

func (c *QueryCache) Set(ctx context.Context, plan *parser.QueryPlan, results []result.SearchResult) {
	key := c.buildKey(plan)
	data, err := json.Marshal(results)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	err = c.breaker.Execute(func() error {
		return c.store.Set(ctx, key, data, c.ttl)
	})
	if err != nil {
		c.logger.Warn("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached results or runs compute once per key
// across concurrent callers. The bool reports a cache hit.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	plan *parser.QueryPlan,
	compute func() []result.SearchResult,
) ([]result.SearchResult, bool) {
	if results, ok := c.Get(ctx, plan); ok {
		return results, true
	}
	key := c.buildKey(plan)
	val, _, _ := c.group.Do(key, func() (any, error) {
		results := compute()
		c.Set(ctx, plan, results)
		return results, nil
	})
	return val.([]result.SearchResult), false
}

func (c *QueryCache) Invalidate(ctx context.Context) (int64, error) {
	deleted, err := c.store.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return deleted, fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return deleted, nil
}

type Stats struct {
	Hits    int64  `json:"hits"`
	Misses  int64  `json:"misses"`
	Breaker string `json:"breaker"`
}

func (c *QueryCache) Stats() Stats {
	return Stats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Breaker: c.breaker.State().String(),
	}
}

// isStoreFailure ignores errors caused by the caller going away.
func isStoreFailure(err error) bool {
	return !errors.Is(err, context.Canceled)
}

func (c *QueryCache) hit() {
	c.hits.Add(1)
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.Inc()
	}
}

func (c *QueryCache) miss() {
	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.Inc()
	}
}

// buildKey keeps word order: it decides accumulator order and therefore
// the order of equal titles.
func (c *QueryCache) buildKey(plan *parser.QueryPlan) string {
	raw := fmt.Sprintf("%s|%s|%s", c.scope, plan.Type, strings.Join(plan.Words, "\x00"))
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}
