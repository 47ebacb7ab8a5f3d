package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/ingestion"
	pkgredis "github.com/Adithya-Monish-Kumar-K/sonnet-search/pkg/redis"
)

const documentsKey = "sonnets:documents"

// KV is the subset of the Redis client the cache needs.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// RedisCache stores the collection as one JSON value, shared by every
// process pointed at the same Redis.
type RedisCache struct {
	kv  KV
	ttl time.Duration
}

func NewRedis(kv KV, ttl time.Duration) *RedisCache {
	return &RedisCache{kv: kv, ttl: ttl}
}

func (c *RedisCache) Name() string {
	return "redis"
}

func (c *RedisCache) Load(ctx context.Context) ([]ingestion.RawDocument, bool, error) {
	data, err := c.kv.Get(ctx, documentsKey)
	if pkgredis.IsNilError(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading %s: %w", documentsKey, err)
	}
	var docs []ingestion.RawDocument
	if err := json.Unmarshal([]byte(data), &docs); err != nil {
		return nil, false, fmt.Errorf("decoding %s: %w", documentsKey, err)
	}
	return docs, true, nil
}

func (c *RedisCache) Store(ctx context.Context, docs []ingestion.RawDocument) error {
	data, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("encoding documents: %w", err)
	}
	if err := c.kv.Set(ctx, documentsKey, data, c.ttl); err != nil {
		return fmt.Errorf("writing %s: %w", documentsKey, err)
	}
	return nil
}
