package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/analytics/collector"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/indexer/normalizer"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/ingestion"
	ingestcache "github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/ingestion/cache"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/ingestion/loader"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/ingestion/source"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/searcher/service"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/sonnet-search/pkg/redis"
)

// app holds everything the sub-commands share once the collection is
// indexed.
type app struct {
	cfg        *config.Config
	metrics    *metrics.Metrics
	redis      *pkgredis.Client
	pg         *postgres.Client
	loaded     *loader.Result
	engine     *indexer.Engine
	queryCache *cache.QueryCache
	aggregator *analytics.Aggregator
	collector  *collector.BatchCollector
	svc        *service.Service
	closers    []func()
}

func loadConfig(path string, logOut io.Writer) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format, logOut)
	return cfg, nil
}

// bootstrap connects the optional backends, loads and indexes the
// collection and assembles the search service. Optional backends that
// cannot be reached are logged and skipped.
func bootstrap(ctx context.Context, cfg *config.Config, needPostgres bool) (*app, error) {
	a := &app{cfg: cfg, metrics: metrics.New(nil)}

	if cfg.Redis.Enabled {
		client, err := pkgredis.NewClient(cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, caching disabled", "error", err)
		} else {
			a.redis = client
			a.closers = append(a.closers, func() { client.Close() })
		}
	}

	if cfg.Loader.Source == config.SourcePostgres || needPostgres {
		client, err := postgres.New(cfg.Postgres)
		if err != nil {
			if cfg.Loader.Source == config.SourcePostgres {
				a.Close()
				return nil, err
			}
			slog.Warn("postgres unavailable, analytics snapshots disabled", "error", err)
		} else {
			a.pg = client
			a.closers = append(a.closers, func() { client.Close() })
		}
	}

	var src ingestion.Source
	if cfg.Loader.Source == config.SourcePostgres {
		src = source.NewPostgres(a.pg.DB, a.pg.Table())
	} else {
		src = source.NewHTTP(cfg.Loader.URL, cfg.Loader.Timeout, cfg.Loader.RetryAttempts)
	}
	var caches []ingestion.Cache
	if cfg.Loader.CacheFile != "" {
		caches = append(caches, ingestcache.NewFile(cfg.Loader.CacheFile))
	}
	if cfg.Loader.RedisCache && a.redis != nil {
		caches = append(caches, ingestcache.NewRedis(a.redis, cfg.Loader.RedisCacheTTL))
	}

	loaded, err := loader.New(src, caches...).Load(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.loaded = loaded

	stemmer, err := normalizer.NewStemmer(cfg.Search.Stemmer)
	if err != nil {
		a.Close()
		return nil, err
	}
	engine, err := indexer.NewEngine(loaded.Documents, normalizer.New(stemmer), a.metrics)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.engine = engine

	if cfg.Search.CacheResults && a.redis != nil {
		a.queryCache = cache.New(a.redis, cfg.Redis.CacheTTL, stemmer.Name(), a.metrics)
		slog.Info("query cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
	}

	var sinks analytics.Sinks
	if cfg.Analytics.Enabled {
		a.aggregator = analytics.NewAggregator(cfg.Analytics.TopQueries)
		sinks = append(sinks, a.aggregator)
		if cfg.Kafka.Enabled {
			producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.QueryEvents)
			a.collector = collector.NewBatchCollector(producer, cfg.Analytics.BatchSize, cfg.Analytics.FlushInterval)
			collectCtx, stopCollector := context.WithCancel(ctx)
			a.collector.Start(collectCtx)
			sinks = append(sinks, a.collector)
			a.closers = append(a.closers, func() {
				stopCollector()
				a.collector.Close()
				producer.Close()
			})
			slog.Info("query events publishing", "topic", cfg.Kafka.Topics.QueryEvents)
		}
	}

	opts := service.Options{
		Cache:   a.queryCache,
		Metrics: a.metrics,
		Tracing: cfg.Tracing.Enabled,
	}
	if len(sinks) > 0 {
		opts.Sink = sinks
	}
	a.svc = service.New(engine, opts)
	return a, nil
}

// Close releases backends in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
