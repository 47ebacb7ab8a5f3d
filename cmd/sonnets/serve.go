package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/analytics/snapshot"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/server"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/pkg/ratelimit"
	"github.com/spf13/cobra"
)

func serveCMD(cfgPath *string) *cobra.Command {
	var port int
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP search API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgPath, os.Stderr)
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Server.Port = port
			}
			ctx := cmd.Context()

			snapshots := cfg.Analytics.Enabled && cfg.Analytics.SnapshotInterval > 0
			a, err := bootstrap(ctx, cfg, snapshots)
			if err != nil {
				return err
			}
			defer a.Close()
			slog.Info("collection loaded",
				"documents", len(a.loaded.Documents),
				"from", a.loaded.From,
				"duration", a.loaded.Elapsed,
			)

			if cfg.Metrics.Enabled {
				shutdown := a.metrics.StartServer(cfg.Metrics.Port)
				defer shutdown(context.Background())
			}

			var analyticsH *analytics.Handler
			if a.aggregator != nil {
				analyticsH = analytics.NewHandler(a.aggregator)
				if snapshots && a.pg != nil {
					store := snapshot.NewStore(a.pg.DB, cfg.Analytics.SnapshotTable)
					store.StartPeriodicSave(ctx, a.aggregator, cfg.Analytics.SnapshotInterval)
				}
			}

			var limiter *ratelimit.Limiter
			if cfg.RateLimit.Enabled {
				limiter = ratelimit.New(ctx, cfg.RateLimit.Limit, cfg.RateLimit.Window)
			}

			srv := server.New(cfg.Server, server.Deps{
				Search:    handler.New(a.svc, a.queryCache, cfg.Search.DefaultMode),
				Analytics: analyticsH,
				Health:    healthChecks(a, cfg.Server.RequestTimeout),
				Metrics:   a.metrics,
				Limiter:   limiter,
			})
			return srv.Run(ctx)
		},
	}
	serve.Flags().IntVarP(&port, "port", "p", 0, "listen port (default from config)")
	return serve
}

func healthChecks(a *app, timeout time.Duration) *health.Checker {
	checker := health.NewChecker(timeout)
	checker.Register("index", func(ctx context.Context) health.ComponentHealth {
		if n := a.engine.TotalDocs(); n > 0 {
			return health.ComponentHealth{Status: health.StatusUp, Message: fmt.Sprintf("%d documents", n)}
		}
		return health.ComponentHealth{Status: health.StatusDown, Message: "empty collection"}
	})
	if a.redis != nil {
		checker.Register("redis", health.Ping(a.redis.Ping, true))
	}
	if a.pg != nil {
		checker.Register("postgres", health.Ping(a.pg.Ping, true))
	}
	return checker
}
