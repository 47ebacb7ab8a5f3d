// Package snapshot periodically persists aggregated query statistics to
// PostgreSQL.
package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/analytics"
	"github.com/lib/pq"
)

// Store writes snapshots into a table shaped like:
//
//	CREATE TABLE query_stats_snapshots (
//	    id          BIGSERIAL PRIMARY KEY,
//	    data        JSONB NOT NULL,
//	    captured_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
type Store struct {
	db     *sql.DB
	table  string
	logger *slog.Logger
}

func NewStore(db *sql.DB, table string) *Store {
	return &Store{
		db:     db,
		table:  pq.QuoteIdentifier(table),
		logger: slog.Default().With("component", "analytics-snapshot"),
	}
}

func (s *Store) insertQuery() string {
	return fmt.Sprintf(`INSERT INTO %s (data, captured_at) VALUES ($1, $2)`, s.table)
}

func (s *Store) latestQuery() string {
	return fmt.Sprintf(`SELECT data FROM %s ORDER BY captured_at DESC LIMIT 1`, s.table)
}

func (s *Store) Save(ctx context.Context, stats analytics.AggregatedStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshaling stats: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, s.insertQuery(), data, time.Now().UTC()); err != nil {
		return fmt.Errorf("saving analytics snapshot: %w", err)
	}
	s.logger.Debug("analytics snapshot saved", "total_queries", stats.TotalQueries)
	return nil
}

// Latest returns the most recent snapshot, or nil when none exists.
func (s *Store) Latest(ctx context.Context) (*analytics.AggregatedStats, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, s.latestQuery()).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest snapshot: %w", err)
	}
	var stats analytics.AggregatedStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("unmarshaling snapshot: %w", err)
	}
	return &stats, nil
}

// StartPeriodicSave snapshots agg every interval until ctx is cancelled,
// then saves once more.
func (s *Store) StartPeriodicSave(ctx context.Context, agg *analytics.Aggregator, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := s.Save(ctx, agg.Stats()); err != nil {
					s.logger.Error("periodic snapshot failed", "error", err)
				}
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := s.Save(shutdownCtx, agg.Stats()); err != nil {
					s.logger.Error("final snapshot failed", "error", err)
				}
				return
			}
		}
	}()
	s.logger.Info("periodic snapshot started", "interval", interval)
}
