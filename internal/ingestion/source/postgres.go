package source

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/ingestion"
	apperrors "github.com/Adithya-Monish-Kumar-K/sonnet-search/pkg/errors"
	"github.com/lib/pq"
)

// PostgresSource reads documents from a table with columns
// (id, title, author, lines), where lines is newline-joined text.
type PostgresSource struct {
	db     *sql.DB
	table  string
	logger *slog.Logger
}

func NewPostgres(db *sql.DB, table string) *PostgresSource {
	return &PostgresSource{
		db:     db,
		table:  table,
		logger: slog.Default().With("component", "postgres-source"),
	}
}

func (s *PostgresSource) Name() string {
	return "postgres"
}

func selectQuery(table string) string {
	return fmt.Sprintf(
		"SELECT title, COALESCE(author, ''), COALESCE(lines, '') FROM %s ORDER BY id",
		pq.QuoteIdentifier(table),
	)
}

func (s *PostgresSource) Fetch(ctx context.Context) ([]ingestion.RawDocument, error) {
	rows, err := s.db.QueryContext(ctx, selectQuery(s.table))
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrSourceUnavailable, http.StatusServiceUnavailable,
			"querying %s: %v", s.table, err)
	}
	defer rows.Close()

	var docs []ingestion.RawDocument
	for rows.Next() {
		var doc ingestion.RawDocument
		var lines string
		if err := rows.Scan(&doc.Title, &doc.Author, &lines); err != nil {
			return nil, fmt.Errorf("scanning document row: %w", err)
		}
		doc.Lines = splitLines(lines)
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating document rows: %w", err)
	}
	s.logger.Info("documents fetched", "table", s.table, "count", len(docs))
	return docs, nil
}

func splitLines(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
}
