// Package source fetches the raw document collection from its system of
// record: a PoetryDB-style HTTP endpoint or a Postgres table.
package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/ingestion"
	apperrors "github.com/Adithya-Monish-Kumar-K/sonnet-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/pkg/resilience"
)

const maxBodyBytes = 32 << 20

// HTTPSource GETs a JSON array of documents.
type HTTPSource struct {
	url     string
	client  *http.Client
	timeout time.Duration
	retry   resilience.RetryConfig
	logger  *slog.Logger
}

func NewHTTP(url string, timeout time.Duration, attempts int) *HTTPSource {
	return &HTTPSource{
		url:     url,
		client:  &http.Client{},
		timeout: timeout,
		retry: resilience.RetryConfig{
			MaxAttempts:  attempts,
			InitialDelay: 250 * time.Millisecond,
			MaxDelay:     5 * time.Second,
		},
		logger: slog.Default().With("component", "http-source"),
	}
}

func (s *HTTPSource) Name() string {
	return "http"
}

// Fetch retries transient failures; client errors and PoetryDB error
// objects fail at once. Each attempt is bounded by the
// configured timeout.
func (s *HTTPSource) Fetch(ctx context.Context) ([]ingestion.RawDocument, error) {
	var docs []ingestion.RawDocument
	err := resilience.Retry(ctx, "fetch-documents", s.retry, func() error {
		return resilience.WithTimeout(ctx, s.timeout, "fetch-documents", func(ctx context.Context) error {
			var err error
			docs, err = s.fetchOnce(ctx)
			return err
		})
	})
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrSourceUnavailable, http.StatusServiceUnavailable,
			"fetching %s: %v", s.url, err)
	}
	s.logger.Info("documents fetched", "url", s.url, "count", len(docs))
	return docs, nil
}

// poetryDBError is what PoetryDB returns instead of an array on a miss.
type poetryDBError struct {
	Status int    `json:"status"`
	Reason string `json:"reason"`
}

func (s *HTTPSource) fetchOnce(ctx context.Context) ([]ingestion.RawDocument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting documents: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("unexpected status %d", resp.StatusCode)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, resilience.Permanent(err)
		}
		return nil, err
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '{' {
		var perr poetryDBError
		if err := json.Unmarshal(body, &perr); err == nil && perr.Status != 0 {
			return nil, resilience.Permanent(fmt.Errorf("source returned status %d: %s", perr.Status, perr.Reason))
		}
		return nil, resilience.Permanent(fmt.Errorf("expected a JSON array of documents"))
	}
	var docs []ingestion.RawDocument
	if err := json.Unmarshal(body, &docs); err != nil {
		return nil, fmt.Errorf("decoding documents: %w", err)
	}
	return docs, nil
}
