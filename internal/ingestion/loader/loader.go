// Package loader materializes the document collection: caches first, then
// the source, with the result written back to every cache.
package loader

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/document"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/ingestion/validator"
	apperrors "github.com/Adithya-Monish-Kumar-K/sonnet-search/pkg/errors"
	"golang.org/x/sync/singleflight"
)

// Result is a loaded collection and where it came from.
type Result struct {
	Documents []document.Document
	From      string
	Elapsed   time.Duration
}

type Loader struct {
	source ingestion.Source
	caches []ingestion.Cache
	group  singleflight.Group
	logger *slog.Logger
}

// New builds a loader. Caches are consulted in the given order.
func New(source ingestion.Source, caches ...ingestion.Cache) *Loader {
	return &Loader{
		source: source,
		caches: caches,
		logger: slog.Default().With("component", "loader"),
	}
}

// Load returns the validated collection. Concurrent calls share one load.
// A document without a parseable id fails the whole load with
// ErrMalformedDocument.
func (l *Loader) Load(ctx context.Context) (*Result, error) {
	v, err, shared := l.group.Do("documents", func() (any, error) {
		return l.load(ctx)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		l.logger.Debug("load shared with concurrent caller")
	}
	return v.(*Result), nil
}

func (l *Loader) load(ctx context.Context) (*Result, error) {
	start := time.Now()

	raw, hitAt := l.fromCaches(ctx)
	from := ""
	if hitAt >= 0 {
		from = l.caches[hitAt].Name()
	} else {
		if l.source == nil {
			return nil, apperrors.New(apperrors.ErrSourceUnavailable, http.StatusServiceUnavailable, "no cached documents and no source configured")
		}
		var err error
		raw, err = l.source.Fetch(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading from %s: %w", l.source.Name(), err)
		}
		from = l.source.Name()
	}

	docs, err := Convert(raw)
	if err != nil {
		return nil, err
	}

	// Only caches ahead of the hit missed; warm them.
	warm := l.caches
	if hitAt >= 0 {
		warm = l.caches[:hitAt]
	}
	for _, c := range warm {
		if err := c.Store(ctx, raw); err != nil {
			l.logger.Warn("cache write failed", "cache", c.Name(), "error", err)
		}
	}

	res := &Result{Documents: docs, From: from, Elapsed: time.Since(start)}
	l.logger.Info("documents loaded", "count", len(docs), "from", from, "elapsed", res.Elapsed)
	return res, nil
}

// fromCaches returns the first cache hit and its position, or -1. Cache
// errors are logged and treated as misses.
func (l *Loader) fromCaches(ctx context.Context) ([]ingestion.RawDocument, int) {
	for i, c := range l.caches {
		docs, ok, err := c.Load(ctx)
		if err != nil {
			l.logger.Warn("cache read failed", "cache", c.Name(), "error", err)
			continue
		}
		if ok {
			return docs, i
		}
	}
	return nil, -1
}

// Convert validates raw documents and derives their ids.
func Convert(raw []ingestion.RawDocument) ([]document.Document, error) {
	docs := make([]document.Document, 0, len(raw))
	for i := range raw {
		if err := validator.ValidateDocument(&raw[i]); err != nil {
			return nil, apperrors.Newf(apperrors.ErrMalformedDocument, http.StatusUnprocessableEntity, "document %d: %v", i, err)
		}
		doc, err := document.New(raw[i].Title, raw[i].Lines)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
