package indexer

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/document"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/indexer/normalizer"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/pkg/metrics"
)

// Stats summarises the last build.
type Stats struct {
	Documents     int           `json:"documents"`
	Terms         int           `json:"terms"`
	Postings      int           `json:"postings"`
	Stemmer       string        `json:"stemmer"`
	BuildDuration time.Duration `json:"build_duration_ns"`
	BuiltAt       time.Time     `json:"built_at"`
}

// Engine owns the immutable index built once from the loaded collection.
type Engine struct {
	index  *index.Index
	stats  Stats
	logger *slog.Logger
}

// NewEngine indexes docs in a single batch pass. m may be nil.
func NewEngine(docs []document.Document, norm *normalizer.Normalizer, m *metrics.Metrics) (*Engine, error) {
	if norm == nil {
		norm = normalizer.New(nil)
	}
	logger := slog.Default().With("component", "indexer")
	start := time.Now()

	ix, err := index.Build(norm, docs)
	if err != nil {
		return nil, fmt.Errorf("building index: %w", err)
	}
	elapsed := time.Since(start)

	e := &Engine{
		index: ix,
		stats: Stats{
			Documents:     ix.DocCount(),
			Terms:         ix.TermCount(),
			Postings:      ix.PostingCount(),
			Stemmer:       norm.Stemmer().Name(),
			BuildDuration: elapsed,
			BuiltAt:       time.Now().UTC(),
		},
		logger: logger,
	}
	if m != nil {
		m.DocsIndexed.Set(float64(e.stats.Documents))
		m.IndexTerms.Set(float64(e.stats.Terms))
		m.IndexPostings.Set(float64(e.stats.Postings))
		m.IndexBuildSeconds.Set(elapsed.Seconds())
	}
	logger.Info("index built",
		"documents", e.stats.Documents,
		"terms", e.stats.Terms,
		"postings", e.stats.Postings,
		"stemmer", e.stats.Stemmer,
		"duration", elapsed,
	)
	return e, nil
}

func (e *Engine) Index() *index.Index {
	return e.index
}

func (e *Engine) Stats() Stats {
	return e.stats
}

// TotalDocs is the collection size reported in "<matched> out of <total>".
func (e *Engine) TotalDocs() int {
	return e.index.DocCount()
}
