// Package ingestion defines the raw document schema shared by the sources,
// caches and loader that materialize the collection before indexing.
package ingestion

import "context"

// RawDocument is one poem as delivered by a source or cache, before its
// identifier has been derived. The JSON shape matches PoetryDB.
type RawDocument struct {
	Title     string   `json:"title"`
	Author    string   `json:"author,omitempty"`
	Lines     []string `json:"lines"`
	LineCount string   `json:"linecount,omitempty"`
}

// Source fetches the full collection from its system of record.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]RawDocument, error)
}

// Cache stores a previously fetched collection. Load reports a miss with
// ok == false and a nil error.
type Cache interface {
	Name() string
	Load(ctx context.Context) (docs []RawDocument, ok bool, err error)
	Store(ctx context.Context, docs []RawDocument) error
}
