// Package cache keeps a fetched collection between runs, on local disk or
// in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/ingestion"
)

// FileCache stores the collection as a JSON array.
type FileCache struct {
	path string
}

func NewFile(path string) *FileCache {
	return &FileCache{path: path}
}

func (c *FileCache) Name() string {
	return "file"
}

func (c *FileCache) Load(_ context.Context) ([]ingestion.RawDocument, bool, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cache file %s: %w", c.path, err)
	}
	var docs []ingestion.RawDocument
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, false, fmt.Errorf("decoding cache file %s: %w", c.path, err)
	}
	return docs, true, nil
}

// Store writes to a temporary file and renames it over the cache, so a
// crash never leaves a truncated cache behind.
func (c *FileCache) Store(_ context.Context, docs []ingestion.RawDocument) error {
	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding cache: %w", err)
	}
	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating cache dir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".documents-*.json")
	if err != nil {
		return fmt.Errorf("creating temp cache file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		return fmt.Errorf("replacing cache file %s: %w", c.path, err)
	}
	return nil
}
