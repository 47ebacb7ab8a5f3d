package repl

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/searcher/highlight"
	"gopkg.in/yaml.v3"
)

// Settings are the user-adjustable REPL options.
type Settings struct {
	SearchMode string `yaml:"search_mode"`
	Highlight  bool   `yaml:"highlight"`
	HLMode     string `yaml:"hl_mode"`
}

// Style returns the ANSI style to render with, Off when highlighting is
// disabled.
func (s Settings) Style() highlight.Style {
	if !s.Highlight {
		return highlight.Off
	}
	style, err := highlight.ParseStyle(s.HLMode)
	if err != nil || style == highlight.Off {
		return highlight.Default
	}
	return style
}

// LoadSettings reads path over defaults. A missing file or an empty path
// yields defaults.
func LoadSettings(path string, defaults Settings) (Settings, error) {
	s := defaults
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("reading settings file: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return defaults, fmt.Errorf("parsing settings file: %w", err)
	}
	return s, nil
}

// Save writes the settings to path. An empty path is a no-op.
func (s Settings) Save(path string) error {
	if path == "" {
		return nil
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating settings dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing settings file: %w", err)
	}
	return nil
}
