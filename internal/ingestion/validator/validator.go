// Package validator checks raw documents before they are converted and
// indexed, returning per-field error details.
package validator

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/ingestion"
)

const (
	maxTitleLength = 1024
	maxLines       = 10000
)

// ValidationError holds per-field validation failure messages.
type ValidationError struct {
	Title  string
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, e.Fields[field]))
	}
	return fmt.Sprintf("document %q: %s", e.Title, strings.Join(parts, "; "))
}

// ValidateDocument checks the title and line count of doc. Identifier
// parsing is left to document.New.
func ValidateDocument(doc *ingestion.RawDocument) error {
	errs := make(map[string]string)

	title := strings.TrimSpace(doc.Title)
	if title == "" {
		errs["title"] = "title is required"
	} else if len(title) > maxTitleLength {
		errs["title"] = fmt.Sprintf("title must be at most %d bytes", maxTitleLength)
	}
	if len(doc.Lines) > maxLines {
		errs["lines"] = fmt.Sprintf("at most %d lines allowed", maxLines)
	}
	if doc.LineCount != "" {
		n, err := strconv.Atoi(doc.LineCount)
		switch {
		case err != nil:
			errs["linecount"] = fmt.Sprintf("linecount %q is not a number", doc.LineCount)
		case n != len(doc.Lines):
			errs["linecount"] = fmt.Sprintf("linecount %d does not match %d lines", n, len(doc.Lines))
		}
	}
	if len(errs) > 0 {
		return &ValidationError{Title: doc.Title, Fields: errs}
	}
	return nil
}
