// Package render formats search output for a terminal.
package render

import (
	"fmt"
	"io"
	"time"

	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/searcher/highlight"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/searcher/result"
)

// Summary formats the header line printed before the results. A negative
// elapsed omits the timing clause.
func Summary(matched, total int, query string, elapsed time.Duration) string {
	line := fmt.Sprintf("%d out of %d documents match %q.", matched, total, query)
	if elapsed >= 0 {
		line += fmt.Sprintf(" Your query took %.2fms.", float64(elapsed)/float64(time.Millisecond))
	}
	return line
}

// Title formats the "[rank/total] title" line.
func Title(rank, total int, r result.SearchResult, style highlight.Style) string {
	return fmt.Sprintf("[%d/%d] %s", rank, total, highlight.Apply(r.Title, r.TitleSpans, style))
}

// Line formats one matching line with its 1-based number right-aligned.
func Line(lm result.LineMatch, style highlight.Style) string {
	return fmt.Sprintf("  [%2d] %s", lm.LineNo, highlight.Apply(lm.Text, lm.Spans, style))
}

// Result writes one result block, preceded by a blank line.
func Result(w io.Writer, rank, total int, r result.SearchResult, style highlight.Style) error {
	if _, err := fmt.Fprintf(w, "\n%s\n", Title(rank, total, r, style)); err != nil {
		return err
	}
	for _, lm := range r.Lines {
		if _, err := fmt.Fprintln(w, Line(lm, style)); err != nil {
			return err
		}
	}
	return nil
}

// Results writes the summary line followed by every result, ranked from 1.
func Results(w io.Writer, query string, results []result.SearchResult, totalDocs int, elapsed time.Duration, style highlight.Style) error {
	if _, err := fmt.Fprintln(w, Summary(len(results), totalDocs, query, elapsed)); err != nil {
		return err
	}
	for i, r := range results {
		if err := Result(w, i+1, len(results), r, style); err != nil {
			return fmt.Errorf("rendering result %d: %w", i+1, err)
		}
	}
	return nil
}
