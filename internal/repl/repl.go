// Package repl implements the interactive query loop.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/searcher/highlight"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/searcher/render"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/searcher/service"
	apperrors "github.com/Adithya-Monish-Kumar-K/sonnet-search/pkg/errors"
)

// Options configure a REPL. Aggregator may be nil.
type Options struct {
	Prompt       string
	SettingsFile string
	Aggregator   *analytics.Aggregator
}

type REPL struct {
	svc      *service.Service
	settings Settings
	opts     Options
	out      io.Writer
	commands map[string]func(arg string) string
	logger   *slog.Logger
}

func New(svc *service.Service, settings Settings, out io.Writer, opts Options) *REPL {
	if opts.Prompt == "" {
		opts.Prompt = "> "
	}
	r := &REPL{
		svc:      svc,
		settings: settings,
		opts:     opts,
		out:      out,
		logger:   slog.Default().With("component", "repl"),
	}
	r.commands = map[string]func(string) string{
		":search-mode": r.setSearchMode,
		":highlight":   r.setHighlight,
		":hl-mode":     r.setHLMode,
		":stats":       func(string) string { return r.stats() },
	}
	return r
}

// Settings returns the current settings.
func (r *REPL) Settings() Settings {
	return r.settings
}

// PrintLoaded reports how long loading the collection took.
func PrintLoaded(w io.Writer, elapsed time.Duration, count int) {
	fmt.Fprintf(w, "Loading sonnets took: %.3f [ms]\n", float64(elapsed)/float64(time.Millisecond))
	fmt.Fprintf(w, "Loaded %d sonnets.\n", count)
}

// Run reads lines from in until :quit, EOF or ctx is cancelled.
func (r *REPL) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		if err := ctx.Err(); err != nil {
			fmt.Fprintln(r.out, "\nBye.")
			return nil
		}
		fmt.Fprint(r.out, r.opts.Prompt)
		if !scanner.Scan() {
			fmt.Fprintln(r.out, "\nBye.")
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == ":quit" {
			fmt.Fprintln(r.out, "Bye.")
			return nil
		}
		if strings.HasPrefix(line, ":") {
			fmt.Fprintln(r.out, r.command(line))
			continue
		}
		r.query(ctx, line)
	}
}

func (r *REPL) command(line string) string {
	if line == ":help" {
		return Help
	}
	name, arg, _ := strings.Cut(line, " ")
	handle, ok := r.commands[name]
	if !ok {
		return unknownCommand
	}
	return handle(strings.TrimSpace(arg))
}

func (r *REPL) query(ctx context.Context, line string) {
	resp, err := r.svc.Search(ctx, line, r.settings.SearchMode, "repl")
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			fmt.Fprintln(r.out, appErr.Message)
		} else {
			fmt.Fprintln(r.out, err)
		}
		return
	}
	if err := render.Results(r.out, line, resp.Results, resp.Total, resp.Elapsed, r.settings.Style()); err != nil {
		r.logger.Error("writing results", "error", err)
	}
}

func (r *REPL) setSearchMode(arg string) string {
	mode, err := parser.ParseMode(arg)
	if err != nil {
		return "Usage: :search-mode AND|OR"
	}
	r.settings.SearchMode = mode.String()
	r.persist()
	return fmt.Sprintf("Search mode set to %s.", r.settings.SearchMode)
}

func (r *REPL) setHighlight(arg string) string {
	switch strings.ToLower(arg) {
	case "on":
		r.settings.Highlight = true
	case "off":
		r.settings.Highlight = false
	default:
		return "Usage: :highlight on|off"
	}
	r.persist()
	return fmt.Sprintf("Highlighting %s.", strings.ToLower(arg))
}

func (r *REPL) setHLMode(arg string) string {
	style, err := highlight.ParseStyle(arg)
	if err != nil || style == highlight.Off {
		return "Usage: :hl-mode DEFAULT|GREEN"
	}
	r.settings.HLMode = style.String()
	r.persist()
	return fmt.Sprintf("Highlight mode set to %s.", r.settings.HLMode)
}

func (r *REPL) persist() {
	if err := r.settings.Save(r.opts.SettingsFile); err != nil {
		r.logger.Warn("saving settings", "error", err)
	}
}

func (r *REPL) stats() string {
	ix := r.svc.IndexStats()
	var b strings.Builder
	fmt.Fprintf(&b, "Documents: %d\nTerms: %d\nPostings: %d\nStemmer: %s\nIndex built in %.3f [ms]",
		ix.Documents, ix.Terms, ix.Postings, ix.Stemmer,
		float64(ix.BuildDuration)/float64(time.Millisecond))
	if r.opts.Aggregator == nil {
		return b.String()
	}
	q := r.opts.Aggregator.Stats()
	fmt.Fprintf(&b, "\nQueries: %d (zero results: %d, invalid: %d)\nLatency p50/p95: %.2fms / %.2fms",
		q.TotalQueries, q.ZeroResultCount, q.InvalidQueries, q.P50LatencyMs, q.P95LatencyMs)
	for _, top := range q.TopQueries {
		fmt.Fprintf(&b, "\n  %4d  %s", top.Count, top.Query)
	}
	return b.String()
}
