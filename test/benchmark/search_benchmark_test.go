package benchmark

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/searcher/highlight"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/searcher/render"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/searcher/result"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/searcher/service"
)

var queries = []struct {
	name  string
	query string
	mode  string
}{
	{"single", "love", "AND"},
	{"and_two", "love beauty", "AND"},
	{"or_two", "love beauty", "OR"},
	{"and_long", "shall compare thee summer day", "AND"},
	{"or_long", "shall compare thee summer day", "OR"},
	{"miss", "nevermore", "AND"},
}

func BenchmarkParse(b *testing.B) {
	for _, q := range queries {
		b.Run(q.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := parser.Parse(q.query, q.mode); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkExecute measures resolve, fold and ordering without the service
// layer.
func BenchmarkExecute(b *testing.B) {
	engine, err := indexer.NewEngine(corpus(154), nil, nil)
	if err != nil {
		b.Fatal(err)
	}
	exec := executor.New(engine)

	for _, q := range queries {
		plan, err := parser.Parse(q.query, q.mode)
		if err != nil {
			b.Fatal(err)
		}
		b.Run(q.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = exec.Execute(plan)
			}
		})
	}
}

// BenchmarkServiceSearch adds the service layer's timing and span
// bookkeeping.
func BenchmarkServiceSearch(b *testing.B) {
	engine, err := indexer.NewEngine(corpus(154), nil, nil)
	if err != nil {
		b.Fatal(err)
	}
	svc := service.New(engine, service.Options{})
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		q := queries[i%len(queries)]
		if _, err := svc.Search(ctx, q.query, q.mode, "bench"); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkMergeSpans(b *testing.B) {
	spans := make([]result.Span, 0, 64)
	for i := 0; i < 64; i++ {
		start := (i * 7) % 200
		spans = append(spans, result.Span{Start: start, End: start + 5})
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = highlight.MergeSpans(spans)
	}
}

func BenchmarkRender(b *testing.B) {
	engine, err := indexer.NewEngine(corpus(154), nil, nil)
	if err != nil {
		b.Fatal(err)
	}
	results, err := executor.New(engine).Search("love thee", "OR")
	if err != nil {
		b.Fatal(err)
	}

	for _, style := range []highlight.Style{highlight.Off, highlight.Default} {
		b.Run(style.String(), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if err := render.Results(io.Discard, "love thee", results, 154, time.Millisecond, style); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
