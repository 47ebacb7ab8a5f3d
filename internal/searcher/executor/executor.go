package executor

import (
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/searcher/merger"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/searcher/result"
)

type Executor struct {
	engine   *indexer.Engine
	resolver *Resolver
	logger   *slog.Logger
}

func New(engine *indexer.Engine) *Executor {
	return &Executor{
		engine:   engine,
		resolver: NewResolver(engine.Index()),
		logger:   slog.Default().With("component", "query-executor"),
	}
}

// Execute folds the plan's words left to right and returns the matches
// ordered by title. The first word's results seed the accumulator as-is.
func (e *Executor) Execute(plan *parser.QueryPlan) []result.SearchResult {
	if len(plan.Words) == 0 {
		return []result.SearchResult{}
	}

	acc := e.resolver.Resolve(plan.Words[0])
	for _, word := range plan.Words[1:] {
		next := e.resolver.Resolve(word)
		switch plan.Type {
		case parser.QueryAND:
			acc = merger.Intersect(acc, next)
		case parser.QueryOR:
			acc = merger.Union(acc, next)
		}
	}

	results := ranker.Order(acc.Results())
	e.logger.Debug("query executed",
		"query", plan.RawQuery,
		"mode", plan.Type.String(),
		"words", len(plan.Words),
		"results", len(results),
	)
	return results
}

// Search parses query under mode and executes it.
func (e *Executor) Search(query, mode string) ([]result.SearchResult, error) {
	plan, err := parser.Parse(query, mode)
	if err != nil {
		return nil, err
	}
	return e.Execute(plan), nil
}

func (e *Executor) TotalDocs() int {
	return e.engine.TotalDocs()
}
