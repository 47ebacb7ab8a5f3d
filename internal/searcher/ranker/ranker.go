// Package ranker produces the final presentation order of search results.
// There is no relevance scoring: results are ordered by title.
package ranker

import (
	"sort"

	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/searcher/result"
)

// Order sorts results ascending by title in place. The sort is stable, so
// equal titles keep their incoming order.
func Order(results []result.SearchResult) []result.SearchResult {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Title < results[j].Title
	})
	return results
}

// Ranked pairs a result with its 1-based position.
type Ranked struct {
	Rank   int
	Result result.SearchResult
}

// Number assigns 1-based ranks to already ordered results.
func Number(results []result.SearchResult) []Ranked {
	out := make([]Ranked, len(results))
	for i, r := range results {
		out[i] = Ranked{Rank: i + 1, Result: r}
	}
	return out
}
