// Package merger folds per-word partial results into one result per
// document under AND/OR semantics.
package merger

import (
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/searcher/result"
)

// ResultSet maps document ids to results and remembers insertion order so
// the final stable sort sees a deterministic sequence.
type ResultSet struct {
	order []int
	byDoc map[int]result.SearchResult
}

func NewResultSet() *ResultSet {
	return &ResultSet{byDoc: make(map[int]result.SearchResult)}
}

// Add folds r into the set, merging with an existing entry for its doc.
func (s *ResultSet) Add(r result.SearchResult) {
	if prev, ok := s.byDoc[r.DocID]; ok {
		s.byDoc[r.DocID] = result.Merge(prev, r)
		return
	}
	s.order = append(s.order, r.DocID)
	s.byDoc[r.DocID] = r
}

func (s *ResultSet) Get(docID int) (result.SearchResult, bool) {
	r, ok := s.byDoc[docID]
	return r, ok
}

func (s *ResultSet) Len() int {
	return len(s.order)
}

// Results returns the results in insertion order.
func (s *ResultSet) Results() []result.SearchResult {
	out := make([]result.SearchResult, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byDoc[id])
	}
	return out
}

// Intersect keeps documents present on both sides, merging their results.
func Intersect(acc, next *ResultSet) *ResultSet {
	out := NewResultSet()
	for _, id := range acc.order {
		other, ok := next.byDoc[id]
		if !ok {
			continue
		}
		out.order = append(out.order, id)
		out.byDoc[id] = result.Merge(acc.byDoc[id], other)
	}
	return out
}

// Union keeps every document from both sides; documents on both sides are
// merged, the rest carried through unchanged. Accumulator documents come
// first.
func Union(acc, next *ResultSet) *ResultSet {
	out := NewResultSet()
	for _, id := range acc.order {
		out.order = append(out.order, id)
		if other, ok := next.byDoc[id]; ok {
			out.byDoc[id] = result.Merge(acc.byDoc[id], other)
		} else {
			out.byDoc[id] = acc.byDoc[id]
		}
	}
	for _, id := range next.order {
		if _, seen := out.byDoc[id]; seen {
			continue
		}
		out.order = append(out.order, id)
		out.byDoc[id] = next.byDoc[id]
	}
	return out
}
