package executor

import (
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/searcher/merger"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/searcher/result"
)

// Resolver turns one raw query word into per-document results.
type Resolver struct {
	index *index.Index
}

func NewResolver(ix *index.Index) *Resolver {
	return &Resolver{index: ix}
}

// Resolve normalizes word and builds one result per document holding it.
// Documents appear in the order the index first saw them. An unknown word
// yields an empty set. A word of only stripped punctuation resolves to the
// postings stored under the empty key.
func (r *Resolver) Resolve(word string) *merger.ResultSet {
	set := merger.NewResultSet()
	term := r.index.Normalizer().Normalize(word)
	for _, dp := range r.index.Lookup(term) {
		doc, ok := r.index.Document(dp.DocID)
		if !ok {
			continue
		}
		for _, p := range dp.Postings {
			set.Add(fromPosting(doc.ID, doc.Title, doc.Lines, p))
		}
	}
	return set
}

func fromPosting(docID int, title string, lines []string, p index.Posting) result.SearchResult {
	sr := result.SearchResult{
		DocID:   docID,
		Title:   title,
		Matches: 1,
	}
	span := result.Span{Start: p.Position, End: p.End()}
	if idx, ok := p.Locator.Line(); ok {
		var text string
		if idx < len(lines) {
			text = lines[idx]
		}
		sr.Lines = []result.LineMatch{{
			LineNo: idx + 1,
			Text:   text,
			Spans:  []result.Span{span},
		}}
		return sr
	}
	sr.TitleSpans = []result.Span{span}
	return sr
}
