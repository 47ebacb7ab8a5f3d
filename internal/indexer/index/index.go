// Package index holds the inverted index: normalized token -> document ->
// ordered postings. A Builder accumulates postings in one batch pass and is
// consumed by Build, which hands its storage to a read-only Index.
package index

import (
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/document"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/indexer/normalizer"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/indexer/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/sonnet-search/pkg/errors"
)

// ErrBuilderConsumed is returned when a Builder is used after Build.
var ErrBuilderConsumed = errors.New("index builder already consumed")

// docRefs points into the posting arena for one (term, document) pair.
type docRefs struct {
	docID int
	refs  []int32
}

type Builder struct {
	norm     *normalizer.Normalizer
	arena    []Posting
	terms    map[string][]docRefs
	termDocs map[string]map[int]int
	docs     []document.Document
	byID     map[int]int
	consumed bool
}

func NewBuilder(norm *normalizer.Normalizer) *Builder {
	if norm == nil {
		norm = normalizer.New(nil)
	}
	return &Builder{
		norm:     norm,
		arena:    make([]Posting, 0, 1024),
		terms:    make(map[string][]docRefs),
		termDocs: make(map[string]map[int]int),
		byID:     make(map[int]int),
	}
}

// Add tokenizes the title and every line of doc and records a posting per
// token. Document ids must be unique.
func (b *Builder) Add(doc document.Document) error {
	if b.consumed {
		return ErrBuilderConsumed
	}
	if _, dup := b.byID[doc.ID]; dup {
		return apperrors.Newf(apperrors.ErrMalformedDocument, http.StatusUnprocessableEntity,
			"duplicate document id %d (%q)", doc.ID, doc.Title)
	}
	b.byID[doc.ID] = len(b.docs)
	b.docs = append(b.docs, doc)

	b.addText(doc.ID, Title(), doc.Title)
	for i, line := range doc.Lines {
		b.addText(doc.ID, Line(i), line)
	}
	return nil
}

func (b *Builder) addText(docID int, loc Locator, text string) {
	for _, tok := range tokenizer.Tokenize(text) {
		// Punctuation-only tokens normalize to "" and are kept under that key.
		b.addPosting(b.norm.Normalize(tok.Text), docID, Posting{
			Locator:  loc,
			Position: tok.Position,
			Original: tok.Text,
		})
	}
}

func (b *Builder) addPosting(term string, docID int, p Posting) {
	ref := int32(len(b.arena))
	b.arena = append(b.arena, p)

	docs, ok := b.termDocs[term]
	if !ok {
		docs = make(map[int]int)
		b.termDocs[term] = docs
	}
	slot, ok := docs[docID]
	if !ok {
		slot = len(b.terms[term])
		docs[docID] = slot
		b.terms[term] = append(b.terms[term], docRefs{docID: docID})
	}
	entries := b.terms[term]
	entries[slot].refs = append(entries[slot].refs, ref)
}

// Build consumes the builder and returns the immutable Index.
func (b *Builder) Build() (*Index, error) {
	if b.consumed {
		return nil, ErrBuilderConsumed
	}
	b.consumed = true
	ix := &Index{
		norm:  b.norm,
		arena: b.arena,
		terms: b.terms,
		docs:  b.docs,
		byID:  b.byID,
	}
	b.arena, b.terms, b.termDocs, b.docs, b.byID = nil, nil, nil, nil, nil
	return ix, nil
}

// Index is read-only after construction and safe for concurrent lookups.
type Index struct {
	norm  *normalizer.Normalizer
	arena []Posting
	terms map[string][]docRefs
	docs  []document.Document
	byID  map[int]int
}

// Build is a convenience that indexes every document in order.
func Build(norm *normalizer.Normalizer, docs []document.Document) (*Index, error) {
	b := NewBuilder(norm)
	for _, doc := range docs {
		if err := b.Add(doc); err != nil {
			return nil, fmt.Errorf("indexing document %d: %w", doc.ID, err)
		}
	}
	return b.Build()
}

// Lookup returns fresh copies of the postings stored under a normalized
// term, or nil when the term is absent.
func (ix *Index) Lookup(term string) PostingList {
	entries, ok := ix.terms[term]
	if !ok {
		return nil
	}
	result := make(PostingList, 0, len(entries))
	for _, e := range entries {
		postings := make([]Posting, len(e.refs))
		for i, ref := range e.refs {
			postings[i] = ix.arena[ref]
		}
		result = append(result, DocPostings{DocID: e.docID, Postings: postings})
	}
	return result
}

// Document returns the indexed document with the given id.
func (ix *Index) Document(id int) (document.Document, bool) {
	pos, ok := ix.byID[id]
	if !ok {
		return document.Document{}, false
	}
	return ix.docs[pos], true
}

// Documents returns the indexed documents in load order.
func (ix *Index) Documents() []document.Document {
	out := make([]document.Document, len(ix.docs))
	copy(out, ix.docs)
	return out
}

func (ix *Index) Normalizer() *normalizer.Normalizer {
	return ix.norm
}

func (ix *Index) DocCount() int {
	return len(ix.docs)
}

func (ix *Index) TermCount() int {
	return len(ix.terms)
}

func (ix *Index) PostingCount() int {
	return len(ix.arena)
}

// Snapshot lists every term with its document frequency, sorted by term.
func (ix *Index) Snapshot() []TermEntry {
	entries := make([]TermEntry, 0, len(ix.terms))
	for term, docs := range ix.terms {
		total := 0
		for _, d := range docs {
			total += len(d.refs)
		}
		entries = append(entries, TermEntry{
			Term:     term,
			DocFreq:  len(docs),
			Postings: total,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Term < entries[j].Term
	})
	return entries
}
