package index

import "fmt"

type locatorKind uint8

const (
	kindTitle locatorKind = iota
	kindLine
)

// Locator says where a posting lives: the document title or one of its
// lines. The zero value is the title.
type Locator struct {
	kind locatorKind
	line int
}

// Title locates the document title.
func Title() Locator {
	return Locator{kind: kindTitle}
}

// Line locates the 0-based line idx.
func Line(idx int) Locator {
	return Locator{kind: kindLine, line: idx}
}

// IsTitle reports whether the locator points at the title.
func (l Locator) IsTitle() bool {
	return l.kind == kindTitle
}

// Line returns the 0-based line index and true for line locators.
func (l Locator) Line() (int, bool) {
	if l.kind != kindLine {
		return 0, false
	}
	return l.line, true
}

func (l Locator) String() string {
	if l.kind == kindTitle {
		return "title"
	}
	return fmt.Sprintf("line:%d", l.line)
}

// Posting is one occurrence of a normalized token.
type Posting struct {
	Locator  Locator
	Position int
	Original string
}

// End returns the exclusive end offset of the original surface token.
func (p Posting) End() int {
	return p.Position + len(p.Original)
}

func (p Posting) String() string {
	return fmt.Sprintf("%s:%d", p.Locator, p.Position)
}

// DocPostings groups the postings of one token inside one document, in
// first-seen order.
type DocPostings struct {
	DocID    int
	Postings []Posting
}

// PostingList is the per-document breakdown of one token, ordered by the
// document's first occurrence during the build.
type PostingList []DocPostings

// TermEntry is a snapshot row used for statistics and diagnostics.
type TermEntry struct {
	Term     string
	DocFreq  int
	Postings int
}
