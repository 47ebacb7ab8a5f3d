// Package document defines the immutable unit of the searchable collection:
// a numbered title and its ordered lines.
package document

import (
	"strconv"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/sonnet-search/pkg/errors"
)

// Document is a titled sequence of lines. Lines are 0-based internally and
// shown 1-based to users.
type Document struct {
	ID    int
	Title string
	Lines []string
}

// New builds a Document, deriving its identifier from the title. A title
// such as "Sonnet 18: Shall I compare thee" yields id 18.
func New(title string, lines []string) (Document, error) {
	id, err := ParseID(title)
	if err != nil {
		return Document{}, err
	}
	owned := make([]string, len(lines))
	copy(owned, lines)
	return Document{ID: id, Title: title, Lines: owned}, nil
}

// ParseID extracts the number that follows the first word of the part of
// the title before the first colon.
func ParseID(title string) (int, error) {
	head, _, _ := strings.Cut(title, ":")
	fields := strings.Fields(head)
	if len(fields) < 2 {
		return 0, apperrors.MalformedDocument(title)
	}
	id, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, apperrors.MalformedDocument(title)
	}
	return id, nil
}

// Line returns the text of the 0-based line index.
func (d Document) Line(idx int) (string, bool) {
	if idx < 0 || idx >= len(d.Lines) {
		return "", false
	}
	return d.Lines[idx], true
}
