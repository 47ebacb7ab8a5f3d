// Package normalizer maps raw tokens to the canonical keys stored in the
// inverted index. The same Normalizer must be used to build an index and to
// resolve query words against it.
package normalizer

import (
	"fmt"
	"strings"

	porterstemmer "github.com/blevesearch/go-porterstemmer"
	snowballeng "github.com/kljensen/snowball/english"
)

const (
	StemmerPorter   = "porter"
	StemmerSnowball = "snowball"
)

// Stemmer reduces a lowercased word to its stem. Implementations must be
// safe for concurrent use.
type Stemmer interface {
	Stem(word string) string
	Name() string
}

// PorterStemmer applies the classic Porter algorithm.
type PorterStemmer struct{}

func (PorterStemmer) Stem(word string) string {
	if len(word) <= 2 {
		return word
	}
	return string(porterstemmer.StemWithoutLowerCasing([]rune(word)))
}

func (PorterStemmer) Name() string { return StemmerPorter }

// SnowballStemmer applies the English Snowball (Porter2) algorithm.
type SnowballStemmer struct{}

func (SnowballStemmer) Stem(word string) string {
	if word == "" {
		return word
	}
	return snowballeng.Stem(word, true)
}

func (SnowballStemmer) Name() string { return StemmerSnowball }

// NewStemmer returns the stemmer registered under name.
func NewStemmer(name string) (Stemmer, error) {
	switch strings.ToLower(name) {
	case "", StemmerPorter:
		return PorterStemmer{}, nil
	case StemmerSnowball:
		return SnowballStemmer{}, nil
	default:
		return nil, fmt.Errorf("unknown stemmer %q", name)
	}
}

var stripped = strings.NewReplacer("'", "", ",", "", ".", "")

// Normalizer lowercases a token, drops apostrophes, commas and periods, and
// stems the remainder. It holds no mutable state.
type Normalizer struct {
	stemmer Stemmer
}

// New returns a Normalizer backed by stemmer, defaulting to Porter.
func New(stemmer Stemmer) *Normalizer {
	if stemmer == nil {
		stemmer = PorterStemmer{}
	}
	return &Normalizer{stemmer: stemmer}
}

// Normalize returns the index key for token.
func (n *Normalizer) Normalize(token string) string {
	token = strings.ToLower(token)
	token = stripped.Replace(token)
	if token == "" {
		return ""
	}
	return n.stemmer.Stem(token)
}

// Stemmer returns the stemmer in use.
func (n *Normalizer) Stemmer() Stemmer {
	return n.stemmer
}
