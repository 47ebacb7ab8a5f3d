// Package benchmark contains Go benchmarks for tokenizing, index building
// and query evaluation over a synthetic sonnet collection.
package benchmark

import (
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/document"
)

var vocabulary = []string{
	"love", "beauty", "time", "thee", "thou", "summer", "rose", "death",
	"eyes", "heart", "youth", "praise", "verse", "night", "day", "sweet",
}

// corpus builds n fourteen-line sonnets with a rotating vocabulary.
func corpus(n int) []document.Document {
	docs := make([]document.Document, n)
	for i := range docs {
		lines := make([]string, 14)
		for l := range lines {
			w := func(k int) string { return vocabulary[(i+l*3+k)%len(vocabulary)] }
			lines[l] = fmt.Sprintf("Shall %s compare %s to a %s's %s, my %s?", w(0), w(1), w(2), w(3), w(4))
		}
		docs[i] = document.Document{
			ID:    i + 1,
			Title: fmt.Sprintf("Sonnet %d: Of %s", i+1, vocabulary[i%len(vocabulary)]),
			Lines: lines,
		}
	}
	return docs
}
