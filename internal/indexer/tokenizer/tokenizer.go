// Package tokenizer splits text into whitespace-delimited tokens, keeping
// the byte offset of every token so matches can be highlighted in the
// original text.
package tokenizer

import (
	"unicode"
	"unicode/utf8"
)

// Token is a maximal run of non-whitespace characters and its 0-based
// byte offset in the source text. Multi-byte runes before a token make its
// Position larger than its character index.
type Token struct {
	Text     string
	Position int
}

// End returns the exclusive end offset of the token.
func (t Token) End() int {
	return t.Position + len(t.Text)
}

// Tokenize returns the tokens of text in order. Empty or all-whitespace
// input yields an empty slice.
func Tokenize(text string) []Token {
	tokens := make([]Token, 0, len(text)/5)
	start := -1
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if unicode.IsSpace(r) {
			if start >= 0 {
				tokens = append(tokens, Token{Text: text[start:i], Position: start})
				start = -1
			}
		} else if start < 0 {
			start = i
		}
		i += size
	}
	if start >= 0 {
		tokens = append(tokens, Token{Text: text[start:], Position: start})
	}
	return tokens
}
