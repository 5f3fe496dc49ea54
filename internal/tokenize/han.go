package tokenize

import (
	"unicode"

	"github.com/lyri-learn/backend/internal/document"
)

// HanSegmenter handles logographic scripts: each Han, Hiragana or Katakana
// rune is a token of its own, embedded alphabetic runs (loanwords, romaji)
// are grouped like SpaceSegmenter words, and punctuation stays separate.
type HanSegmenter struct{}

func (HanSegmenter) Segment(text string) []document.Token {
	runes := []rune(text)
	var tokens []document.Token

	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case isLogographRune(r):
			tokens = append(tokens, token(runes, i, i+1))
			i++
		case isWordRune(r):
			start := i
			for i < len(runes) && isWordRune(runes[i]) && !isLogographRune(runes[i]) {
				i++
			}
			tokens = append(tokens, token(runes, start, i))
		default:
			tokens = append(tokens, token(runes, i, i+1))
			i++
		}
	}
	return tokens
}

func isLogographRune(r rune) bool {
	return unicode.Is(unicode.Han, r) ||
		unicode.Is(unicode.Hiragana, r) ||
		unicode.Is(unicode.Katakana, r)
}
