package tokenize

import (
	"unicode"

	"github.com/lyri-learn/backend/internal/document"
)

// SpaceSegmenter splits whitespace-delimited scripts. Runs of letters,
// digits and combining marks form word tokens; every punctuation or symbol
// rune is its own token; whitespace separates and is discarded. Spans are
// rune offsets into the line text.
type SpaceSegmenter struct{}

func (SpaceSegmenter) Segment(text string) []document.Token {
	runes := []rune(text)
	var tokens []document.Token

	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case isWordRune(r):
			start := i
			for i < len(runes) && (isWordRune(runes[i]) || isInnerApostrophe(runes, i)) {
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

func token(runes []rune, start, end int) document.Token {
	return document.Token{
		Span:    document.Span{Start: start, End: end},
		Surface: string(runes[start:end]),
	}
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}

// isInnerApostrophe keeps contractions like "don't" or "l'amour" as one
// token: an apostrophe counts as word-internal only between letters.
func isInnerApostrophe(runes []rune, i int) bool {
	if runes[i] != '\'' && runes[i] != '’' {
		return false
	}
	return i > 0 && isWordRune(runes[i-1]) &&
		i+1 < len(runes) && isWordRune(runes[i+1])
}
