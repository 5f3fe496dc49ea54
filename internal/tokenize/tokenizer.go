// Package tokenize splits lyric lines into word and punctuation tokens.
// Segmentation is script-dependent: alphabetic scripts split on whitespace
// and punctuation boundaries, logographic scripts split per character.
package tokenize

import (
	"github.com/lyri-learn/backend/internal/document"
	"github.com/lyri-learn/backend/internal/langs"
)

// Segmenter splits one line of text into tokens. Implementations must be
// deterministic: identical input yields identical spans.
type Segmenter interface {
	Segment(text string) []document.Token
}

// logographic lists languages whose dominant script has no whitespace word
// boundaries and is segmented per character.
var logographic = map[string]bool{
	"zh":      true,
	"zh-hant": true,
	"ja":      true,
}

// ForLanguage selects the segmentation strategy for a language code.
func ForLanguage(lang string) Segmenter {
	if logographic[langs.Normalize(lang)] {
		return HanSegmenter{}
	}
	return SpaceSegmenter{}
}

// Tokenize splits text with the strategy for lang. Empty text yields an
// empty token slice.
func Tokenize(text, lang string) []document.Token {
	return ForLanguage(lang).Segment(text)
}
