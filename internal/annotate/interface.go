package annotate

import (
	"context"
	"errors"
)

// batchSize is the number of texts sent per external request.
const batchSize = 50

// defaultConcurrency bounds in-flight external requests per build.
const defaultConcurrency = 3

// ErrUnsupportedLanguage is returned by engines that cannot serve the
// requested language pair.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Translator is the common interface for all translation engines.
type Translator interface {
	// Translate translates texts in order; the result has one entry per
	// input. sourceLang may be "auto".
	Translate(ctx context.Context, texts []string, sourceLang, targetLang string) ([]string, error)
	// Name returns the engine name
	Name() string
}

// Tagger assigns a part-of-speech tag to each word. A separate capability
// from translation: providers differ.
type Tagger interface {
	// Tag returns one Universal POS tag per input word.
	Tag(ctx context.Context, words []string, lang string) ([]string, error)
	// Name returns the engine name
	Name() string
}
