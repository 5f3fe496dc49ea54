// Package cache memoizes annotation results. Entries are content-addressed
// by (normalized text, target language) and never invalidated within a
// process lifetime: a translation for fixed text and language is stable, so
// overwrites are idempotent.
package cache

import (
	"context"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/lyri-learn/backend/internal/langs"
)

// Entry is a memoized annotation result for one surface text.
type Entry struct {
	Translation string `json:"translation"`
	POS         string `json:"pos,omitempty"`
}

// Cache stores annotation results. Implementations must be safe for
// concurrent use.
type Cache interface {
	Get(ctx context.Context, text, targetLang string) (Entry, bool, error)
	Put(ctx context.Context, text, targetLang string, entry Entry) error
}

// Key builds the content address for a text+language pair. Text is
// NFC-normalized and trimmed so visually identical strings from different
// providers hit the same entry.
func Key(text, targetLang string) string {
	text = norm.NFC.String(strings.TrimSpace(text))
	return langs.Normalize(targetLang) + "\x1f" + text
}
