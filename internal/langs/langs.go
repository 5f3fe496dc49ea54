// Package langs is the language registry: code normalization, the set of
// languages the engine can translate, and per-language POS tagging support.
package langs

import (
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// aliases maps common provider codes to the canonical codes the annotation
// services expect.
var aliases = map[string]string{
	"jp":    "ja",
	"zh-cn": "zh",
	"zh-tw": "zh-hant",
	"pt-br": "pt",
	"pt-pt": "pt",
	"in":    "id",
	"iw":    "he",
}

// translatable is the set of target/source codes accepted by the translation
// engines.
var translatable = []string{
	"ar", "bg", "cs", "da", "de", "el", "en", "es", "et", "fi",
	"fr", "he", "hi", "hu", "id", "it", "ja", "ko", "lt", "lv",
	"nl", "no", "pl", "pt", "ro", "ru", "sk", "sl", "sv", "th",
	"tr", "uk", "vi", "zh", "zh-hant",
}

// posSupported lists codes the POS tagger handles with usable quality.
// Conservative subset of the translatable set.
var posSupported = map[string]bool{
	"ar": true, "bg": true, "cs": true, "da": true, "de": true,
	"el": true, "en": true, "es": true, "et": true, "fi": true,
	"fr": true, "he": true, "hi": true, "hu": true, "id": true,
	"it": true, "ja": true, "ko": true, "lt": true, "lv": true,
	"nl": true, "no": true, "pl": true, "pt": true, "ro": true,
	"ru": true, "sk": true, "sl": true, "sv": true, "th": true,
	"tr": true, "uk": true, "vi": true, "zh": true, "zh-hant": true,
}

// Entry describes one language for the languages endpoint.
type Entry struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	POSSupported bool   `json:"pos_supported"`
}

// Normalize lowercases a code and resolves aliases. Unknown codes pass
// through unchanged so cache keys stay deterministic for them.
func Normalize(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if alias, ok := aliases[code]; ok {
		return alias
	}
	return code
}

// Known reports whether the normalized code is in the translatable set.
func Known(code string) bool {
	code = Normalize(code)
	for _, c := range translatable {
		if c == code {
			return true
		}
	}
	return false
}

// POSSupported reports whether the tagger supports the language.
func POSSupported(code string) bool {
	return posSupported[Normalize(code)]
}

// List returns all supported languages sorted by display name.
func List() []Entry {
	entries := make([]Entry, 0, len(translatable))
	for _, code := range translatable {
		entries = append(entries, Entry{
			Code:         code,
			Name:         displayName(code),
			POSSupported: posSupported[code],
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}

func displayName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	return display.English.Languages().Name(tag)
}
