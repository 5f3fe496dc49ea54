// Package annotate attaches word translations and part-of-speech tags to
// tokenized lyric lines. It assembles data from the translation and tagging
// capabilities; it owns no network logic of its own beyond its engines.
package annotate

import (
	"context"
	"log"
	"sync"
	"unicode"

	"github.com/lyri-learn/backend/internal/cache"
	"github.com/lyri-learn/backend/internal/document"
	"github.com/lyri-learn/backend/internal/langs"
	"github.com/lyri-learn/backend/internal/tokenize"
)

// TokenizedLine pairs a raw line's text with its tokens.
type TokenizedLine struct {
	Text   string
	Tokens []document.Token
}

// Annotator fills per-token translations and POS tags, consulting the cache
// before touching external services. Calls are deduplicated by distinct
// surface text, so a repeated chorus costs one external lookup per word.
type Annotator struct {
	translator  Translator
	tagger      Tagger
	cache       cache.Cache
	concurrency int
}

func New(translator Translator, tagger Tagger, c cache.Cache, concurrency int) *Annotator {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Annotator{
		translator:  translator,
		tagger:      tagger,
		cache:       c,
		concurrency: concurrency,
	}
}

// AnnotateLine translates a whole line, the fallback path when per-token
// annotation is unavailable. Results are cached like any other text.
func (a *Annotator) AnnotateLine(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if e, ok, _ := a.cache.Get(ctx, text, targetLang); ok {
		return e.Translation, nil
	}
	translated, err := a.translator.Translate(ctx, []string{text}, sourceLang, targetLang)
	if err != nil {
		return "", err
	}
	if len(translated) == 0 || translated[0] == "" {
		return "", nil
	}
	a.cache.Put(ctx, text, targetLang, cache.Entry{Translation: translated[0]})
	return translated[0], nil
}

// Annotate produces one LineAnnotation per input line. External failures
// never escape: a line whose tokens cannot all be annotated degrades to the
// line-level translation with unannotated tokens, so no line is ever
// exposed partially filled.
func (a *Annotator) Annotate(ctx context.Context, lines []TokenizedLine, sourceLang, targetLang string) []document.LineAnnotation {
	entries, failed := a.resolveWords(ctx, lines, sourceLang, targetLang)
	lineTranslations := a.resolveLines(ctx, lines, sourceLang, targetLang)

	annotations := make([]document.LineAnnotation, len(lines))
	for i, line := range lines {
		annotations[i] = a.assemble(line, entries, failed, lineTranslations[i], targetLang)
	}
	return annotations
}

// resolveWords returns cache entries for every distinct word surface across
// all lines, fetching misses from the external services with bounded
// concurrency. The failed set holds surfaces whose annotation could not be
// completed.
func (a *Annotator) resolveWords(ctx context.Context, lines []TokenizedLine, sourceLang, targetLang string) (map[string]cache.Entry, map[string]bool) {
	entries := make(map[string]cache.Entry)
	failed := make(map[string]bool)

	// Distinct surfaces in first-appearance order, for deterministic
	// batching.
	var distinct []string
	seen := make(map[string]bool)
	for _, line := range lines {
		for _, tok := range line.Tokens {
			if !isWord(tok.Surface) || seen[tok.Surface] {
				continue
			}
			seen[tok.Surface] = true
			distinct = append(distinct, tok.Surface)
		}
	}

	var misses []string
	for _, surface := range distinct {
		if e, ok, _ := a.cache.Get(ctx, surface, targetLang); ok {
			entries[surface] = e
		} else {
			misses = append(misses, surface)
		}
	}
	if len(misses) == 0 {
		return entries, failed
	}

	log.Printf("[annotate] %d distinct words, %d cache misses", len(distinct), len(misses))

	posActive := a.tagger != nil && langs.POSSupported(sourceLang)

	var mu sync.Mutex
	sem := make(chan struct{}, a.concurrency)
	var wg sync.WaitGroup

	for start := 0; start < len(misses); start += batchSize {
		end := start + batchSize
		if end > len(misses) {
			end = len(misses)
		}
		batch := misses[start:end]

		wg.Add(1)
		sem <- struct{}{}
		go func(batch []string) {
			defer wg.Done()
			defer func() { <-sem }()

			batchEntries, err := a.annotateBatch(ctx, batch, sourceLang, targetLang, posActive)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Printf("[annotate] word batch failed (%d words): %v", len(batch), err)
				for _, s := range batch {
					failed[s] = true
				}
				return
			}
			for i, s := range batch {
				entries[s] = batchEntries[i]
			}
		}(batch)
	}
	wg.Wait()

	return entries, failed
}

// annotateBatch fetches translations and tags for a batch of distinct words
// and fills the cache on success.
func (a *Annotator) annotateBatch(ctx context.Context, words []string, sourceLang, targetLang string, posActive bool) ([]cache.Entry, error) {
	translations, err := a.translator.Translate(ctx, words, sourceLang, targetLang)
	if err != nil {
		return nil, err
	}

	var tags []string
	if posActive {
		tags, err = a.tagger.Tag(ctx, words, sourceLang)
		if err != nil {
			return nil, err
		}
	}

	entries := make([]cache.Entry, len(words))
	for i, w := range words {
		e := cache.Entry{Translation: translations[i]}
		if posActive {
			e.POS = tags[i]
		}
		entries[i] = e
		a.cache.Put(ctx, w, targetLang, e)
	}
	return entries, nil
}

// resolveLines returns a line-level translation per input line, empty where
// translation failed. Line texts go through the same content-addressed
// cache as words.
func (a *Annotator) resolveLines(ctx context.Context, lines []TokenizedLine, sourceLang, targetLang string) []string {
	result := make([]string, len(lines))

	var misses []string
	missIdx := make(map[string][]int)
	for i, line := range lines {
		if line.Text == "" {
			continue
		}
		if e, ok, _ := a.cache.Get(ctx, line.Text, targetLang); ok {
			result[i] = e.Translation
			continue
		}
		if _, dup := missIdx[line.Text]; !dup {
			misses = append(misses, line.Text)
		}
		missIdx[line.Text] = append(missIdx[line.Text], i)
	}
	if len(misses) == 0 {
		return result
	}

	translated, err := a.translator.Translate(ctx, misses, sourceLang, targetLang)
	if err != nil {
		log.Printf("[annotate] line translation failed (%d lines): %v", len(misses), err)
		return result
	}
	for j, text := range misses {
		if j >= len(translated) || translated[j] == "" {
			continue
		}
		a.cache.Put(ctx, text, targetLang, cache.Entry{Translation: translated[j]})
		for _, i := range missIdx[text] {
			result[i] = translated[j]
		}
	}
	return result
}

// assemble builds one line's annotation, enforcing all-or-nothing token
// data.
func (a *Annotator) assemble(line TokenizedLine, entries map[string]cache.Entry, failed map[string]bool, translated, targetLang string) document.LineAnnotation {
	complete := true
	for _, tok := range line.Tokens {
		if !isWord(tok.Surface) {
			continue
		}
		e, ok := entries[tok.Surface]
		if !ok || failed[tok.Surface] || e.Translation == "" {
			complete = false
			break
		}
	}

	if !complete {
		// Strip token annotations entirely so hover data is never
		// inconsistent within a line.
		bare := make([]document.Token, len(line.Tokens))
		for i, tok := range line.Tokens {
			bare[i] = document.Token{Span: tok.Span, Surface: tok.Surface}
		}
		return document.LineAnnotation{
			Tokens:     bare,
			Translated: translated,
			Annotated:  false,
		}
	}

	tokens := make([]document.Token, len(line.Tokens))
	for i, tok := range line.Tokens {
		filled := document.Token{Span: tok.Span, Surface: tok.Surface}
		if isWord(tok.Surface) {
			e := entries[tok.Surface]
			filled.Translation = e.Translation
			filled.POS = e.POS
		} else {
			filled.Translation = tok.Surface
			filled.POS = "PUNCT"
		}
		tokens[i] = filled
	}

	annotation := document.LineAnnotation{
		Tokens:     tokens,
		Translated: translated,
		Annotated:  true,
	}
	if translated != "" {
		annotation.Alignment = Align(tokens, translationWords(translated, targetLang))
	}
	return annotation
}

// translationWords tokenizes a line translation into word surfaces for
// alignment, skipping punctuation tokens.
func translationWords(translated, targetLang string) []string {
	var words []string
	for _, tok := range tokenize.Tokenize(translated, targetLang) {
		if isWord(tok.Surface) {
			words = append(words, tok.Surface)
		}
	}
	return words
}

// isWord reports whether a token surface needs external annotation.
// Punctuation and symbols are annotated locally.
func isWord(surface string) bool {
	for _, r := range surface {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
