package annotate

import (
	"context"
	"log"
	"time"

	"github.com/sony/gobreaker"
)

// newBreaker builds the circuit breaker used around external annotation
// services: a flapping provider should degrade builds to the line-level
// fallback quickly instead of stalling on timeouts.
func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    name,
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("[breaker] %s: %s -> %s", name, from, to)
		},
	})
}

type breakerTranslator struct {
	inner Translator
	cb    *gobreaker.CircuitBreaker
}

// WithTranslatorBreaker wraps a translation engine in a circuit breaker.
func WithTranslatorBreaker(t Translator) Translator {
	return &breakerTranslator{inner: t, cb: newBreaker("translate-" + t.Name())}
}

func (b *breakerTranslator) Name() string { return b.inner.Name() }

func (b *breakerTranslator) Translate(ctx context.Context, texts []string, sourceLang, targetLang string) ([]string, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		return b.inner.Translate(ctx, texts, sourceLang, targetLang)
	})
	if err != nil {
		return nil, err
	}
	return res.([]string), nil
}

type breakerTagger struct {
	inner Tagger
	cb    *gobreaker.CircuitBreaker
}

// WithTaggerBreaker wraps a tagging engine in a circuit breaker.
func WithTaggerBreaker(t Tagger) Tagger {
	return &breakerTagger{inner: t, cb: newBreaker("pos-" + t.Name())}
}

func (b *breakerTagger) Name() string { return b.inner.Name() }

func (b *breakerTagger) Tag(ctx context.Context, words []string, lang string) ([]string, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		return b.inner.Tag(ctx, words, lang)
	})
	if err != nil {
		return nil, err
	}
	return res.([]string), nil
}
