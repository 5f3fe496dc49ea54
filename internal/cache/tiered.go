package cache

import (
	"context"
	"log"
)

// Tiered layers a fast in-process cache over a durable or shared store.
// Reads fill the fast layer; writes go to both. Errors from the slow layer
// are logged and absorbed, so a broken backing store degrades to
// memory-only caching instead of failing annotation.
type Tiered struct {
	fast Cache
	slow Cache
}

func NewTiered(fast, slow Cache) *Tiered {
	return &Tiered{fast: fast, slow: slow}
}

func (t *Tiered) Get(ctx context.Context, text, targetLang string) (Entry, bool, error) {
	if e, ok, err := t.fast.Get(ctx, text, targetLang); err == nil && ok {
		return e, true, nil
	}
	e, ok, err := t.slow.Get(ctx, text, targetLang)
	if err != nil {
		log.Printf("[cache] backing store read failed: %v", err)
		return Entry{}, false, nil
	}
	if ok {
		t.fast.Put(ctx, text, targetLang, e)
	}
	return e, ok, nil
}

func (t *Tiered) Put(ctx context.Context, text, targetLang string, entry Entry) error {
	if err := t.fast.Put(ctx, text, targetLang, entry); err != nil {
		return err
	}
	if err := t.slow.Put(ctx, text, targetLang, entry); err != nil {
		log.Printf("[cache] backing store write failed: %v", err)
	}
	return nil
}
