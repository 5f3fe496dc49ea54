// Package build runs the document pipeline: fetch raw lyrics, tokenize,
// annotate, assemble. Concurrent requests for the same (song, language)
// pair are coalesced onto one in-flight build; different keys run
// independently.
package build

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/lyri-learn/backend/internal/annotate"
	"github.com/lyri-learn/backend/internal/db"
	"github.com/lyri-learn/backend/internal/document"
	"github.com/lyri-learn/backend/internal/langs"
	"github.com/lyri-learn/backend/internal/lyrics"
	"github.com/lyri-learn/backend/internal/tokenize"
)

// ErrUnknownSong means the song id was never registered.
var ErrUnknownSong = errors.New("unknown song")

// state tracks one in-flight build. Waiters hang on done; the last waiter
// to abandon the build cancels it. Cache fills made before cancellation
// stay valid for the next attempt.
type state struct {
	done    chan struct{}
	doc     *document.TimedDocument
	err     error
	waiters int
	cancel  context.CancelFunc
}

// Service owns document builds and their caches.
type Service struct {
	provider  lyrics.Provider
	annotator *annotate.Annotator
	store     *db.Database

	mu       sync.Mutex
	inflight map[string]*state
	docs     map[string]*document.TimedDocument
}

func NewService(provider lyrics.Provider, annotator *annotate.Annotator, store *db.Database) *Service {
	return &Service{
		provider:  provider,
		annotator: annotator,
		store:     store,
		inflight:  make(map[string]*state),
		docs:      make(map[string]*document.TimedDocument),
	}
}

func buildKey(songID, targetLang string) string {
	return songID + "\x1f" + langs.Normalize(targetLang)
}

// Document returns the built document for (song, lang), building it lazily
// on first request. Duplicate concurrent requests await the single
// in-flight build instead of duplicating external calls.
func (s *Service) Document(ctx context.Context, songID, targetLang string) (*document.TimedDocument, error) {
	song, err := s.store.GetSong(songID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUnknownSong
		}
		return nil, err
	}
	if targetLang == "" {
		targetLang = song.TargetLang
	}
	targetLang = langs.Normalize(targetLang)
	key := buildKey(songID, targetLang)

	s.mu.Lock()
	if doc, ok := s.docs[key]; ok {
		s.mu.Unlock()
		return doc, nil
	}
	s.mu.Unlock()

	// Durable layer: a build persisted by an earlier process.
	if doc, err := s.store.GetDocument(songID, targetLang); err != nil {
		log.Printf("[build] document store read failed: %v", err)
	} else if doc != nil {
		s.mu.Lock()
		s.docs[key] = doc
		s.mu.Unlock()
		return doc, nil
	}

	s.mu.Lock()
	st, running := s.inflight[key]
	if !running {
		// Detached from the request context: the build outlives any one
		// waiter and is cancelled only when all waiters are gone.
		buildCtx, cancel := context.WithCancel(context.Background())
		st = &state{done: make(chan struct{}), cancel: cancel}
		s.inflight[key] = st
		go s.run(buildCtx, key, st, *song, targetLang)
	}
	st.waiters++
	s.mu.Unlock()

	select {
	case <-st.done:
		return st.doc, st.err
	case <-ctx.Done():
		s.mu.Lock()
		st.waiters--
		if st.waiters == 0 {
			log.Printf("[build] all waiters gone, cancelling build %s", key)
			st.cancel()
		}
		s.mu.Unlock()
		return nil, ctx.Err()
	}
}

func (s *Service) run(ctx context.Context, key string, st *state, song document.Song, targetLang string) {
	defer st.cancel()

	doc, err := s.buildDocument(ctx, song, targetLang)

	s.mu.Lock()
	st.doc = doc
	st.err = err
	delete(s.inflight, key)
	if err == nil && !doc.Empty() {
		s.docs[key] = doc
		if perr := s.store.PutDocument(doc); perr != nil {
			log.Printf("[build] document store write failed: %v", perr)
		}
	}
	s.mu.Unlock()
	close(st.done)
}

// buildDocument is the single-build pipeline. Missing lyrics yield an empty
// document, a first-class valid state.
func (s *Service) buildDocument(ctx context.Context, song document.Song, targetLang string) (*document.TimedDocument, error) {
	rawLines, err := s.provider.Fetch(ctx, song.Title, song.Artist)
	if err != nil {
		if errors.Is(err, lyrics.ErrNotFound) {
			log.Printf("[build] no lyrics for song=%s (%s - %s)", song.ID, song.Artist, song.Title)
			return document.Build(nil, nil, song, targetLang), nil
		}
		return nil, fmt.Errorf("fetch lyrics: %w", err)
	}

	sourceLang := langs.Normalize(song.SourceLang)
	tokenized := make([]annotate.TokenizedLine, len(rawLines))
	for i, raw := range rawLines {
		tokenized[i] = annotate.TokenizedLine{
			Text:   raw.Text,
			Tokens: tokenize.Tokenize(raw.Text, sourceLang),
		}
	}

	annotations := s.annotator.Annotate(ctx, tokenized, sourceLang, targetLang)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	doc := document.Build(rawLines, annotations, song, targetLang)
	log.Printf("[build] built document song=%s lang=%s lines=%d", song.ID, targetLang, len(doc.Lines))
	return doc, nil
}

// Invalidate drops cached builds for a song so the next request rebuilds.
// The annotation cache is content-addressed and stays.
func (s *Service) Invalidate(songID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.docs {
		if len(key) > len(songID) && key[:len(songID)] == songID && key[len(songID)] == '\x1f' {
			delete(s.docs, key)
		}
	}
}
