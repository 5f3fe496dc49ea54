package build

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lyri-learn/backend/internal/annotate"
	"github.com/lyri-learn/backend/internal/cache"
	"github.com/lyri-learn/backend/internal/db"
	"github.com/lyri-learn/backend/internal/document"
	"github.com/lyri-learn/backend/internal/lyrics"
)

type stubProvider struct {
	fetches int32
	delay   time.Duration
	lines   []lyrics.RawLine
	err     error
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Fetch(ctx context.Context, title, artist string) ([]lyrics.RawLine, error) {
	atomic.AddInt32(&p.fetches, 1)
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if p.err != nil {
		return nil, p.err
	}
	return p.lines, nil
}

func (p *stubProvider) fetchCount() int {
	return int(atomic.LoadInt32(&p.fetches))
}

type echoTranslator struct{}

func (echoTranslator) Name() string { return "echo" }

func (echoTranslator) Translate(_ context.Context, texts []string, _, _ string) ([]string, error) {
	out := make([]string, len(texts))
	for i, text := range texts {
		out[i] = "[" + text + "]"
	}
	return out, nil
}

func newTestService(t *testing.T, provider lyrics.Provider) (*Service, *db.Database) {
	t.Helper()
	database, err := db.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	song := document.Song{ID: "s1", Title: "Song", Artist: "Artist", SourceLang: "es", TargetLang: "en"}
	if err := database.CreateSong(song); err != nil {
		t.Fatalf("create song: %v", err)
	}

	annotator := annotate.New(echoTranslator{}, nil, cache.NewMemory(), 1)
	return NewService(provider, annotator, database), database
}

func timedLines() []lyrics.RawLine {
	return []lyrics.RawLine{
		{Start: 0, End: 2, Text: "Hola mundo"},
		{Start: 2, End: 4, Text: "Buenos dias"},
	}
}

func TestDocumentBuildsOnce(t *testing.T) {
	provider := &stubProvider{lines: timedLines()}
	svc, _ := newTestService(t, provider)
	ctx := context.Background()

	doc, err := svc.Document(ctx, "s1", "en")
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	if len(doc.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(doc.Lines))
	}
	if doc.Lines[0].Translated == "" {
		t.Error("lines should be translated")
	}

	// Second request is served from memory.
	if _, err := svc.Document(ctx, "s1", "en"); err != nil {
		t.Fatalf("second Document: %v", err)
	}
	if provider.fetchCount() != 1 {
		t.Errorf("provider fetched %d times, want 1", provider.fetchCount())
	}
}

func TestDocumentCoalescesConcurrentRequests(t *testing.T) {
	provider := &stubProvider{lines: timedLines(), delay: 50 * time.Millisecond}
	svc, _ := newTestService(t, provider)

	const callers = 8
	var wg sync.WaitGroup
	docs := make([]*document.TimedDocument, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			docs[i], errs[i] = svc.Document(context.Background(), "s1", "en")
		}(i)
	}
	wg.Wait()

	if provider.fetchCount() != 1 {
		t.Errorf("provider fetched %d times, want 1", provider.fetchCount())
	}
	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d: %v", i, errs[i])
		}
		if docs[i] != docs[0] {
			t.Errorf("caller %d got a different document", i)
		}
	}
}

func TestDocumentUnknownSong(t *testing.T) {
	svc, _ := newTestService(t, &stubProvider{lines: timedLines()})
	_, err := svc.Document(context.Background(), "nope", "en")
	if !errors.Is(err, ErrUnknownSong) {
		t.Errorf("expected ErrUnknownSong, got %v", err)
	}
}

func TestDocumentMissingLyricsEmptyDoc(t *testing.T) {
	provider := &stubProvider{err: lyrics.ErrNotFound}
	svc, _ := newTestService(t, provider)

	doc, err := svc.Document(context.Background(), "s1", "en")
	if err != nil {
		t.Fatalf("missing lyrics must not be an error: %v", err)
	}
	if !doc.Empty() {
		t.Errorf("expected empty document, got %d lines", len(doc.Lines))
	}

	// Empty documents are not cached; a later request retries.
	if _, err := svc.Document(context.Background(), "s1", "en"); err != nil {
		t.Fatal(err)
	}
	if provider.fetchCount() != 2 {
		t.Errorf("provider fetched %d times, want 2", provider.fetchCount())
	}
}

func TestDocumentProviderFailure(t *testing.T) {
	svc, _ := newTestService(t, &stubProvider{err: errors.New("upstream down")})
	_, err := svc.Document(context.Background(), "s1", "en")
	if err == nil {
		t.Fatal("expected error from provider failure")
	}
}

func TestDocumentDefaultLanguage(t *testing.T) {
	provider := &stubProvider{lines: timedLines()}
	svc, _ := newTestService(t, provider)

	doc, err := svc.Document(context.Background(), "s1", "")
	if err != nil {
		t.Fatal(err)
	}
	if doc.TargetLang != "en" {
		t.Errorf("default language = %q, want song target en", doc.TargetLang)
	}
}

func TestDocumentPerLanguageBuilds(t *testing.T) {
	provider := &stubProvider{lines: timedLines()}
	svc, _ := newTestService(t, provider)
	ctx := context.Background()

	if _, err := svc.Document(ctx, "s1", "en"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Document(ctx, "s1", "fr"); err != nil {
		t.Fatal(err)
	}
	if provider.fetchCount() != 2 {
		t.Errorf("two languages should build twice, fetched %d", provider.fetchCount())
	}

	// Alias of an already-built language reuses the build.
	if _, err := svc.Document(ctx, "s1", "EN"); err != nil {
		t.Fatal(err)
	}
	if provider.fetchCount() != 2 {
		t.Errorf("language alias triggered a rebuild, fetched %d", provider.fetchCount())
	}
}

func TestDocumentPersistedAcrossServices(t *testing.T) {
	provider := &stubProvider{lines: timedLines()}
	svc, database := newTestService(t, provider)
	ctx := context.Background()

	if _, err := svc.Document(ctx, "s1", "en"); err != nil {
		t.Fatal(err)
	}

	// A fresh service over the same store reads the persisted build.
	annotator := annotate.New(echoTranslator{}, nil, cache.NewMemory(), 1)
	svc2 := NewService(provider, annotator, database)
	doc, err := svc2.Document(ctx, "s1", "en")
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Lines) != 2 {
		t.Errorf("persisted document lost lines: %d", len(doc.Lines))
	}
	if provider.fetchCount() != 1 {
		t.Errorf("persisted build refetched, count=%d", provider.fetchCount())
	}
}

func TestInvalidate(t *testing.T) {
	provider := &stubProvider{lines: timedLines()}
	svc, database := newTestService(t, provider)
	ctx := context.Background()

	if _, err := svc.Document(ctx, "s1", "en"); err != nil {
		t.Fatal(err)
	}

	if err := database.DeleteDocuments("s1"); err != nil {
		t.Fatal(err)
	}
	svc.Invalidate("s1")

	if _, err := svc.Document(ctx, "s1", "en"); err != nil {
		t.Fatal(err)
	}
	if provider.fetchCount() != 2 {
		t.Errorf("invalidated build not rebuilt, fetched %d", provider.fetchCount())
	}
}

func TestDocumentWaiterCancellation(t *testing.T) {
	provider := &stubProvider{lines: timedLines(), delay: 200 * time.Millisecond}
	svc, _ := newTestService(t, provider)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := svc.Document(ctx, "s1", "en")
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("cancelled waiter did not return")
	}
}
