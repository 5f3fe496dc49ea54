package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/lyri-learn/backend/internal/annotate"
	"github.com/lyri-learn/backend/internal/build"
	"github.com/lyri-learn/backend/internal/cache"
	"github.com/lyri-learn/backend/internal/db"
	"github.com/lyri-learn/backend/internal/document"
	"github.com/lyri-learn/backend/internal/lyrics"
)

type fixedProvider struct{ lines []lyrics.RawLine }

func (fixedProvider) Name() string { return "fixed" }

func (p fixedProvider) Fetch(context.Context, string, string) ([]lyrics.RawLine, error) {
	return p.lines, nil
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

func testRouter(t *testing.T) *chi.Mux {
	t.Helper()
	database, err := db.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	song := document.Song{ID: "s1", Title: "Song", Artist: "Artist", SourceLang: "es", TargetLang: "en"}
	if err := database.CreateSong(song); err != nil {
		t.Fatal(err)
	}

	provider := fixedProvider{lines: []lyrics.RawLine{
		{Start: 0, End: 2, Text: "Hola mundo"},
		{Start: 2, End: 4.5, Text: "Buenos dias"},
	}}
	annotator := annotate.New(echoTranslator{}, nil, cache.NewMemory(), 1)
	builder := build.NewService(provider, annotator, database)
	h := NewDocumentHandler(builder)

	r := chi.NewRouter()
	r.Get("/api/songs/{id}/document", h.GetDocument)
	r.Get("/api/songs/{id}/active", h.Active)
	return r
}

func TestGetDocument(t *testing.T) {
	router := testRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/songs/s1/document", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var doc document.TimedDocument
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(doc.Lines) != 2 || doc.TargetLang != "en" {
		t.Errorf("document = %+v", doc)
	}
}

func TestGetDocumentUnknownSong(t *testing.T) {
	router := testRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/songs/nope/document", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestActive(t *testing.T) {
	router := testRouter(t)

	tests := []struct {
		url       string
		wantIndex int
		wantLine  bool
	}{
		{"/api/songs/s1/active?t=1.0", 0, true},
		{"/api/songs/s1/active?t=3.0", 1, true},
		{"/api/songs/s1/active?t=9.0", -1, false}, // silence
		{"/api/songs/s1/active?t=3.0&hint=0", 1, true},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", tt.url, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", tt.url, rec.Code)
		}
		var resp struct {
			Index int            `json:"index"`
			Line  *document.Line `json:"line"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("%s: decode: %v", tt.url, err)
		}
		if resp.Index != tt.wantIndex {
			t.Errorf("%s: index = %d, want %d", tt.url, resp.Index, tt.wantIndex)
		}
		if (resp.Line != nil) != tt.wantLine {
			t.Errorf("%s: line presence = %v, want %v", tt.url, resp.Line != nil, tt.wantLine)
		}
	}
}

func TestActiveCursorToken(t *testing.T) {
	router := testRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/songs/s1/active?t=1.0&cursor=6", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Token *document.Token `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Token == nil || resp.Token.Surface != "mundo" {
		t.Errorf("token = %+v", resp.Token)
	}
}

func TestActiveMissingTime(t *testing.T) {
	router := testRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/songs/s1/active", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
}
