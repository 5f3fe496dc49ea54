package lyrics

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLRCLibFetchSynced(t *testing.T) {
	var gotTrack, gotArtist string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTrack = r.URL.Query().Get("track_name")
		gotArtist = r.URL.Query().Get("artist_name")
		json.NewEncoder(w).Encode(map[string]any{
			"syncedLyrics": "[00:01.00]Hola\n[00:03.00]Mundo",
			"plainLyrics":  "Hola\nMundo",
		})
	}))
	defer server.Close()

	p := NewLRCLibProviderWithURL(server.URL)
	lines, err := p.Fetch(context.Background(), "Song", "Artist")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if gotTrack != "Song" || gotArtist != "Artist" {
		t.Errorf("query params: track=%q artist=%q", gotTrack, gotArtist)
	}
	if len(lines) != 2 || !lines[0].Timed() {
		t.Fatalf("expected 2 timed lines, got %+v", lines)
	}
}

func TestLRCLibFetchPlainFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"syncedLyrics": "",
			"plainLyrics":  "Hola\nMundo",
		})
	}))
	defer server.Close()

	lines, err := NewLRCLibProviderWithURL(server.URL).Fetch(context.Background(), "Song", "Artist")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	for _, l := range lines {
		if l.Timed() {
			t.Errorf("plain lyrics must stay untimed: %+v", l)
		}
	}
}

func TestLRCLibFetchNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewLRCLibProviderWithURL(server.URL).Fetch(context.Background(), "Song", "Artist")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLRCLibFetchInstrumental(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"instrumental": true})
	}))
	defer server.Close()

	_, err := NewLRCLibProviderWithURL(server.URL).Fetch(context.Background(), "Song", "Artist")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("instrumental should map to ErrNotFound, got %v", err)
	}
}

func TestLRCLibFetchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := NewLRCLibProviderWithURL(server.URL).Fetch(context.Background(), "Song", "Artist")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("server error must not look like a miss, got %v", err)
	}
}
