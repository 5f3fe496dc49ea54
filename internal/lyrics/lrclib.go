package lyrics

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"
)

const lrclibAPIURL = "https://lrclib.net/api/get"

// LRCLibProvider fetches synced lyrics from the lrclib.net public API.
type LRCLibProvider struct {
	baseURL    string
	httpClient *http.Client
}

func NewLRCLibProvider() *LRCLibProvider {
	return &LRCLibProvider{
		baseURL: lrclibAPIURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// NewLRCLibProviderWithURL overrides the API endpoint (tests).
func NewLRCLibProviderWithURL(baseURL string) *LRCLibProvider {
	p := NewLRCLibProvider()
	p.baseURL = baseURL
	return p
}

func (p *LRCLibProvider) Name() string {
	return "lrclib"
}

func (p *LRCLibProvider) Fetch(ctx context.Context, title, artist string) ([]RawLine, error) {
	q := url.Values{}
	q.Set("track_name", title)
	q.Set("artist_name", artist)

	httpReq, err := http.NewRequestWithContext(ctx, "GET", p.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("lrclib request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("lrclib error (status %d): %s", resp.StatusCode, string(body))
	}

	var lrclibResp struct {
		SyncedLyrics string `json:"syncedLyrics"`
		PlainLyrics  string `json:"plainLyrics"`
		Instrumental bool   `json:"instrumental"`
	}
	if err := json.Unmarshal(body, &lrclibResp); err != nil {
		return nil, fmt.Errorf("parse lrclib response: %w", err)
	}

	if lrclibResp.Instrumental {
		return nil, ErrNotFound
	}

	content := lrclibResp.SyncedLyrics
	if content == "" {
		// Unsynced lyrics are still usable for translation; the builder
		// excludes them from the timed document.
		content = lrclibResp.PlainLyrics
	}
	if content == "" {
		return nil, ErrNotFound
	}

	lines := ParseLRC(content)
	log.Printf("[lrclib] fetched %d lines: title=%q artist=%q", len(lines), title, artist)
	return lines, nil
}
