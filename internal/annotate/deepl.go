package annotate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lyri-learn/backend/internal/langs"
)

const deeplAPIURL = "https://api-free.deepl.com/v2/translate"

// DeepLTranslator translates via the DeepL API.
type DeepLTranslator struct {
	apiKey     string
	apiURL     string
	httpClient *http.Client
}

func NewDeepLTranslator(apiKey string) *DeepLTranslator {
	return &DeepLTranslator{
		apiKey: apiKey,
		apiURL: deeplAPIURL,
		httpClient: &http.Client{
			Timeout: 1 * time.Minute,
		},
	}
}

// NewDeepLTranslatorWithURL overrides the API endpoint (tests).
func NewDeepLTranslatorWithURL(apiKey, apiURL string) *DeepLTranslator {
	t := NewDeepLTranslator(apiKey)
	t.apiURL = apiURL
	return t
}

func (d *DeepLTranslator) Name() string {
	return "deepl"
}

func (d *DeepLTranslator) Translate(ctx context.Context, texts []string, sourceLang, targetLang string) ([]string, error) {
	if d.apiKey == "" {
		return nil, fmt.Errorf("DeepL API key not configured")
	}

	// DeepL accepts multiple texts per request (up to 50)
	var result []string
	totalBatches := (len(texts) + batchSize - 1) / batchSize

	for i := 0; i < len(texts); i += batchSize {
		end := i + batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[i:end]
		batchNum := i/batchSize + 1

		log.Printf("[deepl] translating batch %d/%d (%d texts)", batchNum, totalBatches, len(batch))

		translated, err := d.translateBatch(ctx, batch, sourceLang, targetLang)
		if err != nil {
			return nil, fmt.Errorf("batch %d: %w", batchNum, err)
		}
		result = append(result, translated...)
	}

	return result, nil
}

func (d *DeepLTranslator) translateBatch(ctx context.Context, texts []string, sourceLang, targetLang string) ([]string, error) {
	form := url.Values{}
	for _, t := range texts {
		form.Add("text", t)
	}
	form.Set("target_lang", deeplLangCode(targetLang))
	if sourceLang != "" && sourceLang != "auto" {
		form.Set("source_lang", deeplLangCode(sourceLang))
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", d.apiURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Authorization", "DeepL-Auth-Key "+d.apiKey)

	resp, err := d.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("DeepL API request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusBadRequest && strings.Contains(string(body), "target_lang") {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, targetLang)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("DeepL API error (status %d): %s", resp.StatusCode, string(body))
	}

	var deeplResp struct {
		Translations []struct {
			Text string `json:"text"`
		} `json:"translations"`
	}
	if err := json.Unmarshal(body, &deeplResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	// Pad with source text on count mismatch rather than failing the batch.
	result := make([]string, len(texts))
	for i := range texts {
		if i < len(deeplResp.Translations) {
			result[i] = deeplResp.Translations[i].Text
		} else {
			result[i] = texts[i]
		}
	}
	return result, nil
}

// deeplLangCode converts ISO 639-1 codes to DeepL format
func deeplLangCode(code string) string {
	mapping := map[string]string{
		"en":      "EN",
		"pt":      "PT-BR",
		"zh":      "ZH",
		"zh-hant": "ZH-HANT",
		"no":      "NB",
	}
	code = langs.Normalize(code)
	if mapped, ok := mapping[code]; ok {
		return mapped
	}
	return strings.ToUpper(code)
}
