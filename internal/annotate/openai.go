package annotate

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAITranslator translates via the OpenAI Chat API. Batches are issued
// concurrently, bounded by defaultConcurrency.
type OpenAITranslator struct {
	client *openai.Client
	model  string
}

func NewOpenAITranslator(apiKey string) *OpenAITranslator {
	return &OpenAITranslator{
		client: openai.NewClient(apiKey),
		model:  openai.GPT4oMini,
	}
}

// NewOpenAITranslatorWithBaseURL overrides the API endpoint (tests).
func NewOpenAITranslatorWithBaseURL(apiKey, baseURL string) *OpenAITranslator {
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseURL
	return &OpenAITranslator{
		client: openai.NewClientWithConfig(config),
		model:  openai.GPT4oMini,
	}
}

func (o *OpenAITranslator) Name() string {
	return "openai"
}

func (o *OpenAITranslator) Translate(ctx context.Context, texts []string, sourceLang, targetLang string) ([]string, error) {
	totalBatches := (len(texts) + batchSize - 1) / batchSize

	type batchResult struct {
		texts []string
		err   error
	}

	results := make([]batchResult, totalBatches)
	var completed atomic.Int32
	sem := make(chan struct{}, defaultConcurrency)
	var wg sync.WaitGroup

	for i := 0; i < len(texts); i += batchSize {
		end := i + batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batchIdx := i / batchSize
		batch := texts[i:end]

		wg.Add(1)
		sem <- struct{}{}

		go func(idx int, batch []string) {
			defer wg.Done()
			defer func() { <-sem }()

			translated, err := o.translateBatch(ctx, batch, sourceLang, targetLang)
			if err != nil {
				results[idx] = batchResult{err: fmt.Errorf("batch %d: %w", idx+1, err)}
			} else {
				results[idx] = batchResult{texts: translated}
			}

			done := completed.Add(1)
			log.Printf("[openai-translate] batch %d/%d completed", done, totalBatches)
		}(batchIdx, batch)
	}

	wg.Wait()

	var result []string
	for _, r := range results {
		if r.err != nil {
			return nil, r.err
		}
		result = append(result, r.texts...)
	}
	return result, nil
}

func (o *OpenAITranslator) translateBatch(ctx context.Context, texts []string, sourceLang, targetLang string) ([]string, error) {
	var userPrompt strings.Builder
	fmt.Fprintf(&userPrompt, "Translate the following texts from %s to %s. ", describeLang(sourceLang), describeLang(targetLang))
	userPrompt.WriteString("Return ONLY a JSON object {\"translations\": [...]} with one translated string per input, same order and count.\n\nInput:\n")
	for i, t := range texts {
		fmt.Fprintf(&userPrompt, "[%d] %s\n", i+1, t)
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a song lyrics translator. Keep translations short and literal enough to line up with the source text.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: userPrompt.String(),
			},
		},
		Temperature: 0.3,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI API request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty OpenAI response")
	}

	translations, err := parseStringArray(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	result := make([]string, len(texts))
	for i := range texts {
		if i < len(translations) {
			result[i] = translations[i]
		} else {
			result[i] = texts[i]
		}
	}
	return result, nil
}

// parseStringArray digs a JSON string array out of a model response, which
// may be a bare array, a wrapped object, or array-in-prose.
func parseStringArray(content string) ([]string, error) {
	var items []string
	if err := json.Unmarshal([]byte(content), &items); err == nil {
		return items, nil
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &wrapped); err == nil {
		for _, v := range wrapped {
			if err := json.Unmarshal(v, &items); err == nil {
				return items, nil
			}
		}
	}

	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(content[start:end+1]), &items); err == nil {
			return items, nil
		}
	}
	return nil, fmt.Errorf("parse model response: %s", content)
}

func describeLang(code string) string {
	if code == "" || code == "auto" {
		return "the source language"
	}
	return code
}
