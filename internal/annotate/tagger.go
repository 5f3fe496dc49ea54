package annotate

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/lyri-learn/backend/internal/langs"
)

// OpenAITagger assigns Universal POS tags via the OpenAI Chat API.
type OpenAITagger struct {
	client *openai.Client
	model  string
}

func NewOpenAITagger(apiKey string) *OpenAITagger {
	return &OpenAITagger{
		client: openai.NewClient(apiKey),
		model:  openai.GPT4oMini,
	}
}

// NewOpenAITaggerWithBaseURL overrides the API endpoint (tests).
func NewOpenAITaggerWithBaseURL(apiKey, baseURL string) *OpenAITagger {
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseURL
	return &OpenAITagger{
		client: openai.NewClientWithConfig(config),
		model:  openai.GPT4oMini,
	}
}

func (t *OpenAITagger) Name() string {
	return "openai-pos"
}

func (t *OpenAITagger) Tag(ctx context.Context, words []string, lang string) ([]string, error) {
	if !langs.POSSupported(lang) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, lang)
	}

	var userPrompt strings.Builder
	fmt.Fprintf(&userPrompt, "Assign a Universal Dependencies POS tag (NOUN, VERB, ADJ, ADV, PRON, DET, ADP, NUM, CONJ, PART, INTJ, PROPN, AUX, SCONJ, X) to each %s word below. ", lang)
	userPrompt.WriteString("Return ONLY a JSON object {\"tags\": [...]} with one tag per word, same order and count.\n\nWords:\n")
	for i, w := range words {
		fmt.Fprintf(&userPrompt, "[%d] %s\n", i+1, w)
	}

	resp, err := t.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: t.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a part-of-speech tagger for song lyrics.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: userPrompt.String(),
			},
		},
		Temperature: 0,
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

	tags, err := parseStringArray(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	if len(tags) != len(words) {
		return nil, fmt.Errorf("tag count mismatch: got %d for %d words", len(tags), len(words))
	}
	for i := range tags {
		tags[i] = strings.ToUpper(strings.TrimSpace(tags[i]))
	}
	return tags, nil
}
