package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/NikhilKartha5/ai-journal/internal/client/models"
)

// Analyzer scores a journal entry's text. An error means no analysis could
// be produced; callers must not create an entry with a zero result.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (models.AnalysisResult, error)
}

const DefaultModel = "gpt-4o-mini"

const systemPrompt = `You are an empathetic journaling assistant. Analyze the journal entry and respond with this exact JSON format, nothing else:
{
  "sentimentScore": 1-10 (1 = very negative, 10 = very positive),
  "emotions": ["up to three dominant emotions, capitalized"],
  "summary": "one-sentence summary of the entry",
  "suggestions": ["one or two short, gentle suggestions"]
}`

// OpenAIAnalyzer produces sentiment analyses via the chat completions API.
type OpenAIAnalyzer struct {
	client *openai.Client
	model  string
}

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

func NewOpenAIAnalyzer(cfg Config) *OpenAIAnalyzer {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	return &OpenAIAnalyzer{
		client: openai.NewClientWithConfig(oc),
		model:  model,
	}
}

func (a *OpenAIAnalyzer) Analyze(ctx context.Context, text string) (models.AnalysisResult, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return models.AnalysisResult{}, fmt.Errorf("analysis request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return models.AnalysisResult{}, fmt.Errorf("analysis returned no choices")
	}

	raw := resp.Choices[0].Message.Content
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var result models.AnalysisResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return models.AnalysisResult{}, fmt.Errorf("failed to parse analysis: %w", err)
	}
	return result, nil
}
