package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/veridict/veridict/internal/model"
)

// OpenAI generates answers through the Chat Completions API
type OpenAI struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

// NewOpenAI creates an OpenAI answer generator
func NewOpenAI(cfg model.LLMConfig) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: openai llm provider requires an API key", model.ErrInvalidConfig)
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	m := cfg.Model
	if m == "" {
		m = openai.GPT4oMini
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 512
	}

	return &OpenAI{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       m,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
	}, nil
}

// Name returns the provider name
func (p *OpenAI) Name() string { return "openai" }

// Model returns the configured model
func (p *OpenAI) Model() string { return p.model }

// IsAvailable checks the API is reachable with the configured key
func (p *OpenAI) IsAvailable(ctx context.Context) bool {
	_, err := p.client.ListModels(ctx)
	return err == nil
}

// Generate answers the question, retrying transient API failures
func (p *OpenAI) Generate(ctx context.Context, question string) (string, error) {
	return generateWithRetry(ctx, func(ctx context.Context) (string, error) {
		resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: p.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: question},
			},
			MaxTokens:   p.maxTokens,
			Temperature: p.temperature,
		})
		if err != nil {
			var apiErr *openai.APIError
			if errors.As(err, &apiErr) && !retryableStatus(apiErr.HTTPStatusCode) {
				return "", fmt.Errorf("openai: %w", err)
			}
			return "", transientf("openai: %v", err)
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("openai: empty response")
		}
		return strings.TrimSpace(resp.Choices[0].Message.Content), nil
	})
}
