package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/veridict/veridict/internal/model"
)

const anthropicVersion = "2023-06-01"

// Anthropic generates answers through the Messages API
type Anthropic struct {
	apiKey     string
	baseURL    string
	model      string
	maxTokens  int
	httpClient *http.Client
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewAnthropic creates an Anthropic answer generator
func NewAnthropic(cfg model.LLMConfig) (*Anthropic, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: anthropic llm provider requires an API key", model.ErrInvalidConfig)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}
	m := cfg.Model
	if m == "" {
		m = "claude-3-5-haiku-20241022"
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 512
	}

	return &Anthropic{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		model:      m,
		maxTokens:  maxTokens,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// Name returns the provider name
func (p *Anthropic) Name() string { return "anthropic" }

// Model returns the configured model
func (p *Anthropic) Model() string { return p.model }

// IsAvailable checks the API accepts the configured key
func (p *Anthropic) IsAvailable(ctx context.Context) bool {
	_, err := p.complete(ctx, anthropicRequest{
		Model:     p.model,
		MaxTokens: 8,
		Messages:  []anthropicMessage{{Role: "user", Content: "Hi"}},
	})
	return err == nil
}

// Generate answers the question, retrying transient API failures
func (p *Anthropic) Generate(ctx context.Context, question string) (string, error) {
	return generateWithRetry(ctx, func(ctx context.Context) (string, error) {
		return p.complete(ctx, anthropicRequest{
			Model:     p.model,
			MaxTokens: p.maxTokens,
			System:    systemPrompt,
			Messages:  []anthropicMessage{{Role: "user", Content: question}},
		})
	})
}

func (p *Anthropic) complete(ctx context.Context, apiReq anthropicRequest) (string, error) {
	body, err := json.Marshal(apiReq)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", transientf("anthropic: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", transientf("anthropic: read response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr anthropicResponse
		msg := strings.TrimSpace(string(data))
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != nil {
			msg = apiErr.Error.Message
		}
		if retryableStatus(resp.StatusCode) {
			return "", transientf("anthropic: status %d: %s", resp.StatusCode, msg)
		}
		return "", fmt.Errorf("anthropic: status %d: %s", resp.StatusCode, msg)
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("anthropic: decode response: %w", err)
	}
	for _, block := range parsed.Content {
		if block.Type == "text" {
			return strings.TrimSpace(block.Text), nil
		}
	}
	return "", fmt.Errorf("anthropic: no text content in response")
}
