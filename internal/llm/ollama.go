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

// Ollama generates answers through a local Ollama server
type Ollama struct {
	baseURL    string
	model      string
	maxTokens  int
	httpClient *http.Client
}

type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	System  string        `json:"system,omitempty"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options,omitempty"`
}

type ollamaOptions struct {
	NumPredict int `json:"num_predict,omitempty"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

// NewOllama creates an Ollama answer generator. No API key needed;
// local models can be slow, so the HTTP timeout is generous.
func NewOllama(cfg model.LLMConfig) (*Ollama, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	m := cfg.Model
	if m == "" {
		m = "llama3.1"
	}

	return &Ollama{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		model:      m,
		maxTokens:  cfg.MaxTokens,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}, nil
}

// Name returns the provider name
func (p *Ollama) Name() string { return "ollama" }

// Model returns the configured model
func (p *Ollama) Model() string { return p.model }

// IsAvailable checks whether the Ollama server is running
func (p *Ollama) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	return resp.StatusCode == http.StatusOK
}

// Generate answers the question, retrying transient server failures
func (p *Ollama) Generate(ctx context.Context, question string) (string, error) {
	return generateWithRetry(ctx, func(ctx context.Context) (string, error) {
		body, err := json.Marshal(ollamaRequest{
			Model:   p.model,
			Prompt:  question,
			System:  systemPrompt,
			Stream:  false,
			Options: ollamaOptions{NumPredict: p.maxTokens},
		})
		if err != nil {
			return "", fmt.Errorf("marshal request: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/generate", bytes.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := p.httpClient.Do(req)
		if err != nil {
			return "", transientf("ollama: %v", err)
		}
		defer func() { _ = resp.Body.Close() }()

		data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
		if err != nil {
			return "", transientf("ollama: read response: %v", err)
		}
		if resp.StatusCode != http.StatusOK {
			if retryableStatus(resp.StatusCode) {
				return "", transientf("ollama: status %d", resp.StatusCode)
			}
			return "", fmt.Errorf("ollama: status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
		}

		var parsed ollamaResponse
		if err := json.Unmarshal(data, &parsed); err != nil {
			return "", fmt.Errorf("ollama: decode response: %w", err)
		}
		if parsed.Error != "" {
			return "", fmt.Errorf("ollama: %s", parsed.Error)
		}
		return strings.TrimSpace(parsed.Response), nil
	})
}
