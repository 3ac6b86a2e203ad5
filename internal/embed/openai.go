package embed

import (
	"context"
	"fmt"
	"sync"

	openai "github.com/sashabaranov/go-openai"
)

// knownDimensions maps OpenAI embedding models to their vector lengths
var knownDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// OpenAI embeds text through the OpenAI embeddings endpoint or any
// OpenAI-compatible server when a base URL is set
type OpenAI struct {
	client *openai.Client
	model  string

	mu  sync.Mutex
	dim int
}

// NewOpenAI creates an OpenAI embedding provider
func NewOpenAI(apiKey, model, baseURL string) *OpenAI {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAI{
		client: openai.NewClientWithConfig(config),
		model:  model,
		dim:    knownDimensions[model],
	}
}

// Name identifies the provider
func (o *OpenAI) Name() string { return "openai:" + o.model }

// Dimension reports the model's vector length, 0 until known
func (o *OpenAI) Dimension() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.dim
}

// Embed requests one embedding. The response dimension is recorded on
// first use for models not in the known table.
func (o *OpenAI) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(o.model),
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("openai embeddings: empty response")
	}

	vec := resp.Data[0].Embedding
	o.mu.Lock()
	if o.dim == 0 {
		o.dim = len(vec)
	}
	o.mu.Unlock()
	return vec, nil
}
