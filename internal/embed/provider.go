// Package embed maps text to fixed-length vectors. Providers must be
// deterministic for identical input within a session; the pipeline relies
// on that for idempotent verification.
package embed

import (
	"context"
	"fmt"

	"github.com/veridict/veridict/internal/model"
)

// Provider is the embedding function behind retrieval
type Provider interface {
	// Name identifies the provider for cache keys and diagnostics
	Name() string

	// Dimension reports the vector length, 0 if not yet known
	Dimension() int

	// Embed maps text to a vector of Dimension() length
	Embed(ctx context.Context, text string) ([]float32, error)
}

// NewProvider builds the configured embedding provider
func NewProvider(cfg model.EmbeddingConfig) (Provider, error) {
	switch cfg.Provider {
	case "local", "":
		return NewLocal(cfg.Dimension), nil
	case "openai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%w: openai embedding provider requires an API key", model.ErrInvalidConfig)
		}
		return NewOpenAI(cfg.APIKey, cfg.Model, cfg.BaseURL), nil
	default:
		return nil, fmt.Errorf("%w: unknown embedding provider %q", model.ErrInvalidConfig, cfg.Provider)
	}
}
