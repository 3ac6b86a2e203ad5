package llm

import (
	"fmt"
	"strings"

	"github.com/veridict/veridict/internal/model"
)

// NewProvider creates an answer generator from configuration. An empty
// or "none" provider returns nil: generation disabled, verification
// unaffected.
func NewProvider(cfg model.LLMConfig) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return NewOpenAI(cfg)
	case "anthropic", "claude":
		return NewAnthropic(cfg)
	case "ollama":
		return NewOllama(cfg)
	case "", "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: unknown llm provider %q (supported: openai, anthropic, ollama)",
			model.ErrInvalidConfig, cfg.Provider)
	}
}
