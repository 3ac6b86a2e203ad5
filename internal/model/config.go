package model

import (
	"errors"
	"fmt"
	"runtime"
	"time"
)

// ErrInvalidConfig marks configuration that fails validation. Surfaced at
// startup, never at verification time.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the single immutable configuration value for a verification
// run. Constructed once at startup and passed explicitly into each
// component's constructor, never read from ambient globals.
type Config struct {
	Embedding    EmbeddingConfig    `mapstructure:"embedding" yaml:"embedding"`
	Retrieval    RetrievalConfig    `mapstructure:"retrieval" yaml:"retrieval"`
	Verification VerificationConfig `mapstructure:"verification" yaml:"verification"`
	Scoring      ScoringConfig      `mapstructure:"scoring" yaml:"scoring"`
	Extraction   ExtractionConfig   `mapstructure:"extraction" yaml:"extraction"`
	Highlight    HighlightConfig    `mapstructure:"highlight" yaml:"highlight"`
	Index        IndexConfig        `mapstructure:"index" yaml:"index"`
	Cache        CacheConfig        `mapstructure:"cache" yaml:"cache"`
	LLM          LLMConfig          `mapstructure:"llm" yaml:"llm"`
	Ingest       IngestConfig       `mapstructure:"ingest" yaml:"ingest"`
	Server       ServerConfig       `mapstructure:"server" yaml:"server"`
	Workers      int                `mapstructure:"workers" yaml:"workers"`          // Claim verification parallelism
	Timeout      time.Duration      `mapstructure:"timeout" yaml:"timeout"`          // Per-answer budget, 0 = none
	Verbose      bool               `mapstructure:"verbose" yaml:"verbose"`          // Diagnostics to stderr
}

// EmbeddingConfig selects and tunes the embedding provider
type EmbeddingConfig struct {
	Provider  string `mapstructure:"provider" yaml:"provider"`   // "local" or "openai"
	Model     string `mapstructure:"model" yaml:"model"`         // Provider model name (openai only)
	Dimension int    `mapstructure:"dimension" yaml:"dimension"` // Vector length for the local provider
	APIKey    string `mapstructure:"-" yaml:"-"`                 // From env, never serialized
	BaseURL   string `mapstructure:"base_url" yaml:"base_url"`   // Override for openai-compatible endpoints
}

// RetrievalConfig tunes evidence retrieval
type RetrievalConfig struct {
	TopK          int           `mapstructure:"top_k" yaml:"top_k"`                   // Neighbors per claim
	RetryAttempts int           `mapstructure:"retry_attempts" yaml:"retry_attempts"` // Embedding call retries
	RetryBackoff  time.Duration `mapstructure:"retry_backoff" yaml:"retry_backoff"`   // Base backoff, doubled per attempt
}

// VerificationConfig holds the fusion weight and threshold policy
type VerificationConfig struct {
	Alpha                float64 `mapstructure:"alpha" yaml:"alpha"`                                 // Semantic share of the combined score
	SupportThreshold     float64 `mapstructure:"support_threshold" yaml:"support_threshold"`         // At or above: supported
	ConflictThreshold    float64 `mapstructure:"conflict_threshold" yaml:"conflict_threshold"`       // Semantic floor for the conflict predicate
	UncertaintyThreshold float64 `mapstructure:"uncertainty_threshold" yaml:"uncertainty_threshold"` // Below: unsupported
}

// ScoringConfig holds aggregation weights and band boundaries
type ScoringConfig struct {
	SupportedWeight      float64    `mapstructure:"supported_weight" yaml:"supported_weight"`
	PartialWeight        float64    `mapstructure:"partially_supported_weight" yaml:"partially_supported_weight"`
	UnsupportedWeight    float64    `mapstructure:"unsupported_weight" yaml:"unsupported_weight"`
	HallucinationPenalty float64    `mapstructure:"hallucination_penalty" yaml:"hallucination_penalty"` // Added to unsupported weight for conflicting claims
	NeutralScore         float64    `mapstructure:"neutral_score" yaml:"neutral_score"`                 // Score when no claims were extracted
	Bands                [4]float64 `mapstructure:"bands" yaml:"bands"`                                 // Category boundaries, descending
	UnsupportedRiskShare float64    `mapstructure:"unsupported_risk_share" yaml:"unsupported_risk_share"` // Unsupported fraction above which risk is high
}

// ExtractionConfig tunes the heuristic claim extractor
type ExtractionConfig struct {
	MaxClaims int `mapstructure:"max_claims" yaml:"max_claims"`
	MinLength int `mapstructure:"min_length" yaml:"min_length"` // Minimum sentence length in characters
}

// HighlightConfig carries the render palette
type HighlightConfig struct {
	HighColor   string `mapstructure:"high_color" yaml:"high_color"`
	MediumColor string `mapstructure:"medium_color" yaml:"medium_color"`
	LowColor    string `mapstructure:"low_color" yaml:"low_color"`
}

// IndexConfig selects the vector index backend
type IndexConfig struct {
	Backend string `mapstructure:"backend" yaml:"backend"` // "memory" or "weaviate"
	Path    string `mapstructure:"path" yaml:"path"`       // Save/load artifact for the memory backend

	WeaviateHost   string `mapstructure:"weaviate_host" yaml:"weaviate_host"`
	WeaviateScheme string `mapstructure:"weaviate_scheme" yaml:"weaviate_scheme"`
	WeaviateClass  string `mapstructure:"weaviate_class" yaml:"weaviate_class"`
}

// CacheConfig controls embedding memoization
type CacheConfig struct {
	Enabled   bool          `mapstructure:"enabled" yaml:"enabled"`
	Dir       string        `mapstructure:"dir" yaml:"dir"` // Disk layer location, empty = memory only
	MemoryTTL time.Duration `mapstructure:"memory_ttl" yaml:"memory_ttl"`
	DiskTTL   time.Duration `mapstructure:"disk_ttl" yaml:"disk_ttl"`
}

// LLMConfig selects the answer generator
type LLMConfig struct {
	Provider    string  `mapstructure:"provider" yaml:"provider"` // "", "openai", "anthropic", "ollama"
	Model       string  `mapstructure:"model" yaml:"model"`
	APIKey      string  `mapstructure:"-" yaml:"-"` // From env, never serialized
	BaseURL     string  `mapstructure:"base_url" yaml:"base_url"`
	MaxTokens   int     `mapstructure:"max_tokens" yaml:"max_tokens"`
	Temperature float32 `mapstructure:"temperature" yaml:"temperature"`
}

// IngestConfig tunes corpus loading
type IngestConfig struct {
	ChunkSize         int           `mapstructure:"chunk_size" yaml:"chunk_size"` // Max characters per chunk
	MaxBodyBytes      int64         `mapstructure:"max_body_bytes" yaml:"max_body_bytes"`
	UserAgent         string        `mapstructure:"user_agent" yaml:"user_agent"`
	Timeout           time.Duration `mapstructure:"timeout" yaml:"timeout"`                         // Per-fetch timeout
	RequestsPerSecond float64       `mapstructure:"requests_per_second" yaml:"requests_per_second"` // Per-domain fetch rate
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr           string        `mapstructure:"addr" yaml:"addr"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes" yaml:"max_body_bytes"`
}

// DefaultConfig returns the standard configuration
func DefaultConfig() Config {
	return Config{
		Embedding: EmbeddingConfig{
			Provider:  "local",
			Model:     "text-embedding-3-small",
			Dimension: 256,
		},
		Retrieval: RetrievalConfig{
			TopK:          5,
			RetryAttempts: 3,
			RetryBackoff:  200 * time.Millisecond,
		},
		Verification: VerificationConfig{
			Alpha:                0.7,
			SupportThreshold:     0.7,
			ConflictThreshold:    0.5,
			UncertaintyThreshold: 0.4,
		},
		Scoring: ScoringConfig{
			SupportedWeight:      1.0,
			PartialWeight:        0.5,
			UnsupportedWeight:    0.0,
			HallucinationPenalty: -0.5,
			NeutralScore:         50,
			Bands:                [4]float64{80, 60, 40, 20},
			UnsupportedRiskShare: 0.5,
		},
		Extraction: ExtractionConfig{
			MaxClaims: 20,
			MinLength: 10,
		},
		Highlight: HighlightConfig{
			HighColor:   "red",
			MediumColor: "orange",
			LowColor:    "green",
		},
		Index: IndexConfig{
			Backend:        "memory",
			Path:           "veridict-index.json",
			WeaviateScheme: "http",
			WeaviateClass:  "Evidence",
		},
		Cache: CacheConfig{
			Enabled:   true,
			MemoryTTL: 1 * time.Hour,
			DiskTTL:   7 * 24 * time.Hour,
		},
		LLM: LLMConfig{
			Model:       "gpt-4o-mini",
			MaxTokens:   512,
			Temperature: 0.2,
		},
		Ingest: IngestConfig{
			ChunkSize:         1200,
			MaxBodyBytes:      2 << 20,
			UserAgent:         "veridict/1.0 (+https://github.com/veridict/veridict)",
			Timeout:           20 * time.Second,
			RequestsPerSecond: 1,
		},
		Server: ServerConfig{
			Addr:           ":8460",
			RequestTimeout: 60 * time.Second,
			MaxBodyBytes:   1 << 20,
		},
		Workers: runtime.NumCPU(),
		Timeout: 0,
	}
}

// Validate checks threshold ordering, weight sanity, and bounds. Any
// violation wraps ErrInvalidConfig so callers can fail fast at startup.
func (c Config) Validate() error {
	v := c.Verification
	if v.Alpha < 0 || v.Alpha > 1 {
		return fmt.Errorf("%w: alpha %.2f outside [0,1]", ErrInvalidConfig, v.Alpha)
	}
	for name, t := range map[string]float64{
		"support_threshold":     v.SupportThreshold,
		"conflict_threshold":    v.ConflictThreshold,
		"uncertainty_threshold": v.UncertaintyThreshold,
	} {
		if t < 0 || t > 1 {
			return fmt.Errorf("%w: %s %.2f outside [0,1]", ErrInvalidConfig, name, t)
		}
	}
	if v.SupportThreshold < v.ConflictThreshold {
		return fmt.Errorf("%w: support_threshold %.2f below conflict_threshold %.2f",
			ErrInvalidConfig, v.SupportThreshold, v.ConflictThreshold)
	}
	if v.UncertaintyThreshold > v.ConflictThreshold {
		return fmt.Errorf("%w: uncertainty_threshold %.2f above conflict_threshold %.2f",
			ErrInvalidConfig, v.UncertaintyThreshold, v.ConflictThreshold)
	}

	s := c.Scoring
	if s.NeutralScore < 0 || s.NeutralScore > 100 {
		return fmt.Errorf("%w: neutral_score %.1f outside [0,100]", ErrInvalidConfig, s.NeutralScore)
	}
	if s.UnsupportedRiskShare < 0 || s.UnsupportedRiskShare > 1 {
		return fmt.Errorf("%w: unsupported_risk_share %.2f outside [0,1]", ErrInvalidConfig, s.UnsupportedRiskShare)
	}
	if s.SupportedWeight <= s.UnsupportedWeight+s.HallucinationPenalty {
		return fmt.Errorf("%w: supported_weight must exceed the conflicting weight", ErrInvalidConfig)
	}
	prev := 100.0
	for i, b := range s.Bands {
		if b <= 0 || b >= 100 {
			return fmt.Errorf("%w: band boundary %.1f outside (0,100)", ErrInvalidConfig, b)
		}
		if b >= prev {
			return fmt.Errorf("%w: band boundaries must descend, got %.1f at position %d", ErrInvalidConfig, b, i)
		}
		prev = b
	}

	if c.Retrieval.TopK < 1 {
		return fmt.Errorf("%w: top_k must be at least 1", ErrInvalidConfig)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1", ErrInvalidConfig)
	}
	if c.Embedding.Provider == "local" && c.Embedding.Dimension < 8 {
		return fmt.Errorf("%w: local embedding dimension %d too small", ErrInvalidConfig, c.Embedding.Dimension)
	}
	return nil
}
