package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/veridict/veridict/internal/cache"
	"github.com/veridict/veridict/internal/embed"
	"github.com/veridict/veridict/internal/index"
	"github.com/veridict/veridict/internal/model"
	"github.com/veridict/veridict/internal/util"
)

// buildEmbedder creates the configured embedding provider, wrapped in
// the cache when caching is enabled
func buildEmbedder(cfg model.Config) (embed.Provider, error) {
	provider, err := embed.NewProvider(cfg.Embedding)
	if err != nil {
		return nil, err
	}

	if cfg.Cache.Enabled {
		if cfg.Cache.Dir != "" {
			store := cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
			return embed.NewCached(provider, store, cfg.Cache.DiskTTL), nil
		}
		store := cache.NewMemoryCache(cfg.Cache.MemoryTTL, cfg.Cache.MemoryTTL)
		return embed.NewCached(provider, store, cfg.Cache.MemoryTTL), nil
	}
	return provider, nil
}

// buildIndex creates the configured index backend. The memory backend
// loads its persisted artifact when one exists.
func buildIndex(ctx context.Context, cfg model.Config, logger *util.Logger) (index.Index, error) {
	switch cfg.Index.Backend {
	case "", "memory":
		if cfg.Index.Path != "" {
			if _, err := os.Stat(cfg.Index.Path); err == nil {
				idx, err := index.Load(cfg.Index.Path)
				if err != nil {
					return nil, fmt.Errorf("load index %s: %w", cfg.Index.Path, err)
				}
				logger.Verbosef("loaded index %s: %d items", cfg.Index.Path, idx.Len())
				return idx, nil
			}
		}
		return index.NewMemory(), nil
	case "weaviate":
		return index.NewWeaviate(ctx, cfg.Index.WeaviateHost, cfg.Index.WeaviateScheme, cfg.Index.WeaviateClass)
	default:
		return nil, fmt.Errorf("%w: unknown index backend %q", model.ErrInvalidConfig, cfg.Index.Backend)
	}
}

// saveIndex persists the memory backend; remote backends persist
// themselves
func saveIndex(idx index.Index, cfg model.Config, logger *util.Logger) error {
	mem, ok := idx.(*index.Memory)
	if !ok || cfg.Index.Path == "" {
		return nil
	}
	if err := mem.Save(cfg.Index.Path); err != nil {
		return fmt.Errorf("save index %s: %w", cfg.Index.Path, err)
	}
	logger.Verbosef("saved index to %s", cfg.Index.Path)
	return nil
}
