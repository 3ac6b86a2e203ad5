package embed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/veridict/veridict/internal/cache"
)

// Cached memoizes another provider through a cache. The same claim text
// shows up in many answers; for remote providers skipping the repeat call
// is the difference between interactive and sluggish batch verification.
type Cached struct {
	inner Provider
	store cache.Cache
	ttl   time.Duration
}

// NewCached wraps provider with the given cache
func NewCached(provider Provider, store cache.Cache, ttl time.Duration) *Cached {
	return &Cached{inner: provider, store: store, ttl: ttl}
}

// Name identifies the underlying provider
func (c *Cached) Name() string { return c.inner.Name() }

// Dimension reports the underlying provider's vector length
func (c *Cached) Dimension() int { return c.inner.Dimension() }

// Embed returns the cached vector when present, otherwise calls through
// and stores the result. Cache failures fall back to the provider; a
// broken cache must never break embedding.
func (c *Cached) Embed(ctx context.Context, text string) ([]float32, error) {
	key := cache.Key(c.inner.Name(), text)

	if data, found := c.store.Get(key); found {
		var vec []float32
		if err := json.Unmarshal(data, &vec); err == nil && len(vec) > 0 {
			return vec, nil
		}
	}

	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	// Cache write failures are not embedding failures
	if data, err := json.Marshal(vec); err == nil {
		_ = c.store.Set(key, data, c.ttl)
	}
	return vec, nil
}

// String describes the decorated provider for diagnostics
func (c *Cached) String() string {
	return fmt.Sprintf("cached(%s)", c.inner.Name())
}
