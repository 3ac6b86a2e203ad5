package embed

import (
	"context"
	"hash/fnv"
	"math"

	"github.com/veridict/veridict/internal/util"
)

// DefaultDimension is the vector length for the local provider when the
// configuration leaves it unset
const DefaultDimension = 256

// Local is a pure, offline embedder: content tokens are feature-hashed
// into a fixed-length term-frequency vector and L2-normalized. Two texts
// sharing content words land near each other; no model download, no
// network, fully deterministic.
type Local struct {
	dim int
}

// NewLocal creates a local embedder with the given dimension
func NewLocal(dim int) *Local {
	if dim <= 0 {
		dim = DefaultDimension
	}
	return &Local{dim: dim}
}

// Name identifies the provider
func (l *Local) Name() string { return "local" }

// Dimension reports the configured vector length
func (l *Local) Dimension() int { return l.dim }

// Embed hashes content tokens into buckets and normalizes. Text with no
// content tokens embeds as the zero vector, which scores 0 against
// everything.
func (l *Local) Embed(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, l.dim)
	for _, tok := range util.ContentTokens(text) {
		h := fnv.New64a()
		h.Write([]byte(tok))
		vec[h.Sum64()%uint64(l.dim)]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return vec, nil
	}
	inv := 1 / math.Sqrt(norm)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) * inv)
	}
	return vec, nil
}
