// Package index stores evidence embeddings and answers k-nearest-neighbor
// similarity queries. Callers depend only on "ordered top-k by cosine
// similarity"; backends may be exact or approximate as long as they keep
// that contract.
package index

import (
	"context"
	"errors"

	"github.com/veridict/veridict/internal/model"
)

var (
	// ErrDimensionMismatch is returned when an embedding's length differs
	// from the index's established dimensionality. Fatal for that insert
	// or query only; the index is unaffected.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrEmptyIndex is returned by Search on an index with no items.
	// Recoverable: callers degrade the claim to unsupported.
	ErrEmptyIndex = errors.New("index is empty")
)

// Index is the vector store behind evidence retrieval
type Index interface {
	// Insert adds one item. The first insertion fixes the index
	// dimensionality; later items must match it.
	Insert(ctx context.Context, item model.EvidenceItem) error

	// InsertBatch adds items in order, stopping at the first failure.
	// Returns how many items were inserted.
	InsertBatch(ctx context.Context, items []model.EvidenceItem) (int, error)

	// Search returns up to k items ordered by cosine similarity,
	// descending. Ties break by insertion order, earlier first. Fewer
	// than k results only when the index holds fewer items.
	Search(ctx context.Context, query []float32, k int) ([]model.Hit, error)

	// Count reports the number of indexed items
	Count(ctx context.Context) (int, error)

	// Dimension reports the established embedding length, 0 before the
	// first insertion
	Dimension() int

	// Clear removes all items and resets the dimensionality
	Clear(ctx context.Context) error
}
