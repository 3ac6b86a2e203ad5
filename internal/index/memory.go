package index

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/veridict/veridict/internal/model"
)

// Memory is an exact brute-force index. Reads share a lock and never
// block each other; inserts and clears take it exclusively. Suitable for
// corpora in the thousands of items.
type Memory struct {
	mu    sync.RWMutex
	items []model.EvidenceItem
	dim   int
}

// NewMemory creates an empty in-process index
func NewMemory() *Memory {
	return &Memory{}
}

// Insert adds one item, fixing the dimensionality on first use
func (m *Memory) Insert(ctx context.Context, item model.EvidenceItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertLocked(item)
}

// InsertBatch adds items in order under one lock acquisition. Stops at
// the first failing item and reports how many were inserted.
func (m *Memory) InsertBatch(ctx context.Context, items []model.EvidenceItem) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, item := range items {
		if err := m.insertLocked(item); err != nil {
			return i, fmt.Errorf("item %d (%s): %w", i, item.ID, err)
		}
	}
	return len(items), nil
}

func (m *Memory) insertLocked(item model.EvidenceItem) error {
	if len(item.Embedding) == 0 {
		return fmt.Errorf("%w: item %s has no embedding", ErrDimensionMismatch, item.ID)
	}
	if m.dim == 0 {
		m.dim = len(item.Embedding)
	}
	if len(item.Embedding) != m.dim {
		return fmt.Errorf("%w: got %d, index dimension is %d", ErrDimensionMismatch, len(item.Embedding), m.dim)
	}
	m.items = append(m.items, item)
	return nil
}

// Search scans all items and returns the top k by cosine similarity.
// Equal scores keep insertion order, earlier first.
func (m *Memory) Search(ctx context.Context, query []float32, k int) ([]model.Hit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.items) == 0 {
		return nil, ErrEmptyIndex
	}
	if len(query) != m.dim {
		return nil, fmt.Errorf("%w: query has %d, index dimension is %d", ErrDimensionMismatch, len(query), m.dim)
	}
	if k < 1 {
		return nil, fmt.Errorf("k must be at least 1, got %d", k)
	}

	type scored struct {
		pos   int
		score float64
	}
	scores := make([]scored, len(m.items))
	for i, item := range m.items {
		scores[i] = scored{pos: i, score: Cosine(query, item.Embedding)}
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].score != scores[j].score {
			return scores[i].score > scores[j].score
		}
		return scores[i].pos < scores[j].pos
	})

	if k > len(scores) {
		k = len(scores)
	}
	hits := make([]model.Hit, k)
	for i := 0; i < k; i++ {
		hits[i] = model.Hit{
			Item:       m.items[scores[i].pos],
			Similarity: scores[i].score,
		}
	}
	return hits, nil
}

// Count reports the number of indexed items
func (m *Memory) Count(ctx context.Context) (int, error) {
	return m.Len(), nil
}

// Len is Count without the context, for local callers
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// Dimension reports the established embedding length
func (m *Memory) Dimension() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dim
}

// Clear removes all items and resets the dimensionality
func (m *Memory) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = nil
	m.dim = 0
	return nil
}

// Items returns a copy of the indexed items in insertion order
func (m *Memory) Items() []model.EvidenceItem {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.EvidenceItem, len(m.items))
	copy(out, m.items)
	return out
}

// Cosine computes cosine similarity between two equal-length vectors.
// Zero-norm vectors score 0 against everything.
func Cosine(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
