package index

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"sync"
	"testing"

	"github.com/veridict/veridict/internal/model"
)

func item(id string, embedding ...float32) model.EvidenceItem {
	return model.EvidenceItem{ID: id, Text: "text for " + id, Embedding: embedding}
}

func TestMemory_InsertFixesDimension(t *testing.T) {
	idx := NewMemory()
	ctx := context.Background()

	if err := idx.Insert(ctx, item("a", 1, 0, 0)); err != nil {
		t.Fatalf("Expected first insert to succeed, got %v", err)
	}
	if idx.Dimension() != 3 {
		t.Errorf("Expected dimension 3, got %d", idx.Dimension())
	}

	err := idx.Insert(ctx, item("b", 1, 0))
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("Expected ErrDimensionMismatch for shorter vector, got %v", err)
	}
	if idx.Len() != 1 {
		t.Errorf("Expected failed insert to leave index unchanged, got %d items", idx.Len())
	}
}

func TestMemory_InsertRejectsEmptyEmbedding(t *testing.T) {
	idx := NewMemory()

	err := idx.Insert(context.Background(), model.EvidenceItem{ID: "empty"})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("Expected ErrDimensionMismatch for missing embedding, got %v", err)
	}
}

func TestMemory_InsertBatchStopsAtFailure(t *testing.T) {
	idx := NewMemory()

	inserted, err := idx.InsertBatch(context.Background(), []model.EvidenceItem{
		item("a", 1, 0),
		item("b", 0, 1),
		item("bad", 1, 0, 0),
		item("c", 1, 1),
	})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("Expected ErrDimensionMismatch, got %v", err)
	}
	if inserted != 2 {
		t.Errorf("Expected 2 items inserted before the failure, got %d", inserted)
	}
	if idx.Len() != 2 {
		t.Errorf("Expected index to hold 2 items, got %d", idx.Len())
	}
}

func TestMemory_SearchEmptyIndex(t *testing.T) {
	idx := NewMemory()

	_, err := idx.Search(context.Background(), []float32{1, 0}, 3)
	if !errors.Is(err, ErrEmptyIndex) {
		t.Errorf("Expected ErrEmptyIndex, got %v", err)
	}
}

func TestMemory_SearchQueryDimensionMismatch(t *testing.T) {
	idx := NewMemory()
	if err := idx.Insert(context.Background(), item("a", 1, 0, 0)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	_, err := idx.Search(context.Background(), []float32{1, 0}, 1)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("Expected ErrDimensionMismatch for short query, got %v", err)
	}
}

func TestMemory_SearchDescendingOrder(t *testing.T) {
	idx := NewMemory()
	ctx := context.Background()

	items := []model.EvidenceItem{
		item("orthogonal", 0, 1, 0),
		item("exact", 1, 0, 0),
		item("close", 0.9, 0.1, 0),
	}
	if _, err := idx.InsertBatch(ctx, items); err != nil {
		t.Fatalf("InsertBatch failed: %v", err)
	}

	hits, err := idx.Search(ctx, []float32{1, 0, 0}, 3)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 3 {
		t.Fatalf("Expected 3 hits, got %d", len(hits))
	}

	if hits[0].Item.ID != "exact" || hits[1].Item.ID != "close" || hits[2].Item.ID != "orthogonal" {
		t.Errorf("Expected order exact, close, orthogonal; got %s, %s, %s",
			hits[0].Item.ID, hits[1].Item.ID, hits[2].Item.ID)
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].Similarity > hits[i-1].Similarity {
			t.Errorf("Expected descending similarity, got %.3f before %.3f",
				hits[i-1].Similarity, hits[i].Similarity)
		}
	}
	if math.Abs(hits[0].Similarity-1.0) > 1e-6 {
		t.Errorf("Expected exact match similarity 1.0, got %.6f", hits[0].Similarity)
	}
}

func TestMemory_SearchTieBreakByInsertionOrder(t *testing.T) {
	idx := NewMemory()
	ctx := context.Background()

	// Identical embeddings tie exactly; the earlier insert must win.
	if _, err := idx.InsertBatch(ctx, []model.EvidenceItem{
		item("second-best", 0, 1),
		item("first-tied", 1, 0),
		item("second-tied", 1, 0),
	}); err != nil {
		t.Fatalf("InsertBatch failed: %v", err)
	}

	hits, err := idx.Search(ctx, []float32{1, 0}, 3)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if hits[0].Item.ID != "first-tied" {
		t.Errorf("Expected earlier insert to win the tie, got '%s'", hits[0].Item.ID)
	}
	if hits[1].Item.ID != "second-tied" {
		t.Errorf("Expected later tied item second, got '%s'", hits[1].Item.ID)
	}
}

func TestMemory_SearchReturnsAtMostK(t *testing.T) {
	idx := NewMemory()
	ctx := context.Background()

	if _, err := idx.InsertBatch(ctx, []model.EvidenceItem{
		item("a", 1, 0),
		item("b", 0.5, 0.5),
	}); err != nil {
		t.Fatalf("InsertBatch failed: %v", err)
	}

	hits, err := idx.Search(ctx, []float32{1, 0}, 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 2 {
		t.Errorf("Expected 2 hits when index holds 2 items, got %d", len(hits))
	}

	hits, err = idx.Search(ctx, []float32{1, 0}, 1)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 1 {
		t.Errorf("Expected 1 hit for k=1, got %d", len(hits))
	}
}

func TestMemory_ConcurrentReaders(t *testing.T) {
	idx := NewMemory()
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		if err := idx.Insert(ctx, item(string(rune('a'+i%26))+"x", float32(i), float32(50-i))); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	var wg sync.WaitGroup
	errc := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				if _, err := idx.Search(ctx, []float32{1, 1}, 5); err != nil {
					errc <- err
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errc)

	for err := range errc {
		t.Errorf("Concurrent search failed: %v", err)
	}
}

func TestMemory_ClearResetsDimension(t *testing.T) {
	idx := NewMemory()
	ctx := context.Background()

	if err := idx.Insert(ctx, item("a", 1, 0, 0)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := idx.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	if idx.Len() != 0 {
		t.Errorf("Expected empty index after clear, got %d items", idx.Len())
	}
	if err := idx.Insert(ctx, item("b", 1, 0)); err != nil {
		t.Errorf("Expected new dimension to be accepted after clear, got %v", err)
	}
}

func TestCosine_ZeroVector(t *testing.T) {
	if c := Cosine([]float32{0, 0}, []float32{1, 0}); c != 0 {
		t.Errorf("Expected zero-norm vector to score 0, got %.3f", c)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	idx := NewMemory()
	ctx := context.Background()

	items := []model.EvidenceItem{
		{ID: "doc1_p0", Text: "The Eiffel Tower is in Paris.", Embedding: []float32{0.8, 0.1, 0.2}, Source: model.SourceRef{Origin: "doc1.txt", Chunk: 0}},
		{ID: "doc1_p1", Text: "It was completed in 1889.", Embedding: []float32{0.1, 0.9, 0.3}, Source: model.SourceRef{Origin: "doc1.txt", Chunk: 1}},
		{ID: "doc2_p0", Text: "Berlin is the capital of Germany.", Embedding: []float32{0.2, 0.3, 0.7}, Source: model.SourceRef{Origin: "doc2.txt", Chunk: 0}},
	}
	if _, err := idx.InsertBatch(ctx, items); err != nil {
		t.Fatalf("InsertBatch failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "index.json")
	if err := idx.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Len() != idx.Len() {
		t.Fatalf("Expected %d items after load, got %d", idx.Len(), loaded.Len())
	}
	if loaded.Dimension() != idx.Dimension() {
		t.Errorf("Expected dimension %d, got %d", idx.Dimension(), loaded.Dimension())
	}

	orig := idx.Items()
	restored := loaded.Items()
	for i := range orig {
		if restored[i].ID != orig[i].ID || restored[i].Text != orig[i].Text {
			t.Errorf("Item %d changed across round-trip: %+v vs %+v", i, orig[i], restored[i])
		}
	}

	query := []float32{0.5, 0.5, 0.1}
	before, err := idx.Search(ctx, query, 3)
	if err != nil {
		t.Fatalf("Search before save failed: %v", err)
	}
	after, err := loaded.Search(ctx, query, 3)
	if err != nil {
		t.Fatalf("Search after load failed: %v", err)
	}
	for i := range before {
		if before[i].Item.ID != after[i].Item.ID {
			t.Errorf("Result %d differs after round-trip: %s vs %s", i, before[i].Item.ID, after[i].Item.ID)
		}
		if math.Abs(before[i].Similarity-after[i].Similarity) > 1e-9 {
			t.Errorf("Similarity %d differs after round-trip: %v vs %v", i, before[i].Similarity, after[i].Similarity)
		}
	}
}

func TestLoad_RejectsCorruptArtifacts(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("Expected error for missing file")
	}
}
