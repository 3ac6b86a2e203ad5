package index

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sync"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/veridict/veridict/internal/model"
)

const insertBatchSize = 100

// Weaviate is an Index backed by a remote Weaviate class with external
// vectors (vectorizer "none"). Object IDs derive from evidence item IDs,
// so re-ingesting a corpus upserts instead of duplicating. Equal-score
// ordering follows the remote backend rather than insertion order; the
// class persists between runs, so Save/Load does not apply.
type Weaviate struct {
	client *weaviate.Client
	class  string

	mu  sync.Mutex
	dim int
}

// NewWeaviate connects to host and ensures the evidence class exists
func NewWeaviate(ctx context.Context, host, scheme, class string) (*Weaviate, error) {
	client, err := weaviate.NewClient(weaviate.Config{
		Host:   host,
		Scheme: scheme,
	})
	if err != nil {
		return nil, fmt.Errorf("weaviate client: %w", err)
	}

	w := &Weaviate{client: client, class: class}
	if err := w.ensureClass(ctx); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Weaviate) ensureClass(ctx context.Context) error {
	if _, err := w.client.Schema().ClassGetter().WithClassName(w.class).Do(ctx); err == nil {
		return nil
	}

	class := &models.Class{
		Class:      w.class,
		Vectorizer: "none",
		Properties: []*models.Property{
			{Name: "itemId", DataType: []string{"text"}, Tokenization: "field"},
			{Name: "text", DataType: []string{"text"}},
			{Name: "origin", DataType: []string{"text"}, Tokenization: "field"},
			{Name: "chunk", DataType: []string{"int"}},
		},
	}
	if err := w.client.Schema().ClassCreator().WithClass(class).Do(ctx); err != nil {
		return fmt.Errorf("create class %s: %w", w.class, err)
	}
	return nil
}

// Insert adds one item
func (w *Weaviate) Insert(ctx context.Context, item model.EvidenceItem) error {
	_, err := w.InsertBatch(ctx, []model.EvidenceItem{item})
	return err
}

// InsertBatch imports items in fixed-size batches, stopping at the first
// failure and reporting how many objects were accepted
func (w *Weaviate) InsertBatch(ctx context.Context, items []model.EvidenceItem) (int, error) {
	inserted := 0
	for start := 0; start < len(items); start += insertBatchSize {
		if err := ctx.Err(); err != nil {
			return inserted, err
		}

		end := start + insertBatchSize
		if end > len(items) {
			end = len(items)
		}

		objects := make([]*models.Object, 0, end-start)
		for i, item := range items[start:end] {
			if err := w.checkDimension(len(item.Embedding)); err != nil {
				return inserted, fmt.Errorf("item %d (%s): %w", start+i, item.ID, err)
			}
			objects = append(objects, &models.Object{
				Class:  w.class,
				ID:     objectID(item.ID),
				Vector: item.Embedding,
				Properties: map[string]interface{}{
					"itemId": item.ID,
					"text":   item.Text,
					"origin": item.Source.Origin,
					"chunk":  item.Source.Chunk,
				},
			})
		}

		resp, err := w.client.Batch().ObjectsBatcher().WithObjects(objects...).Do(ctx)
		if err != nil {
			return inserted, fmt.Errorf("batch import: %w", err)
		}
		for _, obj := range resp {
			if obj.Result != nil && obj.Result.Errors != nil {
				return inserted, fmt.Errorf("batch import rejected object: %v", obj.Result.Errors)
			}
			inserted++
		}
	}
	return inserted, nil
}

func (w *Weaviate) checkDimension(got int) error {
	if got == 0 {
		return fmt.Errorf("%w: item has no embedding", ErrDimensionMismatch)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.dim == 0 {
		w.dim = got
	}
	if got != w.dim {
		return fmt.Errorf("%w: got %d, index dimension is %d", ErrDimensionMismatch, got, w.dim)
	}
	return nil
}

// Search runs a nearVector query and maps certainty back to cosine
// similarity (certainty = (1+cosine)/2 for the cosine metric)
func (w *Weaviate) Search(ctx context.Context, query []float32, k int) ([]model.Hit, error) {
	count, err := w.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrEmptyIndex
	}
	if dim := w.Dimension(); dim != 0 && len(query) != dim {
		return nil, fmt.Errorf("%w: query has %d, index dimension is %d", ErrDimensionMismatch, len(query), dim)
	}

	nearVector := w.client.GraphQL().NearVectorArgBuilder().WithVector(query)
	fields := []graphql.Field{
		{Name: "itemId"},
		{Name: "text"},
		{Name: "origin"},
		{Name: "chunk"},
		{Name: "_additional", Fields: []graphql.Field{
			{Name: "certainty"},
			{Name: "vector"},
		}},
	}

	result, err := w.client.GraphQL().Get().
		WithClassName(w.class).
		WithFields(fields...).
		WithNearVector(nearVector).
		WithLimit(k).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("weaviate search: %w", err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("weaviate search: %s", result.Errors[0].Message)
	}

	data, ok := result.Data["Get"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("weaviate search: response has no Get section")
	}
	objects, ok := data[w.class].([]interface{})
	if !ok {
		return nil, fmt.Errorf("weaviate search: response has no %s results", w.class)
	}

	hits := make([]model.Hit, 0, len(objects))
	for _, obj := range objects {
		m, ok := obj.(map[string]interface{})
		if !ok {
			continue
		}

		item := model.EvidenceItem{
			ID:   getString(m, "itemId"),
			Text: getString(m, "text"),
			Source: model.SourceRef{
				Origin: getString(m, "origin"),
				Chunk:  int(getFloat(m, "chunk")),
			},
		}

		var certainty float64
		if add, ok := m["_additional"].(map[string]interface{}); ok {
			certainty = getFloat(add, "certainty")
			if raw, ok := add["vector"].([]interface{}); ok {
				item.Embedding = make([]float32, 0, len(raw))
				for _, v := range raw {
					if f, ok := v.(float64); ok {
						item.Embedding = append(item.Embedding, float32(f))
					}
				}
			}
		}

		hits = append(hits, model.Hit{
			Item:       item,
			Similarity: 2*certainty - 1,
		})
	}
	return hits, nil
}

// Count reports the number of objects in the evidence class
func (w *Weaviate) Count(ctx context.Context) (int, error) {
	result, err := w.client.GraphQL().Aggregate().
		WithClassName(w.class).
		WithFields(graphql.Field{
			Name:   "meta",
			Fields: []graphql.Field{{Name: "count"}},
		}).
		Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("weaviate aggregate: %w", err)
	}

	agg, ok := result.Data["Aggregate"].(map[string]interface{})
	if !ok {
		return 0, nil
	}
	groups, ok := agg[w.class].([]interface{})
	if !ok || len(groups) == 0 {
		return 0, nil
	}
	group, ok := groups[0].(map[string]interface{})
	if !ok {
		return 0, nil
	}
	meta, ok := group["meta"].(map[string]interface{})
	if !ok {
		return 0, nil
	}
	return int(getFloat(meta, "count")), nil
}

// Dimension reports the embedding length seen this session, 0 before the
// first insert
func (w *Weaviate) Dimension() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dim
}

// Clear drops and recreates the evidence class
func (w *Weaviate) Clear(ctx context.Context) error {
	if err := w.client.Schema().ClassDeleter().WithClassName(w.class).Do(ctx); err != nil {
		return fmt.Errorf("delete class %s: %w", w.class, err)
	}
	w.mu.Lock()
	w.dim = 0
	w.mu.Unlock()
	return w.ensureClass(ctx)
}

// objectID derives a stable object UUID from an evidence item ID
func objectID(itemID string) strfmt.UUID {
	hash := sha256.Sum256([]byte(itemID))
	id, _ := uuid.FromBytes(hash[:16])
	return strfmt.UUID(id.String())
}

func getString(m map[string]interface{}, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func getFloat(m map[string]interface{}, key string) float64 {
	if v, ok := m[key]; ok {
		if f, ok := v.(float64); ok {
			return f
		}
	}
	return 0
}
