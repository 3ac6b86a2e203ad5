package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/veridict/veridict/internal/model"
)

const artifactVersion = 1

// artifact is the on-disk shape of a saved memory index
type artifact struct {
	Version   int                  `json:"version"`
	Dimension int                  `json:"dimension"`
	Count     int                  `json:"count"`
	Items     []model.EvidenceItem `json:"items"`
}

// Save writes the full index state to path. Loading the artifact yields
// an index whose search results are identical to this one for any query.
func (m *Memory) Save(path string) error {
	m.mu.RLock()
	art := artifact{
		Version:   artifactVersion,
		Dimension: m.dim,
		Count:     len(m.items),
		Items:     m.items,
	}
	data, err := json.Marshal(art)
	m.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("encode index: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create index dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	return nil
}

// Load reads a saved artifact into a fresh memory index, preserving item
// order and dimensionality
func Load(path string) (*Memory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}

	var art artifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("decode index: %w", err)
	}
	if art.Version != artifactVersion {
		return nil, fmt.Errorf("unsupported index version %d", art.Version)
	}
	if art.Count != len(art.Items) {
		return nil, fmt.Errorf("index artifact corrupt: count %d, items %d", art.Count, len(art.Items))
	}
	for i, item := range art.Items {
		if len(item.Embedding) != art.Dimension {
			return nil, fmt.Errorf("index artifact corrupt: item %d (%s) has dimension %d, expected %d",
				i, item.ID, len(item.Embedding), art.Dimension)
		}
	}

	m := NewMemory()
	m.items = art.Items
	if len(art.Items) > 0 {
		m.dim = art.Dimension
	}
	return m, nil
}
