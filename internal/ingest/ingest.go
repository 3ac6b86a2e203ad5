package ingest

import (
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/veridict/veridict/internal/embed"
	"github.com/veridict/veridict/internal/index"
	"github.com/veridict/veridict/internal/model"
	"github.com/veridict/veridict/internal/util"
)

// SourceError records a source that could not be loaded. One bad source
// never aborts an ingest run.
type SourceError struct {
	Source string
	Err    error
}

// Stats summarizes one ingest run
type Stats struct {
	Sources int
	Chunks  int
	Indexed int
	Errors  []SourceError
}

// Ingester embeds corpus chunks and inserts them into the index
type Ingester struct {
	provider embed.Provider
	idx      index.Index
	loader   *Loader
	fetcher  *Fetcher
	logger   *util.Logger
}

// New creates an ingester writing into idx
func New(provider embed.Provider, idx index.Index, cfg model.IngestConfig, logger *util.Logger) *Ingester {
	return &Ingester{
		provider: provider,
		idx:      idx,
		loader:   NewLoader(cfg.ChunkSize),
		fetcher:  NewFetcher(cfg),
		logger:   logger,
	}
}

// Ingest loads each source (URL, directory, or file), embeds the chunks,
// and inserts them. Sources that fail to load are recorded in the stats
// and skipped; an embedding or index failure aborts the run because the
// remaining sources would fail the same way.
func (in *Ingester) Ingest(ctx context.Context, sources []string) (Stats, error) {
	stats := Stats{Sources: len(sources)}

	var chunks []Chunk
	for _, source := range sources {
		loaded, err := in.load(ctx, source)
		if err != nil {
			in.logger.Warnf("skipping %s: %v", source, err)
			stats.Errors = append(stats.Errors, SourceError{Source: source, Err: err})
			continue
		}
		in.logger.Verbosef("loaded %s: %d chunks", source, len(loaded))
		chunks = append(chunks, loaded...)
	}
	stats.Chunks = len(chunks)
	if len(chunks) == 0 {
		return stats, nil
	}

	items, err := in.embedChunks(ctx, chunks)
	if err != nil {
		return stats, err
	}

	n, err := in.idx.InsertBatch(ctx, items)
	stats.Indexed = n
	if err != nil {
		return stats, fmt.Errorf("index: %w", err)
	}
	return stats, nil
}

func (in *Ingester) load(ctx context.Context, source string) ([]Chunk, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return in.fetcher.Fetch(ctx, source)
	}

	info, err := os.Stat(source)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return in.loader.LoadDir(ctx, source)
	}
	return in.loader.LoadFile(source)
}

// embedChunks embeds all chunks concurrently, preserving chunk order
func (in *Ingester) embedChunks(ctx context.Context, chunks []Chunk) ([]model.EvidenceItem, error) {
	items := make([]model.EvidenceItem, len(chunks))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, chunk := range chunks {
		g.Go(func() error {
			vec, err := in.provider.Embed(ctx, chunk.Text)
			if err != nil {
				return fmt.Errorf("embed chunk %s: %w", chunk.ID, err)
			}
			items[i] = model.EvidenceItem{
				ID:        chunk.ID,
				Text:      chunk.Text,
				Embedding: vec,
				Source:    chunk.Source,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}
