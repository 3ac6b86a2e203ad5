// Package ingest loads trusted source material into the evidence index.
// Sources are local files, directories, or URLs; each becomes a sequence
// of bounded text chunks with stable IDs.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/veridict/veridict/internal/model"
	"github.com/veridict/veridict/internal/util"
)

// Chunk is one unit of corpus text headed for the index
type Chunk struct {
	ID     string
	Text   string
	Source model.SourceRef
}

// Loader reads local files into chunks
type Loader struct {
	chunkSize int
}

// NewLoader creates a loader that bounds chunks to chunkSize characters
func NewLoader(chunkSize int) *Loader {
	if chunkSize <= 0 {
		chunkSize = 1200
	}
	return &Loader{chunkSize: chunkSize}
}

// LoadFile reads one file into chunks. Plain text and markdown are split
// on paragraphs, JSON files carry pre-chunked documents, and HTML is
// stripped to text first.
func (l *Loader) LoadFile(path string) ([]Chunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md":
		return l.chunkParagraphs(name, path, string(data)), nil
	case ".json":
		return l.loadJSON(name, path, data)
	case ".html", ".htm":
		text, err := htmlToText(data)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return l.chunkParagraphs(name, path, text), nil
	default:
		return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}
}

// LoadDir walks a directory tree and loads every supported file
// concurrently. Unsupported files are skipped; a file that fails to parse
// fails the whole load. Chunk order follows sorted file paths, so repeat
// runs produce identical IDs.
func (l *Loader) LoadDir(ctx context.Context, dir string) ([]Chunk, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".txt", ".md", ".json", ".html", ".htm":
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	sort.Strings(paths)

	// Each goroutine owns one slot, so no lock is needed
	perFile := make([][]Chunk, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			chunks, err := l.LoadFile(path)
			if err != nil {
				return err
			}
			perFile[i] = chunks
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []Chunk
	for _, chunks := range perFile {
		all = append(all, chunks...)
	}
	return all, nil
}

// chunkParagraphs groups paragraphs into chunks of at most chunkSize
// characters. A single paragraph longer than the budget is split at
// sentence boundaries.
func (l *Loader) chunkParagraphs(name, origin, text string) []Chunk {
	var pieces []string
	var current strings.Builder

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			pieces = append(pieces, s)
		}
		current.Reset()
	}

	for _, para := range splitParagraphs(text) {
		if len(para) > l.chunkSize {
			flush()
			pieces = append(pieces, splitLongParagraph(para, l.chunkSize)...)
			continue
		}
		if current.Len() > 0 && current.Len()+len(para)+1 > l.chunkSize {
			flush()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(para)
	}
	flush()

	chunks := make([]Chunk, 0, len(pieces))
	for i, piece := range pieces {
		chunks = append(chunks, Chunk{
			ID:     fmt.Sprintf("%s_p%d", name, i),
			Text:   piece,
			Source: model.SourceRef{Origin: origin, Chunk: i},
		})
	}
	return chunks
}

// splitParagraphs breaks text on blank lines and normalizes whitespace
func splitParagraphs(text string) []string {
	var paras []string
	for _, block := range strings.Split(text, "\n\n") {
		if p := util.CleanText(block); p != "" {
			paras = append(paras, p)
		}
	}
	return paras
}

// splitLongParagraph packs sentences into pieces of at most max characters
func splitLongParagraph(para string, max int) []string {
	var pieces []string
	var current strings.Builder

	for _, sentence := range util.SplitSentences(para) {
		if current.Len() > 0 && current.Len()+len(sentence)+1 > max {
			pieces = append(pieces, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(sentence)
	}
	if current.Len() > 0 {
		pieces = append(pieces, current.String())
	}
	return pieces
}

type jsonDoc struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Origin string `json:"origin"`
}

// loadJSON accepts an array of strings, an array of {id, text, origin}
// objects, or a {documents: [...]} wrapper around either. Explicit IDs
// are kept; missing ones fall back to positional.
func (l *Loader) loadJSON(name, origin string, data []byte) ([]Chunk, error) {
	var wrapper struct {
		Documents json.RawMessage `json:"documents"`
	}
	if err := json.Unmarshal(data, &wrapper); err == nil && wrapper.Documents != nil {
		data = wrapper.Documents
	}

	var texts []string
	if err := json.Unmarshal(data, &texts); err == nil {
		chunks := make([]Chunk, 0, len(texts))
		for i, text := range texts {
			chunks = append(chunks, Chunk{
				ID:     fmt.Sprintf("%s_p%d", name, i),
				Text:   util.CleanText(text),
				Source: model.SourceRef{Origin: origin, Chunk: i},
			})
		}
		return chunks, nil
	}

	var docs []jsonDoc
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("parse %s: expected an array of strings or {id, text} objects: %w", origin, err)
	}

	chunks := make([]Chunk, 0, len(docs))
	for i, doc := range docs {
		id := doc.ID
		if id == "" {
			id = fmt.Sprintf("%s_p%d", name, i)
		}
		docOrigin := doc.Origin
		if docOrigin == "" {
			docOrigin = origin
		}
		chunks = append(chunks, Chunk{
			ID:     id,
			Text:   util.CleanText(doc.Text),
			Source: model.SourceRef{Origin: docOrigin, Chunk: i},
		})
	}
	return chunks, nil
}
