package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/veridict/veridict/internal/model"
	"github.com/veridict/veridict/internal/util"
	"github.com/veridict/veridict/internal/worker"
)

// ErrDisallowed is returned when robots.txt forbids fetching a URL.
// The source is skipped; the rest of the ingest continues.
var ErrDisallowed = errors.New("disallowed by robots.txt")

// Fetcher pulls web pages into chunks, honoring robots.txt and a
// per-domain request rate
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	robots     *util.RobotsChecker
	limiter    *worker.Limiter
	loader     *Loader
}

// NewFetcher creates a fetcher from ingest configuration
func NewFetcher(cfg model.IngestConfig) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent: cfg.UserAgent,
		maxBytes:  cfg.MaxBodyBytes,
		robots:    util.NewRobotsChecker(cfg.UserAgent, cfg.Timeout),
		limiter:   worker.NewLimiter(cfg.RequestsPerSecond, 1),
		loader:    NewLoader(cfg.ChunkSize),
	}
}

// Fetch retrieves one URL and converts the page to chunks. Chunk IDs are
// fresh UUIDs; the source origin records the final URL after redirects.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]Chunk, error) {
	allowed, delay, err := f.robots.CanFetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, fmt.Errorf("%w: %s", ErrDisallowed, rawURL)
	}

	if err := f.limiter.WaitWithDelay(ctx, rawURL, delay); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.8")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	finalURL := resp.Request.URL.String()

	text := string(body)
	if strings.Contains(resp.Header.Get("Content-Type"), "html") {
		text, err = htmlToText(body)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", finalURL, err)
		}
	}

	chunks := f.loader.chunkParagraphs("page", finalURL, text)
	for i := range chunks {
		chunks[i].ID = uuid.NewString()
		chunks[i].Source = model.SourceRef{Origin: finalURL, Chunk: i}
	}
	return chunks, nil
}
