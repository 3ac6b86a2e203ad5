// Package retrieve turns claim text into ranked evidence. It owns the
// only suspension points of the pipeline: the embedding provider call is
// retried with exponential backoff before retrieval is reported
// unavailable.
package retrieve

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/veridict/veridict/internal/embed"
	"github.com/veridict/veridict/internal/index"
	"github.com/veridict/veridict/internal/model"
)

// ErrRetrievalUnavailable signals that no evidence can be retrieved right
// now. Recoverable: callers mark the claim unsupported instead of
// aborting the batch.
var ErrRetrievalUnavailable = errors.New("retrieval unavailable")

// sleepFunc is the sleep used between retries (injectable for tests)
var sleepFunc = time.Sleep

// Retriever wraps the vector index behind a claim-text interface
type Retriever struct {
	provider embed.Provider
	idx      index.Index
	attempts int
	backoff  time.Duration
}

// New creates a retriever. Attempts below 1 are clamped to 1.
func New(provider embed.Provider, idx index.Index, cfg model.RetrievalConfig) *Retriever {
	attempts := cfg.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}
	return &Retriever{
		provider: provider,
		idx:      idx,
		attempts: attempts,
		backoff:  backoff,
	}
}

// Retrieve embeds the claim text and returns the top k evidence items by
// similarity. An empty index surfaces ErrRetrievalUnavailable wrapping
// index.ErrEmptyIndex.
func (r *Retriever) Retrieve(ctx context.Context, claimText string, k int) (model.RetrievalResult, error) {
	vec, err := r.embedWithRetry(ctx, claimText)
	if err != nil {
		return model.RetrievalResult{}, fmt.Errorf("%w: embed claim: %v", ErrRetrievalUnavailable, err)
	}

	hits, err := r.idx.Search(ctx, vec, k)
	if err != nil {
		if errors.Is(err, index.ErrEmptyIndex) {
			return model.RetrievalResult{}, fmt.Errorf("%w: %w", ErrRetrievalUnavailable, err)
		}
		return model.RetrievalResult{}, fmt.Errorf("search index: %w", err)
	}

	return model.RetrievalResult{Claim: claimText, Hits: hits}, nil
}

// embedWithRetry calls the embedding provider with a fixed small retry
// budget and doubling backoff. Context cancellation stops retrying
// immediately.
func (r *Retriever) embedWithRetry(ctx context.Context, text string) ([]float32, error) {
	var lastErr error
	delay := r.backoff

	for attempt := 0; attempt < r.attempts; attempt++ {
		if attempt > 0 {
			sleepFunc(delay)
			delay *= 2
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		vec, err := r.provider.Embed(ctx, text)
		if err == nil {
			return vec, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("after %d attempts: %w", r.attempts, lastErr)
}
