// Package pipeline orchestrates the complete verification flow: claim
// extraction, evidence retrieval, per-claim verification, truthfulness
// scoring, and highlight projection.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/veridict/veridict/internal/embed"
	"github.com/veridict/veridict/internal/extract"
	"github.com/veridict/veridict/internal/highlight"
	"github.com/veridict/veridict/internal/index"
	"github.com/veridict/veridict/internal/llm"
	"github.com/veridict/veridict/internal/model"
	"github.com/veridict/veridict/internal/retrieve"
	"github.com/veridict/veridict/internal/score"
	"github.com/veridict/veridict/internal/util"
	"github.com/veridict/veridict/internal/verify"
	"github.com/veridict/veridict/internal/worker"
)

// ErrNoGenerator is returned by GenerateAndVerify when no language model
// provider is configured
var ErrNoGenerator = errors.New("no language model provider configured")

// Pipeline runs the complete verification process for one answer
type Pipeline struct {
	extractor   extract.Extractor
	verifier    *verify.Verifier
	scorer      *score.Scorer
	highlighter *highlight.Highlighter
	generator   llm.Provider // Optional answer generator (nil if disabled)
	logger      *util.Logger

	workers int
	timeout time.Duration
}

// New wires a pipeline from configuration. The embedding provider and
// index are passed in because the caller owns their lifecycle: the index
// may be freshly ingested, loaded from disk, or remote.
func New(cfg model.Config, provider embed.Provider, idx index.Index, logger *util.Logger) *Pipeline {
	var generator llm.Provider
	if cfg.LLM.Provider != "" && cfg.LLM.Provider != "none" {
		g, err := llm.NewProvider(cfg.LLM)
		if err != nil {
			logger.Warnf("language model provider disabled: %v", err)
		} else {
			generator = g
		}
	}

	retriever := retrieve.New(provider, idx, cfg.Retrieval)

	return &Pipeline{
		extractor:   extract.NewHeuristic(cfg.Extraction),
		verifier:    verify.New(retriever, cfg.Verification, cfg.Retrieval.TopK),
		scorer:      score.NewScorer(cfg.Scoring),
		highlighter: highlight.New(cfg.Highlight),
		generator:   generator,
		logger:      logger,
		workers:     cfg.Workers,
		timeout:     cfg.Timeout,
	}
}

// SetExtractor replaces the claim extractor. The pipeline only depends
// on the Extractor interface; the heuristic extractor is the default.
func (p *Pipeline) SetExtractor(e extract.Extractor) {
	if e != nil {
		p.extractor = e
	}
}

// Verify extracts claims from the answer, verifies them concurrently
// against the evidence corpus, and aggregates the outcome. The answer
// text is never mutated. When the per-answer budget expires, claims
// already verified keep their records and the rest are reported as
// unsupported with reasoning noting the timeout.
func (p *Pipeline) Verify(ctx context.Context, question, answer string) (*model.Result, error) {
	started := time.Now()

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	claims := p.extractor.Extract(answer)
	p.logger.Verbosef("extracted %d claims", len(claims))

	result := &model.Result{
		Question: question,
		Answer:   answer,
		RunAt:    time.Now().UTC(),
		Claims:   claims,
	}

	if len(claims) == 0 {
		result.Records = []model.VerificationRecord{}
		result.Report = p.scorer.Score(nil)
		result.Highlights = p.highlighter.Highlight(answer, nil)
		result.Elapsed = time.Since(started)
		return result, nil
	}

	records := p.verifyClaims(ctx, claims, result)

	// Join barrier is behind us: scoring and highlighting see the full
	// record set exactly once.
	result.Records = records
	result.Report = p.scorer.Score(records)
	result.Highlights = p.highlighter.Highlight(answer, records)
	result.Elapsed = time.Since(started)
	return result, nil
}

// verifyClaims fans claims out over a bounded set of goroutines. Every
// claim gets exactly one record slot; failures fill the slot with an
// unsupported placeholder and ride along as claim errors.
func (p *Pipeline) verifyClaims(ctx context.Context, claims []model.Claim, result *model.Result) []model.VerificationRecord {
	records := make([]model.VerificationRecord, len(claims))
	claimErrs := make([]*model.ClaimError, len(claims))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, p.workers)

	for i, claim := range claims {
		wg.Add(1)
		go func(idx int, c model.Claim) {
			defer wg.Done()

			if ctx.Err() != nil {
				records[idx] = placeholderRecord(idx, c,
					"Verification timed out before this claim could be checked.")
				return
			}

			select {
			case <-ctx.Done():
				records[idx] = placeholderRecord(idx, c,
					"Verification timed out before this claim could be checked.")
				return
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			rec, err := p.verifier.Verify(ctx, idx, c)
			if err != nil {
				if ctx.Err() != nil {
					records[idx] = placeholderRecord(idx, c,
						"Verification timed out before this claim could be checked.")
					return
				}
				records[idx] = placeholderRecord(idx, c,
					fmt.Sprintf("Verification failed: %v.", err))
				claimErrs[idx] = &model.ClaimError{
					ClaimIndex: idx,
					Claim:      c.Text,
					Error:      err.Error(),
				}
				return
			}
			records[idx] = rec
		}(i, claim)
	}

	wg.Wait()

	for _, ce := range claimErrs {
		if ce != nil {
			p.logger.Warnf("claim %d: %s", ce.ClaimIndex, ce.Error)
			result.Errors = append(result.Errors, *ce)
		}
	}
	return records
}

// placeholderRecord stands in for a claim that could not be verified
func placeholderRecord(idx int, c model.Claim, reasoning string) model.VerificationRecord {
	return model.VerificationRecord{
		ClaimIndex: idx,
		Claim:      c.Text,
		Status:     model.StatusUnsupported,
		Confidence: 0,
		Reasoning:  reasoning,
	}
}

// BatchVerify verifies many question/answer pairs concurrently. Output
// order matches input order; a failing pair carries its own error and
// never aborts the batch.
func (p *Pipeline) BatchVerify(ctx context.Context, pairs []worker.Pair) []*worker.VerifyOutcome {
	processor := worker.NewBatchProcessor(p, p.workers)
	return processor.ProcessPairs(ctx, pairs)
}

// GenerateAndVerify asks the configured language model to answer the
// question, then verifies the generated answer like any other
func (p *Pipeline) GenerateAndVerify(ctx context.Context, question string) (*model.Result, error) {
	if p.generator == nil {
		return nil, ErrNoGenerator
	}

	p.logger.Verbosef("generating answer with %s (%s)", p.generator.Name(), p.generator.Model())
	answer, err := p.generator.Generate(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	result, err := p.Verify(ctx, question, answer)
	if err != nil {
		return nil, err
	}
	result.Generated = &model.Generated{
		Provider: p.generator.Name(),
		Model:    p.generator.Model(),
	}
	return result, nil
}

// HasGenerator reports whether an answer generator is configured
func (p *Pipeline) HasGenerator() bool { return p.generator != nil }
