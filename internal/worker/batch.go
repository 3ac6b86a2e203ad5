package worker

import (
	"context"
	"sort"

	"github.com/veridict/veridict/internal/model"
)

// Verifier verifies one question/answer pair. Satisfied by the
// verification pipeline; defined here so the pool does not depend on it.
type Verifier interface {
	Verify(ctx context.Context, question, answer string) (*model.Result, error)
}

// Pair is one question/answer input of a batch
type Pair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// VerifyJob verifies one pair of a batch
type VerifyJob struct {
	Index    int
	Pair     Pair
	Verifier Verifier
}

// Execute runs the verification and tags the outcome with the input index
func (j *VerifyJob) Execute(ctx context.Context) Result {
	result, err := j.Verifier.Verify(ctx, j.Pair.Question, j.Pair.Answer)
	return &VerifyOutcome{Index: j.Index, Result: result, Err: err}
}

// VerifyOutcome is the result of one batch item
type VerifyOutcome struct {
	Index  int
	Result *model.Result
	Err    error
}

// GetError returns the item's error, if any
func (o *VerifyOutcome) GetError() error { return o.Err }

// BatchProcessor fans question/answer pairs out over a worker pool.
// Output order always matches input order regardless of which answers
// finish first.
type BatchProcessor struct {
	verifier    Verifier
	concurrency int
}

// NewBatchProcessor creates a batch processor
func NewBatchProcessor(verifier Verifier, concurrency int) *BatchProcessor {
	return &BatchProcessor{verifier: verifier, concurrency: concurrency}
}

// ProcessPairs verifies all pairs concurrently. Per-item errors ride on
// the outcomes; one failing answer never aborts the batch.
func (b *BatchProcessor) ProcessPairs(ctx context.Context, pairs []Pair) []*VerifyOutcome {
	if len(pairs) == 0 {
		return []*VerifyOutcome{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	for i, pair := range pairs {
		pool.Submit(&VerifyJob{Index: i, Pair: pair, Verifier: b.verifier})
	}

	results := pool.Wait()

	outcomes := make([]*VerifyOutcome, 0, len(results))
	for _, result := range results {
		outcomes = append(outcomes, result.(*VerifyOutcome))
	}
	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].Index < outcomes[j].Index })
	return outcomes
}
