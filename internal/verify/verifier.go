// Package verify decides a support status per claim by fusing semantic
// similarity with lexical overlap against retrieved evidence.
//
// The conflict heuristic is a pluggable predicate. The default fires on
// evidence that is semantically close to the claim (similarity at or
// above the conflict threshold) when either the two sides disagree on
// negation cues, or the texts share most content tokens but each carries
// a small exclusive set of its own — the shape of "the Eiffel Tower is
// in Berlin" against "the Eiffel Tower is in Paris".
package verify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/veridict/veridict/internal/model"
	"github.com/veridict/veridict/internal/retrieve"
	"github.com/veridict/veridict/internal/util"
)

// ErrInvalidClaim marks a claim that cannot be verified at all (empty
// text). Fatal for that single claim only; the batch continues and the
// claim is recorded as an error entry.
var ErrInvalidClaim = errors.New("invalid claim")

// Retriever is the slice of the evidence retriever the verifier needs
type Retriever interface {
	Retrieve(ctx context.Context, claimText string, k int) (model.RetrievalResult, error)
}

// Verifier classifies claims against retrieved evidence. Stateless per
// claim; safe for concurrent use.
type Verifier struct {
	retriever Retriever
	cfg       model.VerificationConfig
	topK      int
	conflicts ConflictPredicate
}

// New creates a verifier with the default conflict predicate
func New(retriever Retriever, cfg model.VerificationConfig, topK int) *Verifier {
	return &Verifier{
		retriever: retriever,
		cfg:       cfg,
		topK:      topK,
		conflicts: DefaultConflictPredicate,
	}
}

// SetConflictPredicate replaces the contradiction heuristic
func (v *Verifier) SetConflictPredicate(p ConflictPredicate) {
	if p != nil {
		v.conflicts = p
	}
}

// Verify classifies one claim. The input claim is never mutated; the
// returned record references evidence by ID only.
func (v *Verifier) Verify(ctx context.Context, claimIndex int, claim model.Claim) (model.VerificationRecord, error) {
	text := strings.TrimSpace(claim.Text)
	if text == "" {
		return model.VerificationRecord{}, fmt.Errorf("%w: claim %d has empty text", ErrInvalidClaim, claimIndex)
	}

	record := model.VerificationRecord{
		ClaimIndex: claimIndex,
		Claim:      claim.Text,
	}

	result, err := v.retriever.Retrieve(ctx, text, v.topK)
	if err != nil {
		if errors.Is(err, retrieve.ErrRetrievalUnavailable) {
			record.Status = model.StatusUnsupported
			record.Confidence = 0
			record.Reasoning = "No supporting documents found in knowledge base."
			return record, nil
		}
		return model.VerificationRecord{}, err
	}

	// A backend may report a populated index yet return no hits for this
	// query. Degrade the same way an empty index does.
	if len(result.Hits) == 0 {
		record.Status = model.StatusUnsupported
		record.Confidence = 0
		record.Reasoning = "No supporting documents found in knowledge base."
		return record, nil
	}

	best := -1
	bestCombined := 0.0
	record.Evidence = make([]model.EvidenceScore, len(result.Hits))
	for i, hit := range result.Hits {
		lexical := util.Overlap(text, hit.Item.Text)
		combined := v.cfg.Alpha*hit.Similarity + (1-v.cfg.Alpha)*lexical
		record.Evidence[i] = model.EvidenceScore{
			ID:       hit.Item.ID,
			Semantic: hit.Similarity,
			Lexical:  lexical,
			Combined: combined,
		}
		// Strictly-greater keeps the earlier hit on ties
		if best < 0 || combined > bestCombined {
			best = i
			bestCombined = combined
		}
	}

	record.BestEvidenceID = result.Hits[best].Item.ID
	record.Confidence = clamp01(bestCombined)

	// Hits arrive in descending semantic order, so the first firing item
	// is the one with the highest semantic similarity.
	for _, hit := range result.Hits {
		if hit.Similarity < v.cfg.ConflictThreshold {
			continue
		}
		if v.conflicts(text, hit.Item.Text) {
			record.Status = model.StatusConflicting
			record.ConflictingEvidenceID = hit.Item.ID
			record.Reasoning = fmt.Sprintf("Found both supporting and conflicting evidence (%s contradicts the claim).", hit.Item.ID)
			return record, nil
		}
	}

	switch {
	case record.Confidence >= v.cfg.SupportThreshold:
		record.Status = model.StatusSupported
		record.Reasoning = "Sufficient supporting evidence found."
	case record.Confidence >= v.cfg.UncertaintyThreshold:
		record.Status = model.StatusPartiallySupported
		record.Reasoning = "Found some supporting evidence but not conclusive."
	default:
		record.Status = model.StatusUnsupported
		record.Reasoning = "Insufficient or no supporting evidence found."
	}
	return record, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
