package verify

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/veridict/veridict/internal/embed"
	"github.com/veridict/veridict/internal/index"
	"github.com/veridict/veridict/internal/model"
	"github.com/veridict/veridict/internal/retrieve"
)

// stubRetriever returns a canned retrieval result
type stubRetriever struct {
	result model.RetrievalResult
	err    error
}

func (s stubRetriever) Retrieve(ctx context.Context, claimText string, k int) (model.RetrievalResult, error) {
	return s.result, s.err
}

func verificationConfig() model.VerificationConfig {
	return model.VerificationConfig{
		Alpha:                0.7,
		SupportThreshold:     0.7,
		ConflictThreshold:    0.5,
		UncertaintyThreshold: 0.4,
	}
}

// newCorpusVerifier builds a verifier over a real local-embedding index
func newCorpusVerifier(t *testing.T, docs ...string) *Verifier {
	t.Helper()
	provider := embed.NewLocal(128)
	idx := index.NewMemory()
	for i, doc := range docs {
		vec, err := provider.Embed(context.Background(), doc)
		if err != nil {
			t.Fatalf("embed doc: %v", err)
		}
		err = idx.Insert(context.Background(), model.EvidenceItem{
			ID: fmt.Sprintf("doc%d", i), Text: doc, Embedding: vec,
		})
		if err != nil {
			t.Fatalf("insert doc: %v", err)
		}
	}
	retriever := retrieve.New(provider, idx, model.RetrievalConfig{
		TopK: 5, RetryAttempts: 1, RetryBackoff: time.Millisecond,
	})
	return New(retriever, verificationConfig(), 5)
}

func TestVerifier_SupportedClaim(t *testing.T) {
	v := newCorpusVerifier(t, "The Eiffel Tower is in Paris.")

	record, err := v.Verify(context.Background(), 0, model.Claim{Text: "The Eiffel Tower is located in Paris"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if record.Status != model.StatusSupported {
		t.Errorf("Expected supported, got %s (confidence %.3f)", record.Status, record.Confidence)
	}
	if record.BestEvidenceID != "doc0" {
		t.Errorf("Expected doc0 as best evidence, got %q", record.BestEvidenceID)
	}
	if record.Confidence < 0.7 || record.Confidence > 1 {
		t.Errorf("Expected confidence in [0.7,1], got %.3f", record.Confidence)
	}
}

func TestVerifier_EntitySubstitutionConflicts(t *testing.T) {
	v := newCorpusVerifier(t, "The Eiffel Tower is in Paris.")

	record, err := v.Verify(context.Background(), 0, model.Claim{Text: "The Eiffel Tower is in Berlin"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if record.Status != model.StatusConflicting {
		t.Errorf("Expected conflicting, got %s", record.Status)
	}
	if record.ConflictingEvidenceID != "doc0" {
		t.Errorf("Expected doc0 as conflicting evidence, got %q", record.ConflictingEvidenceID)
	}
}

func TestVerifier_NegationMismatchConflicts(t *testing.T) {
	v := newCorpusVerifier(t, "The vaccine is not effective against the new variant.")

	record, err := v.Verify(context.Background(), 0, model.Claim{Text: "The vaccine is effective against the new variant"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if record.Status != model.StatusConflicting {
		t.Errorf("Expected conflicting on polarity mismatch, got %s", record.Status)
	}
}

func TestVerifier_EmptyIndexDegradesToUnsupported(t *testing.T) {
	provider := embed.NewLocal(128)
	retriever := retrieve.New(provider, index.NewMemory(), model.RetrievalConfig{
		TopK: 5, RetryAttempts: 1, RetryBackoff: time.Millisecond,
	})
	v := New(retriever, verificationConfig(), 5)

	record, err := v.Verify(context.Background(), 0, model.Claim{Text: "Anything at all"})
	if err != nil {
		t.Fatalf("Expected degradation, not error, got %v", err)
	}
	if record.Status != model.StatusUnsupported {
		t.Errorf("Expected unsupported, got %s", record.Status)
	}
	if record.Confidence != 0 {
		t.Errorf("Expected confidence 0, got %.3f", record.Confidence)
	}
}

func TestVerifier_NoHitsDegradesToUnsupported(t *testing.T) {
	// Remote backends can return an empty hit list without an error even
	// when the index holds documents.
	for _, hits := range [][]model.Hit{nil, {}} {
		retriever := stubRetriever{result: model.RetrievalResult{Hits: hits}}
		v := New(retriever, verificationConfig(), 5)

		record, err := v.Verify(context.Background(), 0, model.Claim{Text: "The Eiffel Tower is in Paris"})
		if err != nil {
			t.Fatalf("Expected degradation, not error, got %v", err)
		}
		if record.Status != model.StatusUnsupported {
			t.Errorf("Expected unsupported, got %s", record.Status)
		}
		if record.Confidence != 0 {
			t.Errorf("Expected confidence 0, got %.3f", record.Confidence)
		}
		if record.BestEvidenceID != "" {
			t.Errorf("Expected no best evidence, got %q", record.BestEvidenceID)
		}
	}
}

func TestVerifier_EmptyClaimIsInvalid(t *testing.T) {
	v := newCorpusVerifier(t, "Some document.")

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := v.Verify(context.Background(), 0, model.Claim{Text: text})
		if !errors.Is(err, ErrInvalidClaim) {
			t.Errorf("Expected ErrInvalidClaim for %q, got %v", text, err)
		}
	}
}

func TestVerifier_ThresholdClassification(t *testing.T) {
	tests := []struct {
		name       string
		similarity float64
		want       model.Status
	}{
		{"high similarity is supported", 1.0, model.StatusSupported},
		{"moderate similarity is partial", 0.62, model.StatusPartiallySupported},
		{"low similarity is unsupported", 0.3, model.StatusUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Evidence text shares no tokens with the claim, so lexical
			// overlap is 0 and combined = alpha * similarity.
			retriever := stubRetriever{result: model.RetrievalResult{
				Claim: "quarterly revenue rose sharply",
				Hits: []model.Hit{{
					Item:       model.EvidenceItem{ID: "e1", Text: "zebra walks backwards", Embedding: []float32{1}},
					Similarity: tt.similarity,
				}},
			}}
			v := New(retriever, verificationConfig(), 5)

			record, err := v.Verify(context.Background(), 0, model.Claim{Text: "quarterly revenue rose sharply"})
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if record.Status != tt.want {
				t.Errorf("Expected %s at similarity %.2f, got %s (confidence %.3f)",
					tt.want, tt.similarity, record.Status, record.Confidence)
			}
		})
	}
}

func TestVerifier_ConfidenceClampedToUnitInterval(t *testing.T) {
	retriever := stubRetriever{result: model.RetrievalResult{
		Hits: []model.Hit{{
			Item:       model.EvidenceItem{ID: "e1", Text: "unrelated words entirely", Embedding: []float32{1}},
			Similarity: -0.8,
		}},
	}}
	v := New(retriever, verificationConfig(), 5)

	record, err := v.Verify(context.Background(), 0, model.Claim{Text: "negative similarity claim"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if record.Confidence != 0 {
		t.Errorf("Expected confidence clamped to 0, got %.3f", record.Confidence)
	}
	if record.Status != model.StatusUnsupported {
		t.Errorf("Expected unsupported, got %s", record.Status)
	}
}

func TestVerifier_TieBreakKeepsEarlierEvidence(t *testing.T) {
	hit := func(id string) model.Hit {
		return model.Hit{
			Item:       model.EvidenceItem{ID: id, Text: "identical evidence text", Embedding: []float32{1}},
			Similarity: 0.45,
		}
	}
	retriever := stubRetriever{result: model.RetrievalResult{Hits: []model.Hit{hit("first"), hit("second")}}}
	v := New(retriever, verificationConfig(), 5)

	record, err := v.Verify(context.Background(), 0, model.Claim{Text: "some other wording"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if record.BestEvidenceID != "first" {
		t.Errorf("Expected earlier item to win the tie, got %q", record.BestEvidenceID)
	}
}

func TestVerifier_IdempotentAcrossCalls(t *testing.T) {
	v := newCorpusVerifier(t,
		"The Eiffel Tower is in Paris.",
		"Mount Everest is the tallest mountain on Earth.",
	)
	claim := model.Claim{Text: "The Eiffel Tower is located in Paris"}

	first, err := v.Verify(context.Background(), 0, claim)
	if err != nil {
		t.Fatalf("first verify: %v", err)
	}
	second, err := v.Verify(context.Background(), 0, claim)
	if err != nil {
		t.Fatalf("second verify: %v", err)
	}

	if first.Status != second.Status {
		t.Errorf("Expected identical status, got %s then %s", first.Status, second.Status)
	}
	if first.Confidence != second.Confidence {
		t.Errorf("Expected identical confidence, got %.6f then %.6f", first.Confidence, second.Confidence)
	}
	if first.BestEvidenceID != second.BestEvidenceID {
		t.Errorf("Expected identical best evidence, got %q then %q", first.BestEvidenceID, second.BestEvidenceID)
	}
}
