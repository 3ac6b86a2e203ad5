package extract

import (
	"strings"
	"testing"

	"github.com/veridict/veridict/internal/model"
)

func newExtractor() *Heuristic {
	return NewHeuristic(model.ExtractionConfig{MinLength: 10, MaxClaims: 20})
}

func TestHeuristic_ExtractsOrderedClaims(t *testing.T) {
	e := newExtractor()

	text := "The Eiffel Tower is in Paris. It was built in 1889. Millions of tourists visit it every year."
	claims := e.Extract(text)

	if len(claims) != 3 {
		t.Fatalf("Expected 3 claims, got %d", len(claims))
	}
	for i, claim := range claims {
		if claim.Sentence != i {
			t.Errorf("Claim %d: expected sentence index %d, got %d", i, i, claim.Sentence)
		}
		if claim.Confidence != heuristicConfidence {
			t.Errorf("Claim %d: expected confidence %.1f, got %.2f", i, heuristicConfidence, claim.Confidence)
		}
	}
	if !strings.Contains(claims[0].Text, "Eiffel Tower") {
		t.Errorf("Expected first claim about the Eiffel Tower, got %q", claims[0].Text)
	}
}

func TestHeuristic_ClaimTyping(t *testing.T) {
	e := newExtractor()

	tests := []struct {
		sentence string
		want     model.ClaimType
	}{
		{"The Eiffel Tower is located in Paris near the Seine.", model.ClaimTypeFactual},
		{"The tower is 324 meters tall.", model.ClaimTypeNumerical},
		{"Construction was finished in March after two years of work.", model.ClaimTypeTemporal},
		{"The tower was completed in 1889 for the World's Fair.", model.ClaimTypeTemporal},
		{"The Eiffel Tower is taller than the Washington Monument.", model.ClaimTypeComparative},
	}

	for _, tt := range tests {
		claims := e.Extract(tt.sentence)
		if len(claims) != 1 {
			t.Fatalf("Expected 1 claim from %q, got %d", tt.sentence, len(claims))
		}
		if claims[0].Type != tt.want {
			t.Errorf("%q: expected type %s, got %s", tt.sentence, tt.want, claims[0].Type)
		}
	}
}

func TestHeuristic_FiltersFragmentsAndQuestions(t *testing.T) {
	e := newExtractor()

	text := "Short. Is the Eiffel Tower really in Paris? The Eiffel Tower stands in Paris."
	claims := e.Extract(text)

	if len(claims) != 1 {
		t.Fatalf("Expected 1 claim, got %d: %+v", len(claims), claims)
	}
	if !strings.Contains(claims[0].Text, "stands in Paris") {
		t.Errorf("Expected the declarative sentence, got %q", claims[0].Text)
	}
}

func TestHeuristic_DeduplicatesCaseInsensitively(t *testing.T) {
	e := newExtractor()

	text := "The Eiffel Tower is in Paris. THE EIFFEL TOWER IS IN PARIS. The Eiffel Tower is in Paris."
	claims := e.Extract(text)

	if len(claims) != 1 {
		t.Errorf("Expected duplicates filtered to 1 claim, got %d", len(claims))
	}
}

func TestHeuristic_RespectsMaxClaims(t *testing.T) {
	e := NewHeuristic(model.ExtractionConfig{MinLength: 10, MaxClaims: 2})

	text := "The first fact is about Paris. The second fact is about Berlin. The third fact is about Madrid."
	claims := e.Extract(text)

	if len(claims) != 2 {
		t.Errorf("Expected max 2 claims, got %d", len(claims))
	}
}

func TestHeuristic_EmptyTextYieldsNoClaims(t *testing.T) {
	e := newExtractor()

	for _, text := range []string{"", "   ", "???", "a. b. c."} {
		if claims := e.Extract(text); len(claims) != 0 {
			t.Errorf("Expected no claims from %q, got %d", text, len(claims))
		}
	}
}
