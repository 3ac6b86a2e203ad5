package util

import (
	"strings"
	"testing"
)

func TestTokenize_CaseAndPunctuation(t *testing.T) {
	tokens := Tokenize("The Eiffel Tower is in Paris.")

	expected := []string{"the", "eiffel", "tower", "is", "in", "paris"}
	if len(tokens) != len(expected) {
		t.Fatalf("Expected %d tokens, got %d: %v", len(expected), len(tokens), tokens)
	}
	for i, tok := range expected {
		if tokens[i] != tok {
			t.Errorf("Expected token %d to be '%s', got '%s'", i, tok, tokens[i])
		}
	}
}

func TestTokenize_DropsPunctuationInsideWords(t *testing.T) {
	tokens := Tokenize("don't stop")

	if len(tokens) != 2 {
		t.Fatalf("Expected 2 tokens, got %d: %v", len(tokens), tokens)
	}
	if tokens[0] != "dont" {
		t.Errorf("Expected apostrophe to be dropped, got '%s'", tokens[0])
	}
}

func TestTokenize_Empty(t *testing.T) {
	if tokens := Tokenize(""); len(tokens) != 0 {
		t.Errorf("Expected no tokens for empty input, got %v", tokens)
	}
	if tokens := Tokenize("..."); len(tokens) != 0 {
		t.Errorf("Expected no tokens for punctuation-only input, got %v", tokens)
	}
}

func TestContentTokens_RemovesStopwords(t *testing.T) {
	tokens := ContentTokens("The Eiffel Tower is in Berlin")

	expected := []string{"eiffel", "tower", "berlin"}
	if len(tokens) != len(expected) {
		t.Fatalf("Expected %v, got %v", expected, tokens)
	}
	for i, tok := range expected {
		if tokens[i] != tok {
			t.Errorf("Expected content token %d to be '%s', got '%s'", i, tok, tokens[i])
		}
	}
}

func TestContentTokens_KeepsNegation(t *testing.T) {
	tokens := ContentTokens("The tower is not in Berlin")

	found := false
	for _, tok := range tokens {
		if tok == "not" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected 'not' to survive stopword filtering, got %v", tokens)
	}
}

func TestOverlap_IdenticalTexts(t *testing.T) {
	overlap := Overlap("The Eiffel Tower is in Paris", "the eiffel tower is in paris!")

	if overlap != 1.0 {
		t.Errorf("Expected overlap 1.0 for identical token sets, got %.3f", overlap)
	}
}

func TestOverlap_PartialAndOrderInsensitive(t *testing.T) {
	a := Overlap("Paris hosts the Eiffel Tower", "the Eiffel Tower Paris hosts")
	if a != 1.0 {
		t.Errorf("Expected order-insensitive overlap 1.0, got %.3f", a)
	}

	b := Overlap("The Eiffel Tower is in Berlin", "The Eiffel Tower is in Paris.")
	// 5 shared tokens of 7 distinct: the, eiffel, tower, is, in vs berlin/paris
	if b < 0.70 || b > 0.72 {
		t.Errorf("Expected overlap near 5/7, got %.3f", b)
	}
}

func TestOverlap_EmptyInputs(t *testing.T) {
	if o := Overlap("", "some text"); o != 0 {
		t.Errorf("Expected 0 overlap for empty left side, got %.3f", o)
	}
	if o := Overlap("some text", ""); o != 0 {
		t.Errorf("Expected 0 overlap for empty right side, got %.3f", o)
	}
}

func TestSplitSentences_Terminators(t *testing.T) {
	text := "The tower is in Paris. It was built in 1889! Is it tall? Yes."

	sentences := SplitSentences(text)

	expected := []string{
		"The tower is in Paris.",
		"It was built in 1889!",
		"Is it tall?",
		"Yes.",
	}
	if len(sentences) != len(expected) {
		t.Fatalf("Expected %d sentences, got %d: %v", len(expected), len(sentences), sentences)
	}
	for i, s := range expected {
		if sentences[i] != s {
			t.Errorf("Expected sentence %d to be '%s', got '%s'", i, s, sentences[i])
		}
	}
}

func TestSplitSentences_EllipsisStaysTogether(t *testing.T) {
	sentences := SplitSentences("Wait... really? Yes.")

	if len(sentences) != 3 {
		t.Fatalf("Expected 3 sentences, got %d: %v", len(sentences), sentences)
	}
	if sentences[0] != "Wait..." {
		t.Errorf("Expected ellipsis to stay with its sentence, got '%s'", sentences[0])
	}
}

func TestSplitSentences_TrailingFragment(t *testing.T) {
	sentences := SplitSentences("First sentence here. trailing fragment without terminator")

	if len(sentences) != 2 {
		t.Fatalf("Expected 2 sentences, got %d", len(sentences))
	}
	if sentences[1] != "trailing fragment without terminator" {
		t.Errorf("Expected trailing fragment to be kept, got '%s'", sentences[1])
	}
}

func TestSplitSentences_Empty(t *testing.T) {
	if sentences := SplitSentences(""); len(sentences) != 0 {
		t.Errorf("Expected no sentences for empty text, got %v", sentences)
	}
	if sentences := SplitSentences("   "); len(sentences) != 0 {
		t.Errorf("Expected no sentences for whitespace text, got %v", sentences)
	}
}

func TestCleanText_CollapsesWhitespace(t *testing.T) {
	cleaned := CleanText("  spread \t over\nlines  ")

	if cleaned != "spread over lines" {
		t.Errorf("Expected collapsed whitespace, got '%s'", cleaned)
	}
}

func TestTruncateText_WordBoundary(t *testing.T) {
	text := "The Eiffel Tower is located in Paris"

	short := TruncateText(text, 200)
	if short != text {
		t.Errorf("Expected text under the limit to be unchanged, got '%s'", short)
	}

	truncated := TruncateText(text, 20)
	if !strings.HasSuffix(truncated, "...") {
		t.Errorf("Expected ellipsis suffix, got '%s'", truncated)
	}
	if len(truncated) > 23 {
		t.Errorf("Expected truncation near the limit, got %d chars", len(truncated))
	}
	if strings.Contains(strings.TrimSuffix(truncated, "..."), "locat") {
		t.Errorf("Expected cut at a word boundary, got '%s'", truncated)
	}
}
