package util

import (
	"strings"
	"unicode"
)

// CleanText collapses runs of whitespace into single spaces and trims
func CleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Tokenize lowercases text, strips punctuation, and splits on whitespace.
// Insensitive to token order and case by construction; used for lexical
// overlap and embedding alike so the two agree on token boundaries.
func Tokenize(text string) []string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
		// Punctuation is dropped, not replaced, so "Paris." and "Paris"
		// tokenize identically.
	}
	return strings.Fields(b.String())
}

// ContentTokens returns Tokenize output with stopwords removed
func ContentTokens(text string) []string {
	tokens := Tokenize(text)
	content := tokens[:0:0]
	for _, t := range tokens {
		if !stopwords[t] {
			content = append(content, t)
		}
	}
	return content
}

// TokenSet builds a membership set from a token slice
func TokenSet(tokens []string) map[string]bool {
	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		set[t] = true
	}
	return set
}

// Overlap computes the Jaccard similarity of the token sets of two texts.
// Returns 0 when either side has no tokens.
func Overlap(a, b string) float64 {
	setA := TokenSet(Tokenize(a))
	setB := TokenSet(Tokenize(b))
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for t := range setA {
		if setB[t] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

// SplitSentences splits text into sentences at terminator runs followed
// by whitespace. The highlighter and the claim extractor both use this
// splitter, so claim source indexes always line up with highlight spans.
func SplitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i, r := range runes {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
				if s := strings.TrimSpace(current.String()); s != "" {
					sentences = append(sentences, s)
				}
				current.Reset()
			}
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// TruncateText shortens text to at most max characters, cutting at a word
// boundary and appending an ellipsis
func TruncateText(text string, max int) string {
	if len(text) <= max {
		return text
	}
	cut := text[:max]
	if idx := strings.LastIndexByte(cut, ' '); idx > 0 {
		cut = cut[:idx]
	}
	return cut + "..."
}

// stopwords are excluded from content-token comparisons. Negation words
// (not, no, never, without) are deliberately absent so polarity survives
// into content tokens.
var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "is": true, "are": true,
	"was": true, "were": true, "be": true, "been": true, "being": true,
	"am": true, "do": true, "does": true, "did": true, "have": true,
	"has": true, "had": true, "in": true, "on": true, "at": true,
	"of": true, "to": true, "for": true, "with": true, "by": true,
	"from": true, "as": true, "and": true, "or": true, "but": true,
	"it": true, "its": true, "this": true, "that": true, "these": true,
	"those": true, "he": true, "she": true, "they": true, "we": true,
	"you": true, "i": true, "his": true, "her": true, "their": true,
	"our": true, "your": true, "my": true, "will": true, "would": true,
	"can": true, "could": true, "should": true, "shall": true,
	"may": true, "might": true, "must": true, "there": true,
	"here": true, "which": true, "who": true, "when": true,
	"where": true, "how": true, "all": true, "each": true,
	"both": true, "more": true, "most": true, "other": true,
	"some": true, "such": true, "only": true, "own": true,
	"same": true, "so": true, "than": true, "too": true, "very": true,
	"just": true, "about": true, "into": true, "over": true,
	"after": true, "before": true, "between": true, "during": true,
	"under": true, "above": true, "again": true, "then": true,
	"once": true,
}
