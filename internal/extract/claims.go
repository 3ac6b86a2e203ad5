// Package extract turns answer text into discrete factual claims. The
// pipeline depends only on the Extractor interface; the heuristic
// implementation here is the offline default and can be swapped for an
// external NLP component without touching verification.
package extract

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/veridict/veridict/internal/model"
	"github.com/veridict/veridict/internal/util"
)

// Extractor produces an ordered sequence of claims from text
type Extractor interface {
	Extract(text string) []model.Claim
}

// heuristicConfidence is reported for sentence-level claims, matching
// the certainty of treating a whole sentence as one claim
const heuristicConfidence = 0.8

// Heuristic extracts one claim per declarative sentence, typed by cue
// patterns. Duplicates are filtered case-insensitively; order follows
// appearance in the text.
type Heuristic struct {
	minLength int
	maxClaims int
}

// NewHeuristic creates an extractor with the given bounds. Zero values
// fall back to sensible defaults.
func NewHeuristic(cfg model.ExtractionConfig) *Heuristic {
	minLength := cfg.MinLength
	if minLength <= 0 {
		minLength = 10
	}
	maxClaims := cfg.MaxClaims
	if maxClaims <= 0 {
		maxClaims = 20
	}
	return &Heuristic{minLength: minLength, maxClaims: maxClaims}
}

// Extract splits text into sentences and keeps the ones that look like
// factual statements
func (h *Heuristic) Extract(text string) []model.Claim {
	sentences := util.SplitSentences(util.CleanText(text))

	var claims []model.Claim
	seen := make(map[string]bool)

	for i, sentence := range sentences {
		if !h.isCandidate(sentence) {
			continue
		}

		key := strings.ToLower(strings.TrimSpace(sentence))
		if seen[key] {
			continue
		}
		seen[key] = true

		claims = append(claims, model.Claim{
			Text:       sentence,
			Type:       classify(sentence),
			Sentence:   i,
			Confidence: heuristicConfidence,
		})
		if len(claims) >= h.maxClaims {
			break
		}
	}
	return claims
}

// isCandidate filters out fragments: too short, no letters, or
// questions aimed back at the reader
func (h *Heuristic) isCandidate(sentence string) bool {
	if len(sentence) < h.minLength {
		return false
	}
	if strings.HasSuffix(sentence, "?") {
		return false
	}
	for _, r := range sentence {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

var (
	numberPattern = regexp.MustCompile(`\d+([.,]\d+)?`)
	yearPattern   = regexp.MustCompile(`\b(1[0-9]{3}|20[0-9]{2})\b`)
)

var temporalCues = []string{
	"january", "february", "march", "april", "may", "june", "july",
	"august", "september", "october", "november", "december",
	"century", "decade", "yesterday", "today", "tomorrow", "ago",
	"founded in", "built in", "established in", "since",
}

var comparativeCues = []string{
	" than ", " more ", " less ", " most ", " least ", " fastest",
	" slowest", " largest", " smallest", " tallest", " highest",
	" lowest", " better ", " worse ", " compared to", " compared with",
}

// classify types a claim by cue patterns. Temporal beats numerical so
// "built in 1889" reads as a date rather than a quantity; everything
// without a cue is factual.
func classify(sentence string) model.ClaimType {
	lower := strings.ToLower(sentence)

	for _, cue := range temporalCues {
		if strings.Contains(lower, cue) {
			return model.ClaimTypeTemporal
		}
	}
	if yearPattern.MatchString(sentence) {
		return model.ClaimTypeTemporal
	}
	for _, cue := range comparativeCues {
		if strings.Contains(lower, cue) {
			return model.ClaimTypeComparative
		}
	}
	if numberPattern.MatchString(sentence) {
		return model.ClaimTypeNumerical
	}
	return model.ClaimTypeFactual
}
