// Package highlight re-projects verification records onto the answer
// text. No verification logic lives here; it only maps already-decided
// statuses to sentence spans and colors.
package highlight

import (
	"fmt"
	"strings"

	"github.com/veridict/veridict/internal/model"
	"github.com/veridict/veridict/internal/util"
)

// Risk scores are fixed per level and used only for sorting structured
// output; the level itself drives rendering.
const (
	scoreConflicting = 0.9
	scoreUnsupported = 0.7
	scoreMedium      = 0.4
	scoreLowClaimed  = 0.1
	scoreLowNoClaims = 0.0
)

// Highlighter maps claims back onto sentences and assigns colors
type Highlighter struct {
	palette model.HighlightConfig
}

// New creates a highlighter with the given palette
func New(palette model.HighlightConfig) *Highlighter {
	return &Highlighter{palette: palette}
}

// Highlight splits the answer into sentences with the same rule the
// claim extractor uses, attaches each verified claim to exactly one
// sentence, and computes per-sentence risk as the worst attached status.
// Claims that match zero or several sentences attach to the
// best-overlapping one and are noted as ambiguities instead of failing.
func (h *Highlighter) Highlight(original string, records []model.VerificationRecord) model.HighlightMap {
	sentences := util.SplitSentences(original)

	m := model.HighlightMap{
		Original:  original,
		Sentences: make([]model.SentenceRisk, len(sentences)),
	}

	worst := make([]model.Status, len(sentences))
	claimed := make([]bool, len(sentences))
	attached := make([][]int, len(sentences))

	for _, record := range records {
		target, unique := h.locate(record.Claim, sentences)
		if target < 0 {
			m.Ambiguities = append(m.Ambiguities,
				fmt.Sprintf("claim %d has no sentence to attach to", record.ClaimIndex))
			continue
		}
		if !unique {
			m.Ambiguities = append(m.Ambiguities,
				fmt.Sprintf("claim %d attached to sentence %d by best overlap", record.ClaimIndex, target))
		}

		attached[target] = append(attached[target], record.ClaimIndex)
		if !claimed[target] || record.Status.Severity() > worst[target].Severity() {
			worst[target] = record.Status
		}
		claimed[target] = true
	}

	for i, sentence := range sentences {
		level, riskScore := h.risk(claimed[i], worst[i])
		m.Sentences[i] = model.SentenceRisk{
			Index:        i,
			Text:         sentence,
			RiskLevel:    level,
			RiskScore:    riskScore,
			Color:        h.color(level),
			ClaimIndexes: attached[i],
		}
		switch level {
		case model.RiskHigh:
			m.HighRisk++
		case model.RiskMedium:
			m.MediumRisk++
		default:
			m.LowRisk++
		}
	}
	return m
}

// locate finds the sentence a claim belongs to. Returns the index and
// whether the match was unique; -1 when there are no sentences.
func (h *Highlighter) locate(claim string, sentences []string) (int, bool) {
	if len(sentences) == 0 {
		return -1, false
	}

	var matches []int
	for i, sentence := range sentences {
		if claimMatches(claim, sentence) {
			matches = append(matches, i)
		}
	}
	if len(matches) == 1 {
		return matches[0], true
	}

	// Zero or several candidates: fall back to the best word overlap,
	// earliest sentence on ties.
	best := 0
	bestOverlap := -1.0
	for i, sentence := range sentences {
		if overlap := util.Overlap(claim, sentence); overlap > bestOverlap {
			best = i
			bestOverlap = overlap
		}
	}
	return best, false
}

// claimMatches uses case-insensitive containment, then word coverage:
// at least 70% of the claim's words must appear in the sentence.
func claimMatches(claim, sentence string) bool {
	claimLower := strings.ToLower(claim)
	sentenceLower := strings.ToLower(sentence)
	if strings.Contains(sentenceLower, claimLower) {
		return true
	}

	claimWords := util.TokenSet(util.Tokenize(claim))
	if len(claimWords) == 0 {
		return false
	}
	sentenceWords := util.TokenSet(util.Tokenize(sentence))
	covered := 0
	for w := range claimWords {
		if sentenceWords[w] {
			covered++
		}
	}
	return float64(covered) >= 0.7*float64(len(claimWords))
}

// risk maps the worst attached status to a level and a sort score
func (h *Highlighter) risk(hasClaims bool, worst model.Status) (model.RiskLevel, float64) {
	if !hasClaims {
		return model.RiskLow, scoreLowNoClaims
	}
	switch worst {
	case model.StatusConflicting:
		return model.RiskHigh, scoreConflicting
	case model.StatusUnsupported:
		return model.RiskHigh, scoreUnsupported
	case model.StatusPartiallySupported:
		return model.RiskMedium, scoreMedium
	default:
		return model.RiskLow, scoreLowClaimed
	}
}

func (h *Highlighter) color(level model.RiskLevel) string {
	switch level {
	case model.RiskHigh:
		return h.palette.HighColor
	case model.RiskMedium:
		return h.palette.MediumColor
	default:
		return h.palette.LowColor
	}
}
