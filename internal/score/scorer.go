// Package score aggregates per-claim verification records into a single
// 0-100 truthfulness score with a category, risk level, and
// recommendations. Recomputed fresh per answer; pure and deterministic.
package score

import (
	"fmt"

	"github.com/veridict/veridict/internal/model"
)

// Scorer maps verification records to a score report
type Scorer struct {
	cfg model.ScoringConfig
}

// NewScorer creates a scorer with the given weights and bands
func NewScorer(cfg model.ScoringConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score aggregates records into a report. An empty record list yields
// the configured neutral score rather than dividing by zero.
func (s *Scorer) Score(records []model.VerificationRecord) model.ScoreReport {
	summary := summarize(records)

	value := s.cfg.NeutralScore
	if len(records) > 0 {
		var total float64
		for _, r := range records {
			total += s.weight(r.Status) * r.Confidence
		}
		raw := total / float64(len(records))
		value = clamp(raw*100, 0, 100)
	}

	category, description := s.categorize(value)

	return model.ScoreReport{
		TruthfulnessScore: value,
		Category:          category,
		Description:       description,
		ClaimSummary:      summary,
		RiskLevel:         s.riskLevel(value, summary),
		Recommendations:   s.recommendations(value, summary),
	}
}

// weight returns the status weight. Conflicting claims carry the
// unsupported weight plus the hallucination penalty, so they pull the
// score below what an equivalent unsupported claim would.
func (s *Scorer) weight(status model.Status) float64 {
	switch status {
	case model.StatusSupported:
		return s.cfg.SupportedWeight
	case model.StatusPartiallySupported:
		return s.cfg.PartialWeight
	case model.StatusConflicting:
		return s.cfg.UnsupportedWeight + s.cfg.HallucinationPenalty
	default:
		return s.cfg.UnsupportedWeight
	}
}

// categorize maps a score onto the five reliability bands. Bands are
// closed-open except the lowest, which is closed on both ends.
func (s *Scorer) categorize(value float64) (model.Category, string) {
	switch {
	case value >= s.cfg.Bands[0]:
		return model.CategoryHighlyReliable,
			"This answer appears to be highly reliable based on available evidence."
	case value >= s.cfg.Bands[1]:
		return model.CategoryReliable,
			"This answer appears to be reliable, though some claims may need verification."
	case value >= s.cfg.Bands[2]:
		return model.CategoryUncertain,
			"This answer contains claims with mixed evidence - proceed with caution."
	case value >= s.cfg.Bands[3]:
		return model.CategoryUnreliable,
			"This answer contains several unverified or contradicted claims."
	default:
		return model.CategoryHighlyUnreliable,
			"This answer is highly unreliable - most claims lack supporting evidence."
	}
}

// riskLevel is high on any conflicting claim or when the unsupported
// share exceeds the configured fraction, medium when the score sits in
// the uncertain band, otherwise low
func (s *Scorer) riskLevel(value float64, summary model.ClaimSummary) model.RiskLevel {
	if summary.Conflicting > 0 {
		return model.RiskHigh
	}
	if summary.Total > 0 {
		share := float64(summary.Unsupported) / float64(summary.Total)
		if share > s.cfg.UnsupportedRiskShare {
			return model.RiskHigh
		}
	}
	if value >= s.cfg.Bands[2] && value < s.cfg.Bands[1] {
		return model.RiskMedium
	}
	return model.RiskLow
}

// recommendations is a fixed, ordered rule list driven by the claim
// summary, so identical inputs always render identically
func (s *Scorer) recommendations(value float64, summary model.ClaimSummary) []string {
	var recs []string

	if summary.Conflicting > 0 {
		recs = append(recs, fmt.Sprintf("Review %d conflicting claim(s) against authoritative sources.", summary.Conflicting))
	}
	if summary.Unsupported > 0 {
		recs = append(recs, fmt.Sprintf("Verify %d unsupported claim(s) independently.", summary.Unsupported))
	}
	if value < s.cfg.Bands[2] {
		recs = append(recs, "Consider consulting primary sources before relying on this answer.")
	}
	if value >= s.cfg.Bands[0] {
		recs = append(recs, "This answer appears reliable based on available evidence.")
	}
	if len(recs) == 0 {
		recs = append(recs, "Further verification recommended for critical applications.")
	}
	return recs
}

func summarize(records []model.VerificationRecord) model.ClaimSummary {
	summary := model.ClaimSummary{Total: len(records)}
	for _, r := range records {
		switch r.Status {
		case model.StatusSupported:
			summary.Supported++
		case model.StatusPartiallySupported:
			summary.PartiallySupported++
		case model.StatusConflicting:
			summary.Conflicting++
		default:
			summary.Unsupported++
		}
	}
	return summary
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
