package model

import "time"

// VerificationRecord is the outcome of verifying one claim against the
// evidence corpus. One record per valid claim; inputs are never mutated.
// Evidence is referenced by ID, the claim by its index in the claim list.
type VerificationRecord struct {
	ClaimIndex int     `json:"claim_index"` // Position of the claim in the extracted list
	Claim      string  `json:"claim"`       // Claim text, copied for standalone reports
	Status     Status  `json:"status"`
	Confidence float64 `json:"confidence"` // Best combined evidence score, clamped to [0,1]

	BestEvidenceID        string `json:"best_evidence_id,omitempty"`        // Highest combined score
	ConflictingEvidenceID string `json:"conflicting_evidence_id,omitempty"` // Set only when status is conflicting

	Evidence  []EvidenceScore `json:"evidence,omitempty"` // Per-item scoring breakdown, retrieval order
	Reasoning string          `json:"reasoning"`          // Short explanation of the decision
}

// ClaimError records a claim that could not be verified. Errors local to
// one claim never abort a batch; they ride alongside best-effort results.
type ClaimError struct {
	ClaimIndex int    `json:"claim_index"`
	Claim      string `json:"claim"`
	Error      string `json:"error"`
}

// ClaimSummary counts verification records per status
type ClaimSummary struct {
	Total              int `json:"total"`
	Supported          int `json:"supported"`
	PartiallySupported int `json:"partially_supported"`
	Unsupported        int `json:"unsupported"`
	Conflicting        int `json:"conflicting"`
}

// Category is the discrete reliability band a score falls into
type Category string

const (
	CategoryHighlyReliable   Category = "highly_reliable"   // 80-100
	CategoryReliable         Category = "reliable"          // 60-79
	CategoryUncertain        Category = "uncertain"         // 40-59
	CategoryUnreliable       Category = "unreliable"        // 20-39
	CategoryHighlyUnreliable Category = "highly_unreliable" // 0-19
)

// RiskLevel is the coarse severity used for visualization and gating
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// ScoreReport aggregates per-claim statuses into a single reliability
// verdict. Recomputed fresh per answer, never mutated in place.
type ScoreReport struct {
	TruthfulnessScore float64      `json:"truthfulness_score"` // 0-100
	Category          Category     `json:"category"`
	Description       string       `json:"description"`
	ClaimSummary      ClaimSummary `json:"claim_summary"`
	RiskLevel         RiskLevel    `json:"risk_level"`
	Recommendations   []string     `json:"recommendations"` // Deterministic, ordered
}

// SentenceRisk is one sentence of the answer with the risk projected onto
// it from the claims it contains
type SentenceRisk struct {
	Index        int       `json:"index"` // Sentence position in the answer (0-based)
	Text         string    `json:"text"`
	RiskLevel    RiskLevel `json:"risk_level"`
	RiskScore    float64   `json:"risk_score"` // Fixed per level, higher is riskier
	Color        string    `json:"color"`      // Palette color for the level
	ClaimIndexes []int     `json:"claim_indexes,omitempty"`
}

// HighlightMap re-projects verification results onto the answer text.
// Derived artifact for rendering; discarded after the response.
type HighlightMap struct {
	Original    string         `json:"original"`
	Sentences   []SentenceRisk `json:"sentences"`
	HighRisk    int            `json:"high_risk_count"`
	MediumRisk  int            `json:"medium_risk_count"`
	LowRisk     int            `json:"low_risk_count"`
	Ambiguities []string       `json:"ambiguities,omitempty"` // Claims that had no unique sentence match
}

// Result is the complete verification output for one question/answer pair
type Result struct {
	Question string    `json:"question,omitempty"`
	Answer   string    `json:"answer"`
	RunAt    time.Time `json:"run_at"`

	Claims  []Claim              `json:"claims"`
	Records []VerificationRecord `json:"records"`
	Errors  []ClaimError         `json:"errors,omitempty"`

	Report     ScoreReport  `json:"report"`
	Highlights HighlightMap `json:"highlights"`

	Generated *Generated    `json:"generated,omitempty"` // Set when the answer came from a language model
	Elapsed   time.Duration `json:"elapsed_ns"`
}

// Generated marks results whose answer came from a language model rather
// than the caller
type Generated struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
}
