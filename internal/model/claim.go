package model

// Claim represents a factual assertion extracted from an answer
type Claim struct {
	Text       string    `json:"text"`                 // The claim text itself
	Type       ClaimType `json:"type"`                 // Category of the claim
	Sentence   int       `json:"sentence"`             // Sentence index in the answer (0-based)
	Confidence float64   `json:"confidence,omitempty"` // Extractor confidence, 1 when the extractor reports none
}

// ClaimType categorizes the nature of the claim
type ClaimType string

const (
	ClaimTypeFactual     ClaimType = "factual"     // General statements of fact
	ClaimTypeNumerical   ClaimType = "numerical"   // Claims carrying quantities or measurements
	ClaimTypeTemporal    ClaimType = "temporal"    // Claims about dates, years, or time spans
	ClaimTypeComparative ClaimType = "comparative" // Claims comparing two or more things
	ClaimTypeOther       ClaimType = "other"       // Anything the extractor could not categorize
)

// Status is the four-way classification of how well evidence backs a claim
type Status string

const (
	StatusSupported          Status = "supported"           // Best evidence clears the support threshold
	StatusPartiallySupported Status = "partially_supported" // Some supporting evidence, not conclusive
	StatusUnsupported        Status = "unsupported"         // No evidence clears the uncertainty threshold
	StatusConflicting        Status = "conflicting"         // Evidence directly contradicts the claim
)

// Severity ranks statuses from least to most risky. Used by the
// highlighter to pick the worst status attached to a sentence.
func (s Status) Severity() int {
	switch s {
	case StatusConflicting:
		return 3
	case StatusUnsupported:
		return 2
	case StatusPartiallySupported:
		return 1
	default:
		return 0
	}
}
