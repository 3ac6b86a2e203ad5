package verify

import "github.com/veridict/veridict/internal/util"

// ConflictPredicate reports whether evidence directly contradicts a
// claim. Only consulted for evidence whose semantic similarity clears
// the conflict threshold.
type ConflictPredicate func(claim, evidence string) bool

// negationCues flip the polarity of a statement. Kept small on purpose:
// a broad list trips on idioms ("no doubt") far more than it catches
// real contradictions.
var negationCues = map[string]bool{
	"not":     true,
	"no":      true,
	"never":   true,
	"none":    true,
	"neither": true,
	"nor":     true,
	"cannot":  true,
	"without": true,
	"false":   true,
}

// DefaultConflictPredicate fires on polarity mismatch or entity
// substitution between two otherwise similar texts
func DefaultConflictPredicate(claim, evidence string) bool {
	claimTokens := util.TokenSet(util.Tokenize(claim))
	evidenceTokens := util.TokenSet(util.Tokenize(evidence))

	if negationMismatch(claimTokens, evidenceTokens) {
		return true
	}
	return entitySubstitution(claim, evidence)
}

// negationMismatch is true when exactly one side carries a negation cue
func negationMismatch(claim, evidence map[string]bool) bool {
	return hasCue(claim) != hasCue(evidence)
}

func hasCue(tokens map[string]bool) bool {
	for cue := range negationCues {
		if tokens[cue] {
			return true
		}
	}
	return false
}

// entitySubstitution detects two statements that agree on most content
// words but swap a small set of specifics: same subject, different fact.
// Fires when content-token Jaccard is at least 0.5 and both exclusive
// sets are non-empty with at most two tokens each.
func entitySubstitution(claim, evidence string) bool {
	claimSet := util.TokenSet(util.ContentTokens(claim))
	evidenceSet := util.TokenSet(util.ContentTokens(evidence))
	if len(claimSet) == 0 || len(evidenceSet) == 0 {
		return false
	}

	shared := 0
	claimOnly := 0
	for t := range claimSet {
		if evidenceSet[t] {
			shared++
		} else {
			claimOnly++
		}
	}
	evidenceOnly := len(evidenceSet) - shared

	union := len(claimSet) + len(evidenceSet) - shared
	jaccard := float64(shared) / float64(union)

	return jaccard >= 0.5 &&
		claimOnly >= 1 && claimOnly <= 2 &&
		evidenceOnly >= 1 && evidenceOnly <= 2
}
