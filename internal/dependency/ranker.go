package dependency

import (
	"cmp"
	"slices"
)

// Rank returns the edges sorted by descending risk. The input is not modified.
//
// Order: priority (P0 first), then failure impact, then MTTR estimate (both
// descending), then source and target ascending.
func Rank(edges []Edge) []Edge {
	ranked := append([]Edge(nil), edges...)
	slices.SortStableFunc(ranked, compareRisk)
	return ranked
}

// compareRisk sorts riskier edges first.
func compareRisk(a, b Edge) int {
	if c := cmp.Compare(b.Priority.Severity(), a.Priority.Severity()); c != 0 {
		return c
	}
	if c := cmp.Compare(b.FailureImpact, a.FailureImpact); c != 0 {
		return c
	}
	if c := cmp.Compare(b.MTTREstimateMinutes, a.MTTREstimateMinutes); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Source, b.Source); c != 0 {
		return c
	}
	return cmp.Compare(a.Target, b.Target)
}

// maxScoredMTTR caps the MTTR component of RiskScore so it cannot overflow
// into the failure-impact digit.
const maxScoredMTTR = 9999

// RiskScore folds priority, failure impact and MTTR into one integer whose
// ordering agrees with Rank on those three keys. MTTR estimates above
// maxScoredMTTR minutes score the same.
func RiskScore(e Edge) int {
	mttr := min(max(e.MTTREstimateMinutes, 0), maxScoredMTTR)
	impact := min(max(e.FailureImpact, 0), 9)
	severity := e.Priority.Severity() + 1
	return severity*100_000 + impact*10_000 + mttr
}
