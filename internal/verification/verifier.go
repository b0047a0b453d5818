// Package verification re-grades stored datasets and checks the results
// against the grades stored for a run.
package verification

import (
	"context"
	"fmt"
	"math"

	"fundamental-grader/internal/domain"
)

// FloatTolerance is the tolerance for float64 comparisons.
const FloatTolerance = 1e-7

// FieldDivergence represents a mismatch between stored and re-graded values.
type FieldDivergence struct {
	Field    string // field name
	Expected any    // stored value
	Actual   any    // re-graded value
}

// VerificationResult contains the result of verifying one company grading.
type VerificationResult struct {
	Ticker         string
	Match          bool
	Divergences    []FieldDivergence
	StoredRating   float64
	RegradedRating float64
}

// VerificationReport contains results for a whole run.
type VerificationReport struct {
	RunID              string
	TotalCompanies     int
	MatchedCompanies   int
	DivergentCompanies int
	Results            []VerificationResult // stored position order
}

// Match reports whether every company matched.
func (r *VerificationReport) Match() bool {
	return r.DivergentCompanies == 0
}

// Verifier checks stored grades against a fresh grading pass.
type Verifier interface {
	// VerifyCompany verifies one company of a run.
	VerifyCompany(ctx context.Context, runID, ticker string) (*VerificationResult, error)

	// VerifyRun verifies every stored company of a run.
	VerifyRun(ctx context.Context, runID string) (*VerificationReport, error)
}

// CompareGradeRecords compares two grade records and returns divergences.
// Scores use FloatTolerance; letters and identity fields must match exactly.
func CompareGradeRecords(stored, regraded *domain.GradeRecord) []FieldDivergence {
	var divergences []FieldDivergence
	add := func(field string, expected, actual any) {
		divergences = append(divergences, FieldDivergence{Field: field, Expected: expected, Actual: actual})
	}

	if stored.Ticker != regraded.Ticker {
		add("Ticker", stored.Ticker, regraded.Ticker)
	}
	if stored.Sector != regraded.Sector {
		add("Sector", stored.Sector, regraded.Sector)
	}
	if stored.Variant != regraded.Variant {
		add("Variant", stored.Variant, regraded.Variant)
	}

	if len(stored.CategoryNames) != len(regraded.CategoryNames) {
		add("CategoryNames", stored.CategoryNames, regraded.CategoryNames)
	} else {
		for i, name := range stored.CategoryNames {
			if name != regraded.CategoryNames[i] {
				add("CategoryNames", stored.CategoryNames, regraded.CategoryNames)
				break
			}
			if !floatEquals(stored.CategoryScores[i], regraded.CategoryScores[i]) {
				add(name+" Score", stored.CategoryScores[i], regraded.CategoryScores[i])
			}
			if stored.CategoryLetters[i] != regraded.CategoryLetters[i] {
				add(name+" Grade", stored.CategoryLetters[i], regraded.CategoryLetters[i])
			}
		}
	}

	for metric, letter := range stored.MetricGrades {
		if got, ok := regraded.MetricGrades[metric]; !ok || got != letter {
			add(fmt.Sprintf("Metric %s", metric), letter, got)
		}
	}
	for metric, letter := range regraded.MetricGrades {
		if _, ok := stored.MetricGrades[metric]; !ok {
			add(fmt.Sprintf("Metric %s", metric), nil, letter)
		}
	}

	if !floatEquals(stored.OverallRating, regraded.OverallRating) {
		add("OverallRating", stored.OverallRating, regraded.OverallRating)
	}
	if !floatPtrEquals(stored.NormalizedRating, regraded.NormalizedRating) {
		add("NormalizedRating", stored.NormalizedRating, regraded.NormalizedRating)
	}
	if !floatPtrEquals(stored.PercentDiff, regraded.PercentDiff) {
		add("PercentDiff", stored.PercentDiff, regraded.PercentDiff)
	}
	if stored.IssueCount != regraded.IssueCount {
		add("IssueCount", stored.IssueCount, regraded.IssueCount)
	}

	return divergences
}

// floatEquals compares two float64 values within FloatTolerance.
func floatEquals(a, b float64) bool {
	return math.Abs(a-b) <= FloatTolerance
}

// floatPtrEquals compares two *float64 values within FloatTolerance.
// Returns true if both are nil, or both are non-nil and equal.
func floatPtrEquals(a, b *float64) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return floatEquals(*a, *b)
}
