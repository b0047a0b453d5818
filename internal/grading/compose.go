package grading

import (
	"fundamental-grader/internal/domain"
)

// RatingScale multiplies the summed category scores into the composite rating.
const RatingScale = 6.2

// CompositeRating sums category scores, scales by RatingScale, and rounds to 2 decimals.
func CompositeRating(categories []domain.CategoryScore) float64 {
	sum := 0.0
	for _, c := range categories {
		sum += c.Score
	}
	return Round2(sum * RatingScale)
}

// Normalize rescales every composite rating to 0-100 by the dataset maximum.
// It must run after every company's composite rating is known. Results are
// returned as new values; the input slice is not modified. When the maximum
// rating is not positive every normalized rating is 0.
func Normalize(results []domain.CompanyGrading) []domain.CompanyGrading {
	maxRating := 0.0
	for _, r := range results {
		if r.OverallRating > maxRating {
			maxRating = r.OverallRating
		}
	}

	out := make([]domain.CompanyGrading, len(results))
	for i, r := range results {
		normalized := 0.0
		if maxRating > 0 {
			normalized = Round2(r.OverallRating / maxRating * 100)
		}
		r.NormalizedRating = &normalized
		out[i] = r
	}
	return out
}

// PercentDiff returns (target - price) / price * 100, unrounded, or nil when
// either price is unavailable or the price is zero. Renderers choose the
// display precision.
func PercentDiff(c domain.Company) *float64 {
	rawPrice, _ := c.Raw(domain.ColumnPrice)
	rawTarget, _ := c.Raw(domain.ColumnTargetPrice)

	price := domain.ParseMetric(rawPrice)
	target := domain.ParseMetric(rawTarget)
	if !price.OK() || !target.OK() || price.Value == 0 {
		return nil
	}

	diff := (target.Value - price.Value) / price.Value * 100
	return &diff
}
