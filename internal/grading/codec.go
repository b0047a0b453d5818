// Package grading turns raw company metrics into sector-relative letter grades,
// category scores, and composite ratings.
package grading

import (
	"math"

	"github.com/shopspring/decimal"

	"fundamental-grader/internal/domain"
)

// Points returns the grade-point value of a letter. ok is false for letters off the scale.
func Points(g domain.Grade) (float64, bool) {
	for _, gp := range domain.GradeScale() {
		if gp.Grade == g {
			return gp.Points, true
		}
	}
	return 0, false
}

// LetterFor converts a grade-point value (or an average of them) back to a letter.
// It scans the scale best to worst and returns the first grade whose points are <= v.
// Values above 4.3 map to A+; values below 0 and NaN map to F.
func LetterFor(v float64) domain.Grade {
	if math.IsNaN(v) {
		return domain.GradeF
	}
	for _, gp := range domain.GradeScale() {
		if v >= gp.Points {
			return gp.Grade
		}
	}
	return domain.GradeF
}

// Round2 rounds half away from zero to 2 decimal places.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
