package domain

// MetricGrade is the letter assigned to one company metric.
type MetricGrade struct {
	Metric string
	Value  MetricValue
	Grade  Grade
}

// CategoryScore is the averaged grade-point score of one category.
type CategoryScore struct {
	Category string
	Grades   []MetricGrade
	Score    float64 // mean grade-point, rounded to 2 decimals
	Letter   Grade   // Score converted back through the grade scale
}

// CompanyGrading is the derived grading result for one company.
type CompanyGrading struct {
	Ticker   string
	Sector   string
	Industry string

	Categories    []CategoryScore // catalog order
	OverallRating float64

	// NormalizedRating is set only after dataset-wide normalization.
	NormalizedRating *float64

	// PercentDiff is (target - price) / price * 100, nil when either is unavailable.
	PercentDiff *float64

	Issues []DataQualityIssue
}

// Category returns the score for a category name.
func (g CompanyGrading) Category(name string) (CategoryScore, bool) {
	for _, c := range g.Categories {
		if c.Category == name {
			return c, true
		}
	}
	return CategoryScore{}, false
}
