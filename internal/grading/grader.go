package grading

import (
	"fundamental-grader/internal/baseline"
	"fundamental-grader/internal/domain"
)

// Fallback grades.
const (
	// NoBaselineGrade is returned when a (sector, metric) baseline is undefined.
	NoBaselineGrade = domain.GradeC

	// BelowScaleGrade is returned when a value is worse than the F threshold.
	BelowScaleGrade = domain.GradeF
)

// GradeValue grades a value against a defined baseline using the threshold ladder.
//
// The ladder starts at P10 for lower-is-better metrics and P90 for higher-is-better
// metrics, and moves one spread per grade away from the favorable side:
//
//	threshold(n) = start + n*spread  (lower-is-better)
//	threshold(n) = start - n*spread  (higher-is-better)
//
// Grades are scanned best first. Lower-is-better returns the first grade whose
// threshold strictly exceeds the value; higher-is-better returns the first grade
// whose threshold is strictly below it. No match yields BelowScaleGrade.
func GradeValue(b domain.SectorBaseline, polarity domain.Polarity, value float64) domain.Grade {
	lowerIsBetter := polarity == domain.LowerIsBetter
	start := b.P90
	if lowerIsBetter {
		start = b.P10
	}

	for n, gp := range domain.GradeScale() {
		step := float64(n) * b.Spread
		if lowerIsBetter {
			if value < start+step {
				return gp.Grade
			}
			continue
		}
		if value > start-step {
			return gp.Grade
		}
	}
	return BelowScaleGrade
}

// Grader grades company metrics against a baseline table.
type Grader struct {
	table *baseline.Table
}

// NewGrader creates a grader over a fully built baseline table.
func NewGrader(table *baseline.Table) *Grader {
	return &Grader{table: table}
}

// Grade grades one company metric. Missing or invalid values are graded as 0 and
// an undefined baseline yields NoBaselineGrade; both are reported as issues.
func (g *Grader) Grade(c domain.Company, metric domain.MetricDefinition) (domain.MetricGrade, []domain.DataQualityIssue) {
	raw, _ := c.Raw(metric.Name)
	value := domain.ParseMetric(raw)
	result := domain.MetricGrade{Metric: metric.Name, Value: value}

	var issues []domain.DataQualityIssue
	switch value.Status {
	case domain.ValueMissing:
		issues = append(issues, newIssue(c, metric.Name, domain.IssueMissingValue, raw))
	case domain.ValueInvalid:
		issues = append(issues, newIssue(c, metric.Name, domain.IssueInvalidValue, raw))
	}

	b, ok := g.table.Lookup(c.Sector, metric.Name)
	if !ok {
		result.Grade = NoBaselineGrade
		issues = append(issues, newIssue(c, metric.Name, domain.IssueBaselineUnavailable, raw))
		return result, issues
	}

	result.Grade = GradeValue(b, metric.Polarity, value.OrZero())
	return result, issues
}

func newIssue(c domain.Company, metric string, kind domain.IssueKind, raw string) domain.DataQualityIssue {
	return domain.DataQualityIssue{
		Ticker: c.Ticker,
		Sector: c.Sector,
		Metric: metric,
		Kind:   kind,
		Raw:    raw,
	}
}
