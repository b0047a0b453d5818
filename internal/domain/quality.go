package domain

import "fmt"

// IssueKind classifies a data-quality signal raised while grading.
type IssueKind string

// IssueKind values
const (
	IssueMissingValue        IssueKind = "missing_value"
	IssueInvalidValue        IssueKind = "invalid_value"
	IssueBaselineUnavailable IssueKind = "baseline_unavailable"
)

// DataQualityIssue flags one cell or baseline that was graded with a fallback.
type DataQualityIssue struct {
	Ticker string
	Sector string
	Metric string
	Kind   IssueKind
	Raw    string
}

// String renders the issue for reports and logs.
func (i DataQualityIssue) String() string {
	switch i.Kind {
	case IssueInvalidValue:
		return fmt.Sprintf("%s: %s value %q is not numeric (graded as 0)", i.Ticker, i.Metric, i.Raw)
	case IssueMissingValue:
		return fmt.Sprintf("%s: %s value missing (graded as 0)", i.Ticker, i.Metric)
	case IssueBaselineUnavailable:
		return fmt.Sprintf("%s: no %s baseline for sector %q (fallback grade)", i.Ticker, i.Metric, i.Sector)
	default:
		return fmt.Sprintf("%s: %s %s", i.Ticker, i.Metric, i.Kind)
	}
}
