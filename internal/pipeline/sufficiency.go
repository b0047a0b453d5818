package pipeline

import (
	"fmt"
	"sort"

	"fundamental-grader/internal/domain"
	"fundamental-grader/internal/grading"
	"fundamental-grader/internal/reporting"
)

// Sufficiency thresholds.
const (
	DefaultMinSectorSize       = 3
	DefaultMinMetricCoverage   = 0.80
	DefaultMinDefinedBaselines = 0.90
)

// SufficiencyCheck represents one data sufficiency criterion.
type SufficiencyCheck struct {
	Name      string
	Threshold string
	Actual    string
	Pass      bool
}

// SufficiencyResult contains all checks. Failures are warnings, never fatal.
type SufficiencyResult struct {
	Checks   []SufficiencyCheck
	AllPass  bool
	Warnings []string
}

// Rows converts the checks for the report.
func (r *SufficiencyResult) Rows() []reporting.SufficiencyCheckRow {
	rows := make([]reporting.SufficiencyCheckRow, len(r.Checks))
	for i, c := range r.Checks {
		rows[i] = reporting.SufficiencyCheckRow{
			Name:      c.Name,
			Threshold: c.Threshold,
			Actual:    c.Actual,
			Pass:      c.Pass,
		}
	}
	return rows
}

// SufficiencyChecker judges whether a graded dataset had enough peers and data.
type SufficiencyChecker struct {
	MinSectorSize       int
	MinMetricCoverage   float64
	MinDefinedBaselines float64
}

// NewSufficiencyChecker creates a checker with default thresholds.
func NewSufficiencyChecker() *SufficiencyChecker {
	return &SufficiencyChecker{
		MinSectorSize:       DefaultMinSectorSize,
		MinMetricCoverage:   DefaultMinMetricCoverage,
		MinDefinedBaselines: DefaultMinDefinedBaselines,
	}
}

// Check evaluates a grading result.
func (c *SufficiencyChecker) Check(res *grading.Result) *SufficiencyResult {
	result := &SufficiencyResult{AllPass: true}

	result.add(c.checkSectorSize(res, result))
	result.add(c.checkCoverage(res))
	result.add(c.checkBaselines(res))

	return result
}

func (r *SufficiencyResult) add(check SufficiencyCheck) {
	r.Checks = append(r.Checks, check)
	if !check.Pass {
		r.AllPass = false
	}
}

// checkSectorSize requires every sector to have MinSectorSize companies.
func (c *SufficiencyChecker) checkSectorSize(res *grading.Result, result *SufficiencyResult) SufficiencyCheck {
	counts := make(map[string]int)
	for _, company := range res.Dataset.Companies() {
		counts[company.Sector]++
	}

	var small []string
	minCount, minSector := -1, ""
	for _, sector := range res.Dataset.Sectors() {
		n := counts[sector]
		if minCount < 0 || n < minCount {
			minCount, minSector = n, sector
		}
		if n < c.MinSectorSize {
			small = append(small, sector)
		}
	}
	sort.Strings(small)
	for _, sector := range small {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("sector %q has %d companies (< %d); its baselines are unreliable", sector, counts[sector], c.MinSectorSize))
	}

	return SufficiencyCheck{
		Name:      "Companies per sector",
		Threshold: fmt.Sprintf(">= %d", c.MinSectorSize),
		Actual:    fmt.Sprintf("min %d (%s)", max(minCount, 0), minSector),
		Pass:      len(small) == 0,
	}
}

// checkCoverage requires the share of parseable catalog metric cells to reach MinMetricCoverage.
func (c *SufficiencyChecker) checkCoverage(res *grading.Result) SufficiencyCheck {
	total := len(res.Companies) * len(res.Catalog.Metrics())
	unparsed := 0
	for _, issue := range res.Issues() {
		if issue.Kind == domain.IssueMissingValue || issue.Kind == domain.IssueInvalidValue {
			unparsed++
		}
	}

	coverage := 0.0
	if total > 0 {
		coverage = float64(total-unparsed) / float64(total)
	}
	return SufficiencyCheck{
		Name:      "Metric coverage",
		Threshold: fmt.Sprintf(">= %.1f%%", c.MinMetricCoverage*100),
		Actual:    fmt.Sprintf("%.1f%%", coverage*100),
		Pass:      total > 0 && coverage >= c.MinMetricCoverage,
	}
}

// checkBaselines requires the share of defined (sector, metric) baselines to reach MinDefinedBaselines.
func (c *SufficiencyChecker) checkBaselines(res *grading.Result) SufficiencyCheck {
	total := res.Baselines.Len()
	defined := total - len(res.Baselines.Undefined())

	ratio := 0.0
	if total > 0 {
		ratio = float64(defined) / float64(total)
	}
	return SufficiencyCheck{
		Name:      "Defined baselines",
		Threshold: fmt.Sprintf(">= %.1f%%", c.MinDefinedBaselines*100),
		Actual:    fmt.Sprintf("%.1f%% (%d/%d)", ratio*100, defined, total),
		Pass:      total > 0 && ratio >= c.MinDefinedBaselines,
	}
}
