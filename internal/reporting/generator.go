package reporting

import (
	"sort"
	"strings"
	"time"

	"fundamental-grader/internal/domain"
	"fundamental-grader/internal/grading"
)

// maxListedIssues caps the issue lines rendered in the Markdown report.
const maxListedIssues = 200

// Generator produces reports from a grading result.
type Generator struct {
	now func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator() *Generator {
	return &Generator{
		now: func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate builds the run report. checks may be nil.
func (g *Generator) Generate(runID string, res *grading.Result, checks []SufficiencyCheckRow) *Report {
	r := &Report{
		GeneratedAt: g.now(),
		RunID:       runID,
		Variant:     string(res.Options.Variant),
		Normalized:  res.Normalized,
		Categories:  res.Catalog.CategoryNames(),
		DataSummary: g.generateDataSummary(res),
		Ranking:     generateRanking(res),
		Sectors:     generateSectorSummaries(res),
		Baselines:   BaselineRows(res),
	}

	r.DataQuality = generateDataQuality(res, checks)
	return r
}

func (g *Generator) generateDataSummary(res *grading.Result) DataSummary {
	industries := make(map[string]struct{})
	for _, c := range res.Dataset.Companies() {
		industries[c.Industry] = struct{}{}
	}

	return DataSummary{
		Companies:          res.Dataset.Len(),
		Sectors:            len(res.Dataset.Sectors()),
		Industries:         len(industries),
		Metrics:            len(res.Catalog.Metrics()),
		BaselinePairs:      res.Baselines.Len(),
		UndefinedBaselines: len(res.Baselines.Undefined()),
	}
}

func generateDataQuality(res *grading.Result, checks []SufficiencyCheckRow) DataQualitySection {
	section := DataQualitySection{
		SufficiencyChecks: checks,
		AllChecksPassed:   true,
	}
	for _, c := range checks {
		if !c.Pass {
			section.AllChecksPassed = false
		}
	}

	counts := make(map[domain.IssueKind]int)
	for _, issue := range res.Issues() {
		counts[issue.Kind]++
		if len(section.Issues) < maxListedIssues {
			section.Issues = append(section.Issues, issue.String())
		}
	}

	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		section.IssueCounts = append(section.IssueCounts, IssueCountRow{Kind: k, Count: counts[domain.IssueKind(k)]})
	}

	return section
}

// generateRanking orders companies by overall rating desc, then ticker asc.
func generateRanking(res *grading.Result) []RankingRow {
	rows := make([]RankingRow, len(res.Companies))
	for i, c := range res.Companies {
		letters := make([]string, len(c.Categories))
		for j, cs := range c.Categories {
			letters[j] = string(cs.Letter)
		}
		rows[i] = RankingRow{
			Ticker:           c.Ticker,
			Sector:           c.Sector,
			Industry:         c.Industry,
			CategoryLetters:  letters,
			OverallRating:    c.OverallRating,
			NormalizedRating: c.NormalizedRating,
			PercentDiff:      c.PercentDiff,
			IssueCount:       len(c.Issues),
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].OverallRating != rows[j].OverallRating {
			return rows[i].OverallRating > rows[j].OverallRating
		}
		return strings.Compare(rows[i].Ticker, rows[j].Ticker) < 0
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}

func generateSectorSummaries(res *grading.Result) []SectorSummaryRow {
	bySector := make(map[string]*SectorSummaryRow)
	sums := make(map[string]float64)
	for _, c := range res.Companies {
		row, ok := bySector[c.Sector]
		if !ok {
			row = &SectorSummaryRow{Sector: c.Sector}
			bySector[c.Sector] = row
		}
		row.Companies++
		sums[c.Sector] += c.OverallRating
		if row.TopTicker == "" || c.OverallRating > row.TopRating ||
			(c.OverallRating == row.TopRating && c.Ticker < row.TopTicker) {
			row.TopTicker = c.Ticker
			row.TopRating = c.OverallRating
		}
	}

	rows := make([]SectorSummaryRow, 0, len(bySector))
	for _, sector := range res.Dataset.Sectors() {
		row, ok := bySector[sector]
		if !ok {
			continue
		}
		row.MeanRating = grading.Round2(sums[sector] / float64(row.Companies))
		rows = append(rows, *row)
	}
	return rows
}

// BaselineRows flattens the baseline table in sector then metric order.
func BaselineRows(res *grading.Result) []BaselineRow {
	all := res.Baselines.All()
	rows := make([]BaselineRow, len(all))
	for i, b := range all {
		rows[i] = BaselineRow{
			Sector:   b.Sector,
			Metric:   b.Metric,
			Observed: b.Observed,
			Samples:  b.Samples,
			Median:   b.Median,
			P10:      b.P10,
			P90:      b.P90,
			Spread:   b.Spread,
			Defined:  b.Defined,
		}
	}
	return rows
}
