package reporting

import "time"

// Report is the run summary rendered to REPORT.md.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	RunID       string
	Variant     string
	Normalized  bool
	Categories  []string

	// Data Summary
	DataSummary DataSummary

	// Data Quality (sufficiency checks and per-cell issues)
	DataQuality DataQualitySection

	// Ranking (sorted by overall rating desc, ticker asc)
	Ranking []RankingRow

	// Sector Summaries (input order of first appearance)
	Sectors []SectorSummaryRow

	// Baselines (sector order, then catalog metric order)
	Baselines []BaselineRow
}

// DataQualitySection contains sufficiency checks and grading issues.
type DataQualitySection struct {
	SufficiencyChecks []SufficiencyCheckRow
	AllChecksPassed   bool
	IssueCounts       []IssueCountRow
	Issues            []string
}

// SufficiencyCheckRow represents one sufficiency criterion.
type SufficiencyCheckRow struct {
	Name      string
	Threshold string
	Actual    string
	Pass      bool
}

// IssueCountRow counts issues of one kind.
type IssueCountRow struct {
	Kind  string
	Count int
}

// DataSummary describes the graded dataset.
type DataSummary struct {
	Companies          int
	Sectors            int
	Industries         int
	Metrics            int
	BaselinePairs      int
	UndefinedBaselines int
}

// RankingRow is one company in the ranking table.
type RankingRow struct {
	Rank             int
	Ticker           string
	Sector           string
	Industry         string
	CategoryLetters  []string // same order as Report.Categories
	OverallRating    float64
	NormalizedRating *float64
	PercentDiff      *float64
	IssueCount       int
}

// SectorSummaryRow aggregates ratings within a sector.
type SectorSummaryRow struct {
	Sector     string
	Companies  int
	MeanRating float64
	TopTicker  string
	TopRating  float64
}

// BaselineRow is one (sector, metric) baseline.
type BaselineRow struct {
	Sector   string
	Metric   string
	Observed int
	Samples  int
	Median   float64
	P10      float64
	P90      float64
	Spread   float64
	Defined  bool
}
