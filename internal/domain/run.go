package domain

// GradingRun describes one persisted grading run.
// Corresponds to the grading_runs table.
type GradingRun struct {
	RunID     string
	DatasetID string
	Variant   Variant
	Normalize bool

	CompanyCount       int
	IssueCount         int
	UndefinedBaselines int

	CreatedAt int64 // Unix ms
}
