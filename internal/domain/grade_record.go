package domain

// GradeRecord is the persisted form of a company grading within one run.
// Corresponds to the company_grades table.
type GradeRecord struct {
	RunID    string
	Ticker   string
	Position int // input row order within the run
	Sector   string
	Industry string
	Variant  Variant

	CategoryNames   []string
	CategoryScores  []float64
	CategoryLetters []string
	MetricGrades    map[string]string // metric name -> letter

	OverallRating    float64
	NormalizedRating *float64
	PercentDiff      *float64
	IssueCount       int

	CreatedAt int64 // Unix ms
}

// NewGradeRecord flattens a grading result for storage.
func NewGradeRecord(runID string, variant Variant, position int, g CompanyGrading, createdAt int64) *GradeRecord {
	r := &GradeRecord{
		RunID:            runID,
		Ticker:           g.Ticker,
		Position:         position,
		Sector:           g.Sector,
		Industry:         g.Industry,
		Variant:          variant,
		CategoryNames:    make([]string, len(g.Categories)),
		CategoryScores:   make([]float64, len(g.Categories)),
		CategoryLetters:  make([]string, len(g.Categories)),
		MetricGrades:     make(map[string]string),
		OverallRating:    g.OverallRating,
		NormalizedRating: g.NormalizedRating,
		PercentDiff:      g.PercentDiff,
		IssueCount:       len(g.Issues),
		CreatedAt:        createdAt,
	}
	for i, c := range g.Categories {
		r.CategoryNames[i] = c.Category
		r.CategoryScores[i] = c.Score
		r.CategoryLetters[i] = string(c.Letter)
		for _, mg := range c.Grades {
			r.MetricGrades[mg.Metric] = string(mg.Grade)
		}
	}
	return r
}

// Clone returns a deep copy.
func (r *GradeRecord) Clone() *GradeRecord {
	c := *r
	c.CategoryNames = append([]string(nil), r.CategoryNames...)
	c.CategoryScores = append([]float64(nil), r.CategoryScores...)
	c.CategoryLetters = append([]string(nil), r.CategoryLetters...)
	c.MetricGrades = make(map[string]string, len(r.MetricGrades))
	for k, v := range r.MetricGrades {
		c.MetricGrades[k] = v
	}
	if r.NormalizedRating != nil {
		v := *r.NormalizedRating
		c.NormalizedRating = &v
	}
	if r.PercentDiff != nil {
		v := *r.PercentDiff
		c.PercentDiff = &v
	}
	return &c
}
