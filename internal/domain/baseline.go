package domain

// SectorBaseline holds the trimmed statistics for one (sector, metric) pair.
// Defined is false when the trimmed sample was degenerate; the numeric fields are then zero.
type SectorBaseline struct {
	Sector   string
	Metric   string
	Observed int // numeric cells before trimming
	Samples  int // trimmed sample size

	Median float64
	P10    float64 // 10th percentile
	P90    float64 // 90th percentile
	Spread float64 // population stddev of the trimmed sample / 5

	Defined bool
}

// Dropped returns the number of values removed as outliers.
func (b SectorBaseline) Dropped() int {
	return b.Observed - b.Samples
}
