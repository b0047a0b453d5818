// Package baseline builds per-sector robust statistics for every graded metric.
// Baselines are rebuilt from the current dataset on every run and are read-only afterwards.
package baseline

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"fundamental-grader/internal/domain"
	"fundamental-grader/internal/stats"
)

// Baseline constants.
const (
	// OutlierK is the deviation multiplier used by the outlier trimmer.
	OutlierK = 2.0

	// SpreadDivisor scales the trimmed stddev into one grade step.
	SpreadDivisor = 5.0
)

// Compute builds the baseline for one (sector, metric) sample.
// The baseline is undefined when fewer than two values survive trimming or the spread is zero.
func Compute(sector, metric string, values []float64) domain.SectorBaseline {
	b := domain.SectorBaseline{
		Sector:   sector,
		Metric:   metric,
		Observed: len(stats.Finite(values)),
	}

	trimmed := stats.TrimOutliers(values, OutlierK)
	b.Samples = len(trimmed)
	if len(trimmed) < 2 {
		return b
	}

	spread := stats.PopulationStddev(trimmed) / SpreadDivisor
	if spread == 0 {
		return b
	}

	sorted := stats.Sorted(trimmed)
	b.Median = stats.Median(sorted)
	b.P10 = stats.Percentile(sorted, 0.10)
	b.P90 = stats.Percentile(sorted, 0.90)
	b.Spread = spread
	b.Defined = true
	return b
}

// SectorSample collects the numeric values of one metric across companies.
// Missing and unparsable cells are excluded, never treated as zero.
func SectorSample(companies []domain.Company, metric string) []float64 {
	values := make([]float64, 0, len(companies))
	for _, c := range companies {
		raw, _ := c.Raw(metric)
		v := domain.ParseMetric(raw)
		if !v.OK() {
			continue
		}
		values = append(values, v.Value)
	}
	return values
}

// Builder computes a baseline table for a dataset.
type Builder struct {
	workers int
}

// NewBuilder creates a builder that fans out across sectors.
func NewBuilder() *Builder {
	return &Builder{workers: runtime.GOMAXPROCS(0)}
}

// WithWorkers bounds the number of sectors computed concurrently.
func (b *Builder) WithWorkers(n int) *Builder {
	if n < 1 {
		n = 1
	}
	b.workers = n
	return b
}

// Build computes every (sector, metric) baseline. Sectors are independent and
// computed concurrently; the returned table is fully built before it is shared.
func (b *Builder) Build(ctx context.Context, ds *domain.Dataset, metrics []string) (*Table, error) {
	sectors := ds.Sectors()
	perSector := make([][]domain.SectorBaseline, len(sectors))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)

	for i, sector := range sectors {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			companies := ds.SectorCompanies(sector)
			row := make([]domain.SectorBaseline, len(metrics))
			for j, metric := range metrics {
				row[j] = Compute(sector, metric, SectorSample(companies, metric))
			}
			perSector[i] = row
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("build baselines: %w", err)
	}

	return newTable(sectors, metrics, perSector), nil
}
