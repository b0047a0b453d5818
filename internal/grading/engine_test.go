package grading

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundamental-grader/internal/domain"
)

func peerRows() []row {
	fwdPE := []string{"7", "8", "10", "12", "14", "16", "20"}
	rows := make([]row, len(fwdPE))
	for i, v := range fwdPE {
		rows[i] = row{
			ticker: "T" + strconv.Itoa(i),
			sector: "Tech",
			cells:  map[string]string{domain.MetricFwdPE: v},
		}
	}
	rows[0].cells[domain.ColumnPrice] = "50"
	rows[0].cells[domain.ColumnTargetPrice] = "60"
	return rows
}

func metricGrade(t *testing.T, g domain.CompanyGrading, category, metric string) domain.Grade {
	t.Helper()
	cs, ok := g.Category(category)
	require.True(t, ok, category)
	for _, mg := range cs.Grades {
		if mg.Metric == metric {
			return mg.Grade
		}
	}
	t.Fatalf("metric %s not graded", metric)
	return ""
}

func TestNewEngine_Defaults(t *testing.T) {
	e, err := NewEngine(Options{})
	require.NoError(t, err)
	assert.Equal(t, domain.VariantCore, e.Options().Variant)
	assert.Positive(t, e.Options().Workers)
	assert.Len(t, e.Catalog().Categories(), 4)

	_, err = NewEngine(Options{Variant: "bogus"})
	assert.Error(t, err)
}

func TestEngine_MissingColumnIsFatal(t *testing.T) {
	companies := []domain.Company{domain.NewCompany("AAA", "Tech", "Software", nil)}
	ds, err := domain.NewDataset([]string{"Ticker", "Sector", "Industry", domain.MetricFwdPE}, companies)
	require.NoError(t, err)

	e, err := NewEngine(DefaultOptions(domain.VariantCore))
	require.NoError(t, err)

	_, err = e.Run(context.Background(), ds)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMissingColumn))
	assert.Contains(t, err.Error(), domain.MetricPEG)
	assert.NotContains(t, err.Error(), domain.MetricFwdPE)
}

func TestEngine_EmptyDataset(t *testing.T) {
	e, err := NewEngine(DefaultOptions(domain.VariantCore))
	require.NoError(t, err)

	_, err = e.Run(context.Background(), buildDataset(t, domain.VariantCore))
	assert.ErrorIs(t, err, ErrNoCompanies)
}

func TestEngine_PeerScenario(t *testing.T) {
	ds := buildDataset(t, domain.VariantCore, peerRows()...)
	e, err := NewEngine(DefaultOptions(domain.VariantCore))
	require.NoError(t, err)

	result, err := e.Run(context.Background(), ds)
	require.NoError(t, err)
	require.Len(t, result.Companies, 7)
	assert.False(t, result.Normalized)

	cheap := result.Companies[0]
	dear := result.Companies[6]
	assert.Equal(t, "T0", cheap.Ticker)
	assert.Equal(t, domain.GradeAPlus, metricGrade(t, cheap, domain.CategoryValuation, domain.MetricFwdPE))
	assert.Equal(t, domain.GradeF, metricGrade(t, dear, domain.CategoryValuation, domain.MetricFwdPE))

	// Every other metric has no peers, so it falls back to C.
	assert.Equal(t, domain.GradeC, metricGrade(t, cheap, domain.CategoryValuation, domain.MetricPEG))
	perf, _ := cheap.Category(domain.CategoryPerformance)
	assert.Equal(t, 2.0, perf.Score)

	require.NotNil(t, cheap.PercentDiff)
	assert.Equal(t, 20.0, *cheap.PercentDiff)
	assert.Nil(t, dear.PercentDiff)

	b, ok := result.Baselines.Lookup("Tech", domain.MetricFwdPE)
	require.True(t, ok)
	assert.InDelta(t, 7.6, b.P10, 1e-9)
	assert.InDelta(t, 12, b.Median, 1e-9)

	kinds := map[domain.IssueKind]int{}
	for _, is := range result.Issues() {
		kinds[is.Kind]++
	}
	// 20 core metrics minus Fwd P/E, for 7 companies.
	assert.Equal(t, 19*7, kinds[domain.IssueMissingValue])
	assert.Equal(t, 19*7, kinds[domain.IssueBaselineUnavailable])
}

func TestEngine_DeterministicAcrossWorkerCounts(t *testing.T) {
	ds := buildDataset(t, domain.VariantExtended, kpiRows()...)

	var results []*Result
	for _, workers := range []int{1, 3, 16} {
		opts := DefaultOptions(domain.VariantExtended)
		opts.Workers = workers
		e, err := NewEngine(opts)
		require.NoError(t, err)
		r, err := e.Run(context.Background(), ds)
		require.NoError(t, err)
		results = append(results, r)
	}
	for _, r := range results[1:] {
		assert.Equal(t, results[0].Companies, r.Companies)
		assert.Equal(t, results[0].Baselines.All(), r.Baselines.All())
	}
}

// kpiRows builds a sector where KPI and performance rank companies in opposite order.
func kpiRows() []row {
	kpi := []string{
		domain.MetricScale, domain.MetricLaborCost, domain.MetricOperatingLeverage,
		domain.MetricCSuiteDiversity, domain.MetricTechnologicalEnabler, domain.MetricESGScore,
	}
	perf := []string{
		domain.MetricPerfMonth, domain.MetricPerfQuart, domain.MetricPerfHalf,
		domain.MetricPerfYear, domain.MetricPerfYTD,
	}

	rows := make([]row, 5)
	for i := range rows {
		n := i + 1
		cells := map[string]string{domain.MetricVolatilityM: strconv.Itoa(n)}
		for _, m := range kpi {
			cells[m] = strconv.Itoa(n)
		}
		for _, m := range perf {
			cells[m] = strconv.Itoa(6 - n)
		}
		rows[i] = row{ticker: "K" + strconv.Itoa(n), sector: "Industrials", cells: cells}
	}
	return rows
}

func TestEngine_KPILetterFromOwnScore(t *testing.T) {
	ds := buildDataset(t, domain.VariantExtended, kpiRows()...)
	e, err := NewEngine(DefaultOptions(domain.VariantExtended))
	require.NoError(t, err)

	result, err := e.Run(context.Background(), ds)
	require.NoError(t, err)

	top := result.Companies[4]
	require.Equal(t, "K5", top.Ticker)

	kpi, ok := top.Category(domain.CategoryKPI)
	require.True(t, ok)
	perf, ok := top.Category(domain.CategoryPerformance)
	require.True(t, ok)

	assert.Equal(t, 4.3, kpi.Score)
	assert.Equal(t, domain.GradeAPlus, kpi.Letter)
	assert.Equal(t, 0.0, perf.Score)
	assert.Equal(t, domain.GradeF, perf.Letter)
}

func TestEngine_ExtendedNormalizes(t *testing.T) {
	ds := buildDataset(t, domain.VariantExtended, kpiRows()...)
	e, err := NewEngine(DefaultOptions(domain.VariantExtended))
	require.NoError(t, err)

	result, err := e.Run(context.Background(), ds)
	require.NoError(t, err)
	require.True(t, result.Normalized)

	maxSeen := 0.0
	for _, c := range result.Companies {
		require.NotNil(t, c.NormalizedRating)
		assert.Len(t, c.Categories, 5)
		if *c.NormalizedRating > maxSeen {
			maxSeen = *c.NormalizedRating
		}
	}
	assert.Equal(t, 100.0, maxSeen)
}

func TestEngine_CanceledContext(t *testing.T) {
	ds := buildDataset(t, domain.VariantCore, peerRows()...)
	e, err := NewEngine(DefaultOptions(domain.VariantCore))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = e.Run(ctx, ds)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_RunWithHook_StageOrder(t *testing.T) {
	ds := buildDataset(t, domain.VariantCore, peerRows()...)
	e, err := NewEngine(DefaultOptions(domain.VariantCore))
	require.NoError(t, err)

	var stages []string
	_, err = e.RunWithHook(context.Background(), ds, func(stage string, _ time.Duration) {
		stages = append(stages, stage)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{StageBaselines, StageGrading, StageComposition}, stages)
}
