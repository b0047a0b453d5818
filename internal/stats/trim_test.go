package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrimOutliers_KeepsCleanSample(t *testing.T) {
	sample := []float64{8, 10, 12, 14, 16}
	assert.Equal(t, sample, TrimOutliers(sample, 2))
}

func TestTrimOutliers_DropsExtremeValue(t *testing.T) {
	// mean = 105.2, sample std ~ 314.5, |1000 - 105.2| > 2 * 314.5
	sample := []float64{5, 6, 5, 7, 6, 5, 6, 7, 5, 1000}
	got := TrimOutliers(sample, 2)
	assert.NotContains(t, got, 1000.0)
	assert.Len(t, got, 9)
}

func TestTrimOutliers_SecondPassUsesTrimmedMoments(t *testing.T) {
	// Pass 1 drops 1000 only; 40 survives because the first stddev is inflated.
	// Pass 2 recomputes on the survivors and drops 40.
	sample := []float64{10, 11, 9, 10, 12, 8, 10, 11, 9, 10, 40, 1000}
	got := TrimOutliers(sample, 2)
	assert.NotContains(t, got, 1000.0)
	assert.NotContains(t, got, 40.0)
	assert.Len(t, got, 10)
}

func TestTrimOutliers_IgnoresNaN(t *testing.T) {
	got := TrimOutliers([]float64{8, math.NaN(), 10, 12, 14, 16}, 2)
	assert.Equal(t, []float64{8, 10, 12, 14, 16}, got)
}

func TestTrimOutliers_DegenerateSamples(t *testing.T) {
	tests := []struct {
		name   string
		sample []float64
	}{
		{"empty", nil},
		{"single value", []float64{3}},
		{"all NaN", []float64{math.NaN(), math.NaN()}},
		{"zero variance", []float64{4, 4, 4, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, TrimOutliers(tt.sample, 2))
		})
	}
}

func TestTrimOutliers_Idempotent(t *testing.T) {
	samples := [][]float64{
		{8, 10, 12, 14, 16},
		{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
		{-3.5, -1, 0, 0.5, 2, 2.5, 4},
	}
	for _, s := range samples {
		once := TrimOutliers(s, 2)
		twice := TrimOutliers(once, 2)
		assert.Equal(t, once, twice)
	}
}
