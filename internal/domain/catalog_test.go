package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogFor_CoreOrderAndPartition(t *testing.T) {
	c, err := CatalogFor(VariantCore)
	require.NoError(t, err)

	assert.Equal(t, []string{CategoryValuation, CategoryProfitability, CategoryGrowth, CategoryPerformance}, c.CategoryNames())
	assert.Len(t, c.Metrics(), 21)

	m, ok := c.Metric(MetricVolatilityM)
	require.True(t, ok)
	assert.Equal(t, LowerIsBetter, m.Polarity)

	_, ok = c.Metric(MetricESGScore)
	assert.False(t, ok, "KPI metrics belong to the extended variant only")
}

func TestCatalogFor_ExtendedAddsKPI(t *testing.T) {
	c, err := CatalogFor(VariantExtended)
	require.NoError(t, err)

	names := c.CategoryNames()
	require.Len(t, names, 5)
	assert.Equal(t, CategoryKPI, names[4])

	for _, name := range []string{MetricScale, MetricLaborCost, MetricOperatingLeverage, MetricCSuiteDiversity, MetricTechnologicalEnabler, MetricESGScore} {
		m, ok := c.Metric(name)
		require.True(t, ok, name)
		assert.Equal(t, HigherIsBetter, m.Polarity, name)
	}
}

func TestCatalogFor_PolarityTable(t *testing.T) {
	c, err := CatalogFor(VariantCore)
	require.NoError(t, err)

	lowerIsBetter := map[string]bool{
		MetricFwdPE: true, MetricPEG: true, MetricPS: true, MetricPB: true, MetricPFCF: true, MetricVolatilityM: true,
	}
	for _, m := range c.Metrics() {
		if lowerIsBetter[m.Name] {
			assert.Equal(t, LowerIsBetter, m.Polarity, m.Name)
		} else {
			assert.Equal(t, HigherIsBetter, m.Polarity, m.Name)
		}
	}
}

func TestNewCatalog_RejectsInvalidTables(t *testing.T) {
	tests := []struct {
		name       string
		categories []Category
	}{
		{"no categories", nil},
		{"empty category name", []Category{{Name: "", Metrics: []MetricDefinition{higher("x")}}}},
		{"empty category", []Category{{Name: "A"}}},
		{"duplicate category", []Category{
			{Name: "A", Metrics: []MetricDefinition{higher("x")}},
			{Name: "A", Metrics: []MetricDefinition{higher("y")}},
		}},
		{"metric in two categories", []Category{
			{Name: "A", Metrics: []MetricDefinition{higher("x")}},
			{Name: "B", Metrics: []MetricDefinition{lower("x")}},
		}},
		{"missing polarity", []Category{{Name: "A", Metrics: []MetricDefinition{{Name: "x"}}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(tt.categories...)
			assert.True(t, errors.Is(err, ErrInvalidCatalog), "got %v", err)
		})
	}
}

func TestCatalogFor_UnknownVariant(t *testing.T) {
	_, err := CatalogFor(Variant("bogus"))
	assert.ErrorIs(t, err, ErrInvalidCatalog)
}

func TestGradeScale_StrictlyDecreasing(t *testing.T) {
	scale := GradeScale()
	require.Len(t, scale, 13)
	assert.Equal(t, GradeAPlus, scale[0].Grade)
	assert.Equal(t, 4.3, scale[0].Points)
	assert.Equal(t, GradeF, scale[12].Grade)
	assert.Equal(t, 0.0, scale[12].Points)

	for i := 1; i < len(scale); i++ {
		assert.Less(t, scale[i].Points, scale[i-1].Points, "%s should be below %s", scale[i].Grade, scale[i-1].Grade)
	}
}
