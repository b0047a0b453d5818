package grading

import (
	"testing"

	"github.com/stretchr/testify/require"

	"fundamental-grader/internal/domain"
)

// row describes one test company; cells override empty metric cells.
type row struct {
	ticker string
	sector string
	cells  map[string]string
}

// buildDataset creates a dataset carrying every column the variant requires.
func buildDataset(t *testing.T, variant domain.Variant, rows ...row) *domain.Dataset {
	t.Helper()

	catalog, err := domain.CatalogFor(variant)
	require.NoError(t, err)

	columns := append([]string{}, IdentityColumns...)
	columns = append(columns, domain.ColumnPrice, domain.ColumnTargetPrice)
	for _, m := range catalog.Metrics() {
		columns = append(columns, m.Name)
	}

	companies := make([]domain.Company, len(rows))
	for i, r := range rows {
		cells := map[string]string{
			domain.ColumnTicker:   r.ticker,
			domain.ColumnSector:   r.sector,
			domain.ColumnIndustry: "Test Industry",
		}
		for k, v := range r.cells {
			cells[k] = v
		}
		companies[i] = domain.NewCompany(r.ticker, r.sector, "Test Industry", cells)
	}

	ds, err := domain.NewDataset(columns, companies)
	require.NoError(t, err)
	return ds
}

func gradeIndex(g domain.Grade) int {
	for i, gp := range domain.GradeScale() {
		if gp.Grade == g {
			return i
		}
	}
	return -1
}
