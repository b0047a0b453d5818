package ingestion

import (
	"context"
	"fmt"
	"strings"

	"fundamental-grader/internal/domain"
)

// identityColumns are required to build a company record.
var identityColumns = []string{domain.ColumnTicker, domain.ColumnSector, domain.ColumnIndustry}

// isIndexHeader reports whether a leading header cell is a positional index
// written by a dataframe export rather than a real column.
func isIndexHeader(name string) bool {
	name = strings.TrimSpace(name)
	return name == "" || strings.HasPrefix(name, "Unnamed: ")
}

// buildDataset turns a header row and data rows into a dataset.
// Row order is preserved. Rows shorter than the header are padded with empty
// cells and rows with no content are skipped.
func buildDataset(ctx context.Context, header []string, rows [][]string) (*domain.Dataset, error) {
	if len(header) == 0 {
		return nil, ErrEmptyDataset
	}

	offset := 0
	if isIndexHeader(header[0]) {
		offset = 1
	}

	columns := make([]string, 0, len(header)-offset)
	seen := make(map[string]struct{}, len(header))
	for _, h := range header[offset:] {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, name)
		}
		seen[name] = struct{}{}
		columns = append(columns, name)
	}

	var missing []string
	for _, col := range identityColumns {
		if _, ok := seen[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrMissingColumn, strings.Join(missing, ", "))
	}

	companies := make([]domain.Company, 0, len(rows))
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if blankRow(row) {
			continue
		}

		cells := make(map[string]string, len(columns))
		for j, col := range columns {
			idx := j + offset
			if idx < len(row) {
				cells[col] = strings.TrimSpace(row[idx])
			} else {
				cells[col] = ""
			}
		}

		c := domain.NewCompany(cells[domain.ColumnTicker], cells[domain.ColumnSector], cells[domain.ColumnIndustry], cells)
		if c.Ticker == "" {
			return nil, fmt.Errorf("data row %d: %w", i+1, domain.ErrEmptyTicker)
		}
		companies = append(companies, c)
	}

	return domain.NewDataset(columns, companies)
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
