package ingestion

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"fundamental-grader/internal/domain"
)

// XLSXLoader reads a screener export from an Excel workbook.
type XLSXLoader struct {
	// Sheet names the worksheet to read. Empty means the first sheet.
	Sheet string
}

// Load reads the configured sheet. The first row is the header.
func (l XLSXLoader) Load(ctx context.Context, r io.Reader) (*domain.Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := l.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrEmptyDataset
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyDataset
	}

	return buildDataset(ctx, rows[0], rows[1:])
}
