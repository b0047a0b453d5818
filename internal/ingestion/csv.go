package ingestion

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"fundamental-grader/internal/domain"
)

// CSVLoader reads a comma-separated screener export.
type CSVLoader struct {
	// Comma overrides the field delimiter. Zero means ','.
	Comma rune
}

// Load parses the header row and every data row.
func (l CSVLoader) Load(ctx context.Context, r io.Reader) (*domain.Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	if l.Comma != 0 {
		reader.Comma = l.Comma
	}

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyDataset
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv rows: %w", err)
	}

	return buildDataset(ctx, header, rows)
}
