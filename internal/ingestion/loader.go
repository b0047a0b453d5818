// Package ingestion loads company screener tables into immutable datasets.
package ingestion

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fundamental-grader/internal/domain"
)

// Loader parses one tabular input into a dataset.
type Loader interface {
	Load(ctx context.Context, r io.Reader) (*domain.Dataset, error)
}

// Format identifies an input encoding.
type Format string

// Supported formats.
const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatFromPath derives the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// LoaderFor returns the loader for a format.
func LoaderFor(f Format) (Loader, error) {
	switch f {
	case FormatCSV:
		return CSVLoader{}, nil
	case FormatXLSX:
		return XLSXLoader{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(f))
	}
}

// LoadFile opens path and loads it with the loader for its extension.
func LoadFile(ctx context.Context, path string) (*domain.Dataset, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	loader, err := LoaderFor(format)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	ds, err := loader.Load(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", filepath.Base(path), err)
	}
	return ds, nil
}
