package ingestion

import "errors"

// Ingestion errors.
var (
	// ErrEmptyDataset is returned when the input has no header row.
	ErrEmptyDataset = errors.New("empty dataset: no header row")

	// ErrUnsupportedFormat is returned for file extensions without a loader.
	ErrUnsupportedFormat = errors.New("unsupported input format")

	// ErrDuplicateColumn is returned when two header cells share a name.
	ErrDuplicateColumn = errors.New("duplicate column")
)
