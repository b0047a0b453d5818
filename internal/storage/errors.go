package storage

import "errors"

var (
	// ErrNotFound means no dataset, run or grade matches the lookup key.
	ErrNotFound = errors.New("storage: record not found")

	// ErrDuplicateKey means the key is already stored. Datasets, runs and
	// grades are write-once; callers sharing a deterministic ID treat this
	// as "already persisted".
	ErrDuplicateKey = errors.New("storage: record already exists")

	// ErrInvalidInput rejects records missing a dataset ID, run ID or ticker.
	ErrInvalidInput = errors.New("storage: invalid record")
)
