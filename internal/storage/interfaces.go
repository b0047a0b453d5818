package storage

import (
	"context"

	"fundamental-grader/internal/domain"
)

// CompanyStore provides access to imported company datasets.
// A dataset is stored whole, with its column order and row order.
type CompanyStore interface {
	// InsertDataset stores a dataset under datasetID. Returns ErrDuplicateKey if datasetID exists.
	InsertDataset(ctx context.Context, datasetID string, ds *domain.Dataset) error

	// GetDataset rebuilds a stored dataset. Returns ErrNotFound if not exists.
	GetDataset(ctx context.Context, datasetID string) (*domain.Dataset, error)

	// GetCompany retrieves one company of a dataset. Returns ErrNotFound if not exists.
	GetCompany(ctx context.Context, datasetID, ticker string) (domain.Company, error)

	// ListDatasets returns all dataset IDs in insertion order.
	ListDatasets(ctx context.Context) ([]string, error)
}

// RunStore provides access to grading_runs storage.
type RunStore interface {
	// Insert adds a run. Returns ErrDuplicateKey if run_id exists.
	Insert(ctx context.Context, run *domain.GradingRun) error

	// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, runID string) (*domain.GradingRun, error)

	// GetByDataset retrieves all runs of a dataset, ordered by created_at ASC.
	GetByDataset(ctx context.Context, datasetID string) ([]*domain.GradingRun, error)
}

// GradeStore provides access to company_grades storage. Append-only.
type GradeStore interface {
	// InsertBulk adds the grades of one or more runs. Fails entire batch on any
	// duplicate (run_id, ticker).
	InsertBulk(ctx context.Context, records []*domain.GradeRecord) error

	// GetByRun retrieves all grades for a run, ordered by position ASC.
	GetByRun(ctx context.Context, runID string) ([]*domain.GradeRecord, error)

	// GetByRunTicker retrieves one grade. Returns ErrNotFound if not exists.
	GetByRunTicker(ctx context.Context, runID, ticker string) (*domain.GradeRecord, error)

	// GetByTicker retrieves a ticker's grades across runs, ordered by created_at ASC.
	GetByTicker(ctx context.Context, ticker string) ([]*domain.GradeRecord, error)
}
