package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"fundamental-grader/internal/domain"
	"fundamental-grader/internal/storage"
)

// RunStore implements storage.RunStore using PostgreSQL.
type RunStore struct {
	pool *Pool
}

// NewRunStore creates a new RunStore.
func NewRunStore(pool *Pool) *RunStore {
	return &RunStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RunStore = (*RunStore)(nil)

// Insert adds a run. Returns ErrDuplicateKey if run_id exists.
func (s *RunStore) Insert(ctx context.Context, run *domain.GradingRun) error {
	if run == nil || run.RunID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO grading_runs (
			run_id, dataset_id, variant, normalize, company_count, issue_count, undefined_baselines, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.pool.Exec(ctx, query,
		run.RunID,
		run.DatasetID,
		string(run.Variant),
		run.Normalize,
		run.CompanyCount,
		run.IssueCount,
		run.UndefinedBaselines,
		run.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

const runColumns = `run_id, dataset_id, variant, normalize, company_count, issue_count, undefined_baselines, created_at`

// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
func (s *RunStore) GetByID(ctx context.Context, runID string) (*domain.GradingRun, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+runColumns+` FROM grading_runs WHERE run_id = $1`, runID)
	run, err := scanRun(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get run by id: %w", err)
	}
	return run, nil
}

// GetByDataset retrieves all runs of a dataset, ordered by created_at ASC.
func (s *RunStore) GetByDataset(ctx context.Context, datasetID string) ([]*domain.GradingRun, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+runColumns+`
		FROM grading_runs
		WHERE dataset_id = $1
		ORDER BY created_at ASC, run_id ASC
	`, datasetID)
	if err != nil {
		return nil, fmt.Errorf("get runs by dataset: %w", err)
	}
	defer rows.Close()

	var runs []*domain.GradingRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run rows: %w", err)
	}
	return runs, nil
}

func scanRun(row pgx.Row) (*domain.GradingRun, error) {
	var run domain.GradingRun
	var variant string

	err := row.Scan(
		&run.RunID,
		&run.DatasetID,
		&variant,
		&run.Normalize,
		&run.CompanyCount,
		&run.IssueCount,
		&run.UndefinedBaselines,
		&run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	run.Variant = domain.Variant(variant)
	return &run, nil
}
