package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"fundamental-grader/internal/domain"
	"fundamental-grader/internal/storage"
)

// CompanyStore implements storage.CompanyStore using PostgreSQL.
// Raw cells are kept in a JSONB column keyed by input column name.
type CompanyStore struct {
	pool *Pool
}

// NewCompanyStore creates a new CompanyStore.
func NewCompanyStore(pool *Pool) *CompanyStore {
	return &CompanyStore{pool: pool}
}

// Compile-time interface check.
var _ storage.CompanyStore = (*CompanyStore)(nil)

// InsertDataset stores a dataset and all its rows in one transaction.
// Returns ErrDuplicateKey if datasetID exists.
func (s *CompanyStore) InsertDataset(ctx context.Context, datasetID string, ds *domain.Dataset) error {
	if datasetID == "" || ds == nil {
		return storage.ErrInvalidInput
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO company_datasets (dataset_id, columns) VALUES ($1, $2)
	`, datasetID, ds.Columns())
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert dataset: %w", err)
	}

	query := `
		INSERT INTO company_records (
			dataset_id, ticker, position, sector, industry, cells
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	batch := &pgx.Batch{}
	for i, c := range ds.Companies() {
		batch.Queue(query, datasetID, c.Ticker, i, c.Sector, c.Industry, c.Cells())
	}

	br := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert company record: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetDataset rebuilds a stored dataset in its original row order.
// Returns ErrNotFound if not exists.
func (s *CompanyStore) GetDataset(ctx context.Context, datasetID string) (*domain.Dataset, error) {
	var columns []string
	err := s.pool.QueryRow(ctx, `
		SELECT columns FROM company_datasets WHERE dataset_id = $1
	`, datasetID).Scan(&columns)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get dataset: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT ticker, sector, industry, cells
		FROM company_records
		WHERE dataset_id = $1
		ORDER BY position ASC
	`, datasetID)
	if err != nil {
		return nil, fmt.Errorf("get company records: %w", err)
	}
	defer rows.Close()

	companies, err := scanCompanies(rows)
	if err != nil {
		return nil, err
	}

	ds, err := domain.NewDataset(columns, companies)
	if err != nil {
		return nil, fmt.Errorf("rebuild dataset %s: %w", datasetID, err)
	}
	return ds, nil
}

// GetCompany retrieves one company of a dataset. Returns ErrNotFound if not exists.
func (s *CompanyStore) GetCompany(ctx context.Context, datasetID, ticker string) (domain.Company, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT ticker, sector, industry, cells
		FROM company_records
		WHERE dataset_id = $1 AND ticker = $2
	`, datasetID, ticker)

	c, err := scanCompany(row)
	if err != nil {
		if isNotFoundError(err) {
			return domain.Company{}, storage.ErrNotFound
		}
		return domain.Company{}, fmt.Errorf("get company: %w", err)
	}
	return c, nil
}

// ListDatasets returns all dataset IDs in insertion order.
func (s *CompanyStore) ListDatasets(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT dataset_id FROM company_datasets ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}
	defer rows.Close()

	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan dataset ids: %w", err)
	}
	return ids, nil
}

// scanCompany scans a single row into a Company.
func scanCompany(row pgx.Row) (domain.Company, error) {
	var ticker, sector, industry string
	var cells map[string]string

	if err := row.Scan(&ticker, &sector, &industry, &cells); err != nil {
		return domain.Company{}, err
	}
	return domain.NewCompany(ticker, sector, industry, cells), nil
}

// scanCompanies scans multiple rows into companies.
func scanCompanies(rows pgx.Rows) ([]domain.Company, error) {
	var companies []domain.Company

	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("scan company row: %w", err)
		}
		companies = append(companies, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate company rows: %w", err)
	}

	return companies, nil
}
