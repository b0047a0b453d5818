package clickhouse

import (
	"context"
	"fmt"

	"fundamental-grader/internal/domain"
	"fundamental-grader/internal/storage"
)

// GradeStore implements storage.GradeStore using ClickHouse.
type GradeStore struct {
	conn *Conn
}

// NewGradeStore creates a new GradeStore.
func NewGradeStore(conn *Conn) *GradeStore {
	return &GradeStore{conn: conn}
}

// Compile-time interface check.
var _ storage.GradeStore = (*GradeStore)(nil)

const gradeColumns = `
	run_id, ticker, position, sector, industry, variant,
	category_names, category_scores, category_letters, metric_grades,
	overall_rating, normalized_rating, percent_diff, issue_count, created_at
`

// InsertBulk adds records atomically. Fails entire batch on any duplicate.
// MergeTree does not enforce uniqueness, so keys are checked before insert.
func (s *GradeStore) InsertBulk(ctx context.Context, records []*domain.GradeRecord) error {
	if len(records) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		if r == nil || r.RunID == "" || r.Ticker == "" {
			return storage.ErrInvalidInput
		}
		key := r.RunID + "|" + r.Ticker
		if _, exists := seen[key]; exists {
			return storage.ErrDuplicateKey
		}
		seen[key] = struct{}{}
	}

	// Check for duplicates against existing rows
	for _, r := range records {
		exists, err := s.exists(ctx, r.RunID, r.Ticker)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `INSERT INTO company_grades (`+gradeColumns+`)`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range records {
		metricGrades := r.MetricGrades
		if metricGrades == nil {
			metricGrades = map[string]string{}
		}
		err = batch.Append(
			r.RunID, r.Ticker, uint32(r.Position), r.Sector, r.Industry, string(r.Variant),
			nonNilStrings(r.CategoryNames), nonNilFloats(r.CategoryScores), nonNilStrings(r.CategoryLetters), metricGrades,
			r.OverallRating, r.NormalizedRating, r.PercentDiff, uint32(r.IssueCount), r.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByRun retrieves all grades for a run, ordered by position ASC.
func (s *GradeStore) GetByRun(ctx context.Context, runID string) ([]*domain.GradeRecord, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT `+gradeColumns+`
		FROM company_grades
		WHERE run_id = ?
		ORDER BY position ASC, ticker ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query grades by run: %w", err)
	}
	defer rows.Close()

	return scanGradeRecords(rows)
}

// GetByRunTicker retrieves one grade. Returns ErrNotFound if not exists.
func (s *GradeStore) GetByRunTicker(ctx context.Context, runID, ticker string) (*domain.GradeRecord, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT `+gradeColumns+`
		FROM company_grades
		WHERE run_id = ? AND ticker = ?
		LIMIT 1
	`, runID, ticker)
	if err != nil {
		return nil, fmt.Errorf("query grade: %w", err)
	}
	defer rows.Close()

	records, err := scanGradeRecords(rows)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, storage.ErrNotFound
	}
	return records[0], nil
}

// GetByTicker retrieves a ticker's grades across runs, ordered by created_at ASC.
func (s *GradeStore) GetByTicker(ctx context.Context, ticker string) ([]*domain.GradeRecord, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT `+gradeColumns+`
		FROM company_grades
		WHERE ticker = ?
		ORDER BY created_at ASC, run_id ASC
	`, ticker)
	if err != nil {
		return nil, fmt.Errorf("query grades by ticker: %w", err)
	}
	defer rows.Close()

	return scanGradeRecords(rows)
}

func (s *GradeStore) exists(ctx context.Context, runID, ticker string) (bool, error) {
	var count uint64
	err := s.conn.QueryRow(ctx, `
		SELECT count(*) FROM company_grades
		WHERE run_id = ? AND ticker = ?
	`, runID, ticker).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// chRows is the subset of driver.Rows used for scanning.
type chRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

func scanGradeRecords(rows chRows) ([]*domain.GradeRecord, error) {
	var records []*domain.GradeRecord

	for rows.Next() {
		var r domain.GradeRecord
		var position, issueCount uint32
		var variant string

		err := rows.Scan(
			&r.RunID, &r.Ticker, &position, &r.Sector, &r.Industry, &variant,
			&r.CategoryNames, &r.CategoryScores, &r.CategoryLetters, &r.MetricGrades,
			&r.OverallRating, &r.NormalizedRating, &r.PercentDiff, &issueCount, &r.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan grade row: %w", err)
		}

		r.Position = int(position)
		r.IssueCount = int(issueCount)
		r.Variant = domain.Variant(variant)
		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate grade rows: %w", err)
	}

	return records, nil
}

func nonNilStrings(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

func nonNilFloats(v []float64) []float64 {
	if v == nil {
		return []float64{}
	}
	return v
}
