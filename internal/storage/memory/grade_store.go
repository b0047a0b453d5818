package memory

import (
	"context"
	"sort"
	"sync"

	"fundamental-grader/internal/domain"
	"fundamental-grader/internal/storage"
)

type gradeKey struct {
	runID  string
	ticker string
}

// GradeStore is an in-memory implementation of storage.GradeStore.
type GradeStore struct {
	mu   sync.RWMutex
	data map[gradeKey]*domain.GradeRecord
}

// NewGradeStore creates a new in-memory grade store.
func NewGradeStore() *GradeStore {
	return &GradeStore{
		data: make(map[gradeKey]*domain.GradeRecord),
	}
}

// InsertBulk adds records atomically. Fails entire batch on any duplicate.
func (s *GradeStore) InsertBulk(_ context.Context, records []*domain.GradeRecord) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Check for duplicates first (atomic: all or nothing)
	seen := make(map[gradeKey]struct{}, len(records))
	for _, r := range records {
		if r == nil || r.RunID == "" || r.Ticker == "" {
			return storage.ErrInvalidInput
		}
		key := gradeKey{r.RunID, r.Ticker}
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, dup := seen[key]; dup {
			return storage.ErrDuplicateKey
		}
		seen[key] = struct{}{}
	}

	for _, r := range records {
		s.data[gradeKey{r.RunID, r.Ticker}] = r.Clone()
	}
	return nil
}

// GetByRun retrieves all grades for a run, ordered by position ASC.
func (s *GradeStore) GetByRun(_ context.Context, runID string) ([]*domain.GradeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.GradeRecord
	for k, r := range s.data {
		if k.runID == runID {
			result = append(result, r.Clone())
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Position != result[j].Position {
			return result[i].Position < result[j].Position
		}
		return result[i].Ticker < result[j].Ticker
	})

	return result, nil
}

// GetByRunTicker retrieves one grade. Returns ErrNotFound if not exists.
func (s *GradeStore) GetByRunTicker(_ context.Context, runID, ticker string) (*domain.GradeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.data[gradeKey{runID, ticker}]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return r.Clone(), nil
}

// GetByTicker retrieves a ticker's grades across runs, ordered by created_at ASC.
func (s *GradeStore) GetByTicker(_ context.Context, ticker string) ([]*domain.GradeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.GradeRecord
	for k, r := range s.data {
		if k.ticker == ticker {
			result = append(result, r.Clone())
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt != result[j].CreatedAt {
			return result[i].CreatedAt < result[j].CreatedAt
		}
		return result[i].RunID < result[j].RunID
	})

	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.GradeStore = (*GradeStore)(nil)
