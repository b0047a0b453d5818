package memory

import (
	"context"
	"sort"
	"sync"

	"fundamental-grader/internal/domain"
	"fundamental-grader/internal/storage"
)

// RunStore is an in-memory implementation of storage.RunStore.
type RunStore struct {
	mu   sync.RWMutex
	data map[string]*domain.GradingRun // keyed by run_id
}

// NewRunStore creates a new in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{
		data: make(map[string]*domain.GradingRun),
	}
}

// Insert adds a run. Returns ErrDuplicateKey if run_id exists.
func (s *RunStore) Insert(_ context.Context, run *domain.GradingRun) error {
	if run == nil || run.RunID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[run.RunID]; exists {
		return storage.ErrDuplicateKey
	}

	runCopy := *run
	s.data[run.RunID] = &runCopy
	return nil
}

// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
func (s *RunStore) GetByID(_ context.Context, runID string) (*domain.GradingRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, exists := s.data[runID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	runCopy := *run
	return &runCopy, nil
}

// GetByDataset retrieves all runs of a dataset, ordered by created_at ASC.
func (s *RunStore) GetByDataset(_ context.Context, datasetID string) ([]*domain.GradingRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.GradingRun
	for _, run := range s.data {
		if run.DatasetID == datasetID {
			runCopy := *run
			result = append(result, &runCopy)
		}
	}

	// Sort by created_at ASC, run_id ASC
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt != result[j].CreatedAt {
			return result[i].CreatedAt < result[j].CreatedAt
		}
		return result[i].RunID < result[j].RunID
	})

	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.RunStore = (*RunStore)(nil)
