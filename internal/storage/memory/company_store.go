package memory

import (
	"context"
	"sync"

	"fundamental-grader/internal/domain"
	"fundamental-grader/internal/storage"
)

// CompanyStore is an in-memory implementation of storage.CompanyStore.
type CompanyStore struct {
	mu    sync.RWMutex
	data  map[string]*domain.Dataset // keyed by dataset_id
	order []string
}

// NewCompanyStore creates a new in-memory company store.
func NewCompanyStore() *CompanyStore {
	return &CompanyStore{
		data: make(map[string]*domain.Dataset),
	}
}

// InsertDataset stores a dataset. Returns ErrDuplicateKey if datasetID exists.
// Datasets are immutable, so the pointer is kept as is.
func (s *CompanyStore) InsertDataset(_ context.Context, datasetID string, ds *domain.Dataset) error {
	if datasetID == "" || ds == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[datasetID]; exists {
		return storage.ErrDuplicateKey
	}
	s.data[datasetID] = ds
	s.order = append(s.order, datasetID)
	return nil
}

// GetDataset retrieves a dataset. Returns ErrNotFound if not exists.
func (s *CompanyStore) GetDataset(_ context.Context, datasetID string) (*domain.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ds, exists := s.data[datasetID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return ds, nil
}

// GetCompany retrieves one company. Returns ErrNotFound if not exists.
func (s *CompanyStore) GetCompany(_ context.Context, datasetID, ticker string) (domain.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ds, exists := s.data[datasetID]
	if !exists {
		return domain.Company{}, storage.ErrNotFound
	}
	c, ok := ds.ByTicker(ticker)
	if !ok {
		return domain.Company{}, storage.ErrNotFound
	}
	return c, nil
}

// ListDatasets returns all dataset IDs in insertion order.
func (s *CompanyStore) ListDatasets(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]string(nil), s.order...), nil
}

// Verify interface compliance at compile time.
var _ storage.CompanyStore = (*CompanyStore)(nil)
