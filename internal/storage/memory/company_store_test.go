package memory

import (
	"context"
	"errors"
	"testing"

	"fundamental-grader/internal/domain"
	"fundamental-grader/internal/storage"
)

func testDataset(t *testing.T, tickers ...string) *domain.Dataset {
	t.Helper()

	companies := make([]domain.Company, len(tickers))
	for i, tk := range tickers {
		companies[i] = domain.NewCompany(tk, "Tech", "Software", map[string]string{
			"Ticker": tk, "Sector": "Tech", "Industry": "Software", "PEG": "1.5",
		})
	}
	ds, err := domain.NewDataset([]string{"Ticker", "Sector", "Industry", "PEG"}, companies)
	if err != nil {
		t.Fatalf("NewDataset failed: %v", err)
	}
	return ds
}

func TestCompanyStore_InsertAndGet(t *testing.T) {
	store := NewCompanyStore()
	ctx := context.Background()

	ds := testDataset(t, "AAA", "BBB")
	if err := store.InsertDataset(ctx, "ds1", ds); err != nil {
		t.Fatalf("InsertDataset failed: %v", err)
	}

	got, err := store.GetDataset(ctx, "ds1")
	if err != nil {
		t.Fatalf("GetDataset failed: %v", err)
	}
	if got.Len() != 2 {
		t.Errorf("Len mismatch: got %d, want 2", got.Len())
	}

	c, err := store.GetCompany(ctx, "ds1", "BBB")
	if err != nil {
		t.Fatalf("GetCompany failed: %v", err)
	}
	if raw, _ := c.Raw("PEG"); raw != "1.5" {
		t.Errorf("PEG mismatch: got %q", raw)
	}
}

func TestCompanyStore_DuplicateKey(t *testing.T) {
	store := NewCompanyStore()
	ctx := context.Background()

	if err := store.InsertDataset(ctx, "ds1", testDataset(t, "AAA")); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}
	err := store.InsertDataset(ctx, "ds1", testDataset(t, "BBB"))
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestCompanyStore_NotFound(t *testing.T) {
	store := NewCompanyStore()
	ctx := context.Background()

	if _, err := store.GetDataset(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	if err := store.InsertDataset(ctx, "ds1", testDataset(t, "AAA")); err != nil {
		t.Fatalf("InsertDataset failed: %v", err)
	}
	if _, err := store.GetCompany(ctx, "ds1", "ZZZ"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestCompanyStore_InvalidInput(t *testing.T) {
	store := NewCompanyStore()
	if err := store.InsertDataset(context.Background(), "", testDataset(t, "AAA")); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestCompanyStore_ListDatasetsInInsertionOrder(t *testing.T) {
	store := NewCompanyStore()
	ctx := context.Background()

	for _, id := range []string{"z", "a", "m"} {
		if err := store.InsertDataset(ctx, id, testDataset(t, "AAA")); err != nil {
			t.Fatalf("InsertDataset failed: %v", err)
		}
	}

	ids, err := store.ListDatasets(ctx)
	if err != nil {
		t.Fatalf("ListDatasets failed: %v", err)
	}
	want := []string{"z", "a", "m"}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %q, want %q", i, ids[i], want[i])
		}
	}
}
