package domain

import (
	"errors"
	"fmt"
)

// Dataset errors.
var (
	// ErrEmptyTicker is returned when a row has no ticker.
	ErrEmptyTicker = errors.New("empty ticker")

	// ErrDuplicateTicker is returned when two rows share a ticker.
	ErrDuplicateTicker = errors.New("duplicate ticker")

	// ErrMissingColumn is returned when the table lacks a column the catalog or
	// identity schema requires. It signals a structurally incompatible input file.
	ErrMissingColumn = errors.New("missing required column")
)

// Dataset is an immutable table of company records with its column order.
// Pipeline stages receive a Dataset and return new values; nothing mutates it.
type Dataset struct {
	columns   []string
	columnSet map[string]struct{}
	companies []Company
	byTicker  map[string]int
}

// NewDataset validates ticker uniqueness and copies its inputs.
func NewDataset(columns []string, companies []Company) (*Dataset, error) {
	d := &Dataset{
		columns:   make([]string, len(columns)),
		columnSet: make(map[string]struct{}, len(columns)),
		companies: make([]Company, 0, len(companies)),
		byTicker:  make(map[string]int, len(companies)),
	}
	copy(d.columns, columns)
	for _, c := range columns {
		d.columnSet[c] = struct{}{}
	}

	for i, c := range companies {
		if c.Ticker == "" {
			return nil, fmt.Errorf("row %d: %w", i+1, ErrEmptyTicker)
		}
		if _, dup := d.byTicker[c.Ticker]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTicker, c.Ticker)
		}
		d.byTicker[c.Ticker] = len(d.companies)
		d.companies = append(d.companies, NewCompany(c.Ticker, c.Sector, c.Industry, c.cells))
	}

	return d, nil
}

// Columns returns the input column order.
func (d *Dataset) Columns() []string {
	out := make([]string, len(d.columns))
	copy(out, d.columns)
	return out
}

// HasColumn reports whether the table carries a column.
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.columnSet[name]
	return ok
}

// Len returns the number of companies.
func (d *Dataset) Len() int {
	return len(d.companies)
}

// Company returns the i-th company in input order.
func (d *Dataset) Company(i int) Company {
	return d.companies[i]
}

// Companies returns all companies in input order.
func (d *Dataset) Companies() []Company {
	out := make([]Company, len(d.companies))
	copy(out, d.companies)
	return out
}

// ByTicker looks up a company by ticker.
func (d *Dataset) ByTicker(ticker string) (Company, bool) {
	i, ok := d.byTicker[ticker]
	if !ok {
		return Company{}, false
	}
	return d.companies[i], true
}

// Sectors returns the distinct sectors in order of first appearance.
func (d *Dataset) Sectors() []string {
	seen := make(map[string]struct{})
	var sectors []string
	for _, c := range d.companies {
		if _, ok := seen[c.Sector]; ok {
			continue
		}
		seen[c.Sector] = struct{}{}
		sectors = append(sectors, c.Sector)
	}
	return sectors
}

// SectorCompanies returns the companies of one sector in input order.
func (d *Dataset) SectorCompanies(sector string) []Company {
	var out []Company
	for _, c := range d.companies {
		if c.Sector == sector {
			out = append(out, c)
		}
	}
	return out
}

// MissingColumns returns the names from required that the table lacks, in order.
func (d *Dataset) MissingColumns(required []string) []string {
	var missing []string
	for _, name := range required {
		if !d.HasColumn(name) {
			missing = append(missing, name)
		}
	}
	return missing
}
