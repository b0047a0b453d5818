package baseline

import "fundamental-grader/internal/domain"

type tableKey struct {
	sector string
	metric string
}

// Table is the read-only baseline lookup for one grading run.
type Table struct {
	sectors []string
	metrics []string
	entries map[tableKey]domain.SectorBaseline
}

func newTable(sectors, metrics []string, rows [][]domain.SectorBaseline) *Table {
	t := &Table{
		sectors: append([]string(nil), sectors...),
		metrics: append([]string(nil), metrics...),
		entries: make(map[tableKey]domain.SectorBaseline, len(sectors)*len(metrics)),
	}
	for _, row := range rows {
		for _, b := range row {
			t.entries[tableKey{b.Sector, b.Metric}] = b
		}
	}
	return t
}

// NewTable assembles a table from precomputed baselines, keeping the given sector and metric order.
func NewTable(sectors, metrics []string, baselines []domain.SectorBaseline) *Table {
	return newTable(sectors, metrics, [][]domain.SectorBaseline{baselines})
}

// Get returns the baseline entry for (sector, metric), defined or not.
func (t *Table) Get(sector, metric string) (domain.SectorBaseline, bool) {
	b, ok := t.entries[tableKey{sector, metric}]
	return b, ok
}

// Lookup returns a usable baseline. ok is false when the entry is absent or undefined.
func (t *Table) Lookup(sector, metric string) (domain.SectorBaseline, bool) {
	b, ok := t.entries[tableKey{sector, metric}]
	if !ok || !b.Defined {
		return domain.SectorBaseline{}, false
	}
	return b, true
}

// Sectors returns the sector order of the table.
func (t *Table) Sectors() []string {
	return append([]string(nil), t.sectors...)
}

// All returns every entry ordered by sector, then metric.
func (t *Table) All() []domain.SectorBaseline {
	out := make([]domain.SectorBaseline, 0, len(t.entries))
	for _, s := range t.sectors {
		for _, m := range t.metrics {
			if b, ok := t.entries[tableKey{s, m}]; ok {
				out = append(out, b)
			}
		}
	}
	return out
}

// Undefined returns the degenerate entries in table order.
func (t *Table) Undefined() []domain.SectorBaseline {
	var out []domain.SectorBaseline
	for _, b := range t.All() {
		if !b.Defined {
			out = append(out, b)
		}
	}
	return out
}

// Len returns the number of (sector, metric) entries.
func (t *Table) Len() int {
	return len(t.entries)
}
