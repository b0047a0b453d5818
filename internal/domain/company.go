package domain

// Company is one row of the input table. Cells hold raw text keyed by column name.
type Company struct {
	Ticker   string
	Sector   string
	Industry string

	cells map[string]string
}

// NewCompany builds a company record. The cells map is copied.
func NewCompany(ticker, sector, industry string, cells map[string]string) Company {
	c := Company{
		Ticker:   ticker,
		Sector:   sector,
		Industry: industry,
		cells:    make(map[string]string, len(cells)),
	}
	for k, v := range cells {
		c.cells[k] = v
	}
	return c
}

// Raw returns the raw cell text for a column.
func (c Company) Raw(column string) (string, bool) {
	v, ok := c.cells[column]
	return v, ok
}

// Cells returns a copy of all raw cells.
func (c Company) Cells() map[string]string {
	out := make(map[string]string, len(c.cells))
	for k, v := range c.cells {
		out[k] = v
	}
	return out
}
