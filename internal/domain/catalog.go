package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidCatalog is returned when a category table violates its invariants.
var ErrInvalidCatalog = errors.New("invalid grading catalog")

// Variant selects which category table and post-processing a run uses.
type Variant string

// Variant values
const (
	VariantCore     Variant = "core"
	VariantExtended Variant = "extended"
)

// Valid reports whether v is a known variant.
func (v Variant) Valid() bool {
	return v == VariantCore || v == VariantExtended
}

// Catalog is the validated, ordered category table for a grading run.
// Categories partition the graded metrics: every metric belongs to exactly one category.
type Catalog struct {
	categories []Category
	byMetric   map[string]MetricDefinition
	metrics    []MetricDefinition
}

// NewCatalog validates categories and builds a catalog preserving their order.
func NewCatalog(categories ...Category) (*Catalog, error) {
	if len(categories) == 0 {
		return nil, fmt.Errorf("%w: no categories", ErrInvalidCatalog)
	}

	c := &Catalog{
		categories: make([]Category, 0, len(categories)),
		byMetric:   make(map[string]MetricDefinition),
	}
	seenCategory := make(map[string]struct{}, len(categories))

	for _, cat := range categories {
		if cat.Name == "" {
			return nil, fmt.Errorf("%w: category with empty name", ErrInvalidCatalog)
		}
		if _, dup := seenCategory[cat.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate category %q", ErrInvalidCatalog, cat.Name)
		}
		seenCategory[cat.Name] = struct{}{}

		if len(cat.Metrics) == 0 {
			return nil, fmt.Errorf("%w: category %q has no metrics", ErrInvalidCatalog, cat.Name)
		}

		metrics := make([]MetricDefinition, len(cat.Metrics))
		copy(metrics, cat.Metrics)
		for _, m := range metrics {
			if m.Name == "" {
				return nil, fmt.Errorf("%w: category %q has a metric with empty name", ErrInvalidCatalog, cat.Name)
			}
			if !m.Polarity.Valid() {
				return nil, fmt.Errorf("%w: metric %q has no polarity", ErrInvalidCatalog, m.Name)
			}
			if _, dup := c.byMetric[m.Name]; dup {
				return nil, fmt.Errorf("%w: metric %q appears in more than one category", ErrInvalidCatalog, m.Name)
			}
			c.byMetric[m.Name] = m
			c.metrics = append(c.metrics, m)
		}
		c.categories = append(c.categories, Category{Name: cat.Name, Metrics: metrics})
	}

	return c, nil
}

// CatalogFor returns the static catalog for a variant.
func CatalogFor(v Variant) (*Catalog, error) {
	switch v {
	case VariantCore:
		return NewCatalog(coreCategories()...)
	case VariantExtended:
		return NewCatalog(append(coreCategories(), kpiCategory())...)
	default:
		return nil, fmt.Errorf("%w: unknown variant %q", ErrInvalidCatalog, v)
	}
}

// Categories returns the categories in their fixed order.
func (c *Catalog) Categories() []Category {
	out := make([]Category, len(c.categories))
	for i, cat := range c.categories {
		metrics := make([]MetricDefinition, len(cat.Metrics))
		copy(metrics, cat.Metrics)
		out[i] = Category{Name: cat.Name, Metrics: metrics}
	}
	return out
}

// CategoryNames returns category names in order.
func (c *Catalog) CategoryNames() []string {
	names := make([]string, len(c.categories))
	for i, cat := range c.categories {
		names[i] = cat.Name
	}
	return names
}

// Metrics returns all graded metrics in category order.
func (c *Catalog) Metrics() []MetricDefinition {
	out := make([]MetricDefinition, len(c.metrics))
	copy(out, c.metrics)
	return out
}

// Metric looks up a metric definition by column name.
func (c *Catalog) Metric(name string) (MetricDefinition, bool) {
	m, ok := c.byMetric[name]
	return m, ok
}
