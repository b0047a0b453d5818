package grading

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"fundamental-grader/internal/baseline"
	"fundamental-grader/internal/domain"
)

// ErrNoCompanies is returned when a dataset has no rows to grade.
var ErrNoCompanies = errors.New("dataset has no companies")

// IdentityColumns must be present in every input table.
var IdentityColumns = []string{domain.ColumnTicker, domain.ColumnSector, domain.ColumnIndustry}

// Options configures a grading run.
type Options struct {
	Variant   domain.Variant
	Normalize bool // rescale overall ratings to 0-100 after all companies are graded
	Workers   int  // concurrent sectors/companies; <= 0 uses GOMAXPROCS
}

// DefaultOptions returns the options for a variant. The extended variant normalizes.
func DefaultOptions(v domain.Variant) Options {
	return Options{Variant: v, Normalize: v == domain.VariantExtended}
}

// Result is the output of one grading run. It is derived entirely from the
// input dataset and discarded on the next run.
type Result struct {
	Dataset    *domain.Dataset
	Catalog    *domain.Catalog
	Options    Options
	Baselines  *baseline.Table
	Companies  []domain.CompanyGrading // input order
	Normalized bool
}

// Issues returns every data-quality issue in company order.
func (r *Result) Issues() []domain.DataQualityIssue {
	var out []domain.DataQualityIssue
	for _, c := range r.Companies {
		out = append(out, c.Issues...)
	}
	return out
}

// Stages reported to a StageHook, in execution order.
const (
	StageBaselines   = "baselines"
	StageGrading     = "grading"
	StageComposition = "composition"
)

// StageHook is called after each engine stage completes.
type StageHook func(stage string, elapsed time.Duration)

// Engine runs the batch transform: baselines, grades, ratings, normalization.
type Engine struct {
	opts    Options
	catalog *domain.Catalog
}

// NewEngine validates the static catalog for the variant once, at startup.
func NewEngine(opts Options) (*Engine, error) {
	if opts.Variant == "" {
		opts.Variant = domain.VariantCore
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	catalog, err := domain.CatalogFor(opts.Variant)
	if err != nil {
		return nil, err
	}
	return &Engine{opts: opts, catalog: catalog}, nil
}

// Catalog returns the engine's category table.
func (e *Engine) Catalog() *domain.Catalog {
	return e.catalog
}

// Options returns the effective run options.
func (e *Engine) Options() Options {
	return e.opts
}

// RequiredColumns lists identity columns followed by every catalog metric.
func (e *Engine) RequiredColumns() []string {
	cols := append([]string(nil), IdentityColumns...)
	for _, m := range e.catalog.Metrics() {
		cols = append(cols, m.Name)
	}
	return cols
}

// Validate checks the dataset schema against the catalog.
// A missing column is a structural mismatch and is never defaulted.
func (e *Engine) Validate(ds *domain.Dataset) error {
	if missing := ds.MissingColumns(e.RequiredColumns()); len(missing) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrMissingColumn, strings.Join(missing, ", "))
	}
	if ds.Len() == 0 {
		return ErrNoCompanies
	}
	return nil
}

// Run grades every company in the dataset. Baselines are fully built before
// grading starts, and normalization runs only after every rating is known.
func (e *Engine) Run(ctx context.Context, ds *domain.Dataset) (*Result, error) {
	return e.RunWithHook(ctx, ds, nil)
}

// RunWithHook is Run with a per-call stage hook. hook may be nil.
func (e *Engine) RunWithHook(ctx context.Context, ds *domain.Dataset, hook StageHook) (*Result, error) {
	if err := e.Validate(ds); err != nil {
		return nil, err
	}
	if hook == nil {
		hook = func(string, time.Duration) {}
	}

	metricNames := make([]string, 0, len(e.catalog.Metrics()))
	for _, m := range e.catalog.Metrics() {
		metricNames = append(metricNames, m.Name)
	}

	start := time.Now()
	table, err := baseline.NewBuilder().WithWorkers(e.opts.Workers).Build(ctx, ds, metricNames)
	if err != nil {
		return nil, err
	}
	hook(StageBaselines, time.Since(start))

	start = time.Now()
	companies, err := e.gradeAll(ctx, ds, NewGrader(table))
	if err != nil {
		return nil, err
	}
	hook(StageGrading, time.Since(start))

	start = time.Now()
	result := &Result{
		Dataset:   ds,
		Catalog:   e.catalog,
		Options:   e.opts,
		Baselines: table,
		Companies: companies,
	}
	if e.opts.Normalize {
		result.Companies = Normalize(companies)
		result.Normalized = true
	}
	hook(StageComposition, time.Since(start))
	return result, nil
}

// gradeAll grades companies concurrently into their input positions.
func (e *Engine) gradeAll(ctx context.Context, ds *domain.Dataset, grader *Grader) ([]domain.CompanyGrading, error) {
	out := make([]domain.CompanyGrading, ds.Len())

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)
	for i := 0; i < ds.Len(); i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = grader.GradeCompany(ds.Company(i), e.catalog)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("grade companies: %w", err)
	}
	return out, nil
}
