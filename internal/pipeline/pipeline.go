// Package pipeline runs a complete grading pass: load, grade, report, persist.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"fundamental-grader/internal/domain"
	"fundamental-grader/internal/grading"
	"fundamental-grader/internal/idhash"
	"fundamental-grader/internal/ingestion"
	"fundamental-grader/internal/observability"
	"fundamental-grader/internal/reporting"
	"fundamental-grader/internal/storage"
)

// Output file names written to the output directory.
const (
	FileGradedCSV    = "graded.csv"
	FileReport       = "REPORT.md"
	FileBaselinesCSV = "baselines.csv"
	FileWorkbook     = "graded.xlsx"
)

// Stores are the optional persistence targets of a run.
type Stores struct {
	Companies storage.CompanyStore
	Runs      storage.RunStore
	Grades    storage.GradeStore
}

// RunResult is the outcome of one pipeline run.
type RunResult struct {
	RunID       string
	DatasetID   string
	Result      *grading.Result
	Report      *reporting.Report
	Sufficiency *SufficiencyResult
	Files       []string // written output paths
	Persisted   bool     // false when persistence is off or the run was already stored
}

// GradingPipeline orchestrates one grading run and its exports.
type GradingPipeline struct {
	engine      *grading.Engine
	reportGen   *reporting.Generator
	sufficiency *SufficiencyChecker
	stores      *Stores
	outputDir   string
	clock       func() time.Time
	log         zerolog.Logger
	metrics     *observability.Metrics
	observers   []Observer
}

// NewGradingPipeline creates a pipeline. An empty outputDir skips file output.
func NewGradingPipeline(engine *grading.Engine, outputDir string) *GradingPipeline {
	return &GradingPipeline{
		engine:      engine,
		reportGen:   reporting.NewGenerator(),
		sufficiency: NewSufficiencyChecker(),
		outputDir:   outputDir,
		clock:       func() time.Time { return time.Now().UTC() },
		log:         zerolog.Nop(),
		metrics:     observability.DefaultMetrics,
	}
}

// WithClock sets a custom clock function for deterministic output.
func (p *GradingPipeline) WithClock(clock func() time.Time) *GradingPipeline {
	p.clock = clock
	p.reportGen = p.reportGen.WithClock(clock)
	return p
}

// WithLogger sets the pipeline logger.
func (p *GradingPipeline) WithLogger(log zerolog.Logger) *GradingPipeline {
	p.log = observability.Component(log, "pipeline")
	return p
}

// WithMetrics replaces the default metrics instance.
func (p *GradingPipeline) WithMetrics(m *observability.Metrics) *GradingPipeline {
	p.metrics = m
	return p
}

// WithStores enables persistence of datasets, runs and grades.
func (p *GradingPipeline) WithStores(stores *Stores) *GradingPipeline {
	p.stores = stores
	return p
}

// WithSufficiencyChecker replaces the default sufficiency thresholds.
func (p *GradingPipeline) WithSufficiencyChecker(c *SufficiencyChecker) *GradingPipeline {
	p.sufficiency = c
	return p
}

// WithObserver adds an event observer.
func (p *GradingPipeline) WithObserver(o Observer) *GradingPipeline {
	p.observers = append(p.observers, o)
	return p
}

// Engine returns the grading engine.
func (p *GradingPipeline) Engine() *grading.Engine {
	return p.engine
}

// RunFile loads a CSV or XLSX file and runs the pipeline on it.
func (p *GradingPipeline) RunFile(ctx context.Context, path string) (*RunResult, error) {
	start := time.Now()
	ds, err := ingestion.LoadFile(ctx, path)
	if err != nil {
		p.metrics.RecordRun(p.engine.Options().Variant, "failed")
		p.log.Error().Err(err).Str("path", path).Msg("load dataset failed")
		return nil, err
	}
	p.metrics.RecordStage("load", time.Since(start))
	p.log.Info().Str("path", path).Int("companies", ds.Len()).Int("columns", len(ds.Columns())).Msg("dataset loaded")
	return p.Run(ctx, ds)
}

// Run grades a dataset and writes reports. Grading is all-or-nothing: on
// error no output file is written and nothing is persisted.
func (p *GradingPipeline) Run(ctx context.Context, ds *domain.Dataset) (*RunResult, error) {
	opts := p.engine.Options()
	out := &RunResult{DatasetID: idhash.ComputeDatasetID(ds)}
	out.RunID = idhash.ComputeRunID(out.DatasetID, opts.Variant, opts.Normalize)

	log := p.log.With().Str("run_id", out.RunID).Str("variant", string(opts.Variant)).Logger()
	base := Event{RunID: out.RunID, DatasetID: out.DatasetID, Variant: opts.Variant}

	fail := func(stage string, err error) (*RunResult, error) {
		p.metrics.RecordRun(opts.Variant, "failed")
		log.Error().Err(err).Str("stage", stage).Msg("grading run failed")
		ev := base
		ev.Type = EventRunFailed
		ev.Error = err.Error()
		p.emit(ev)
		return nil, fmt.Errorf("%s: %w", stage, err)
	}

	ev := base
	ev.Type = EventRunStarted
	ev.Companies = ds.Len()
	p.emit(ev)
	log.Info().Int("companies", ds.Len()).Bool("normalize", opts.Normalize).Msg("grading run started")

	res, err := p.engine.RunWithHook(ctx, ds, func(stage string, elapsed time.Duration) {
		p.metrics.RecordStage(stage, elapsed)
		ev := base
		ev.ElapsedMs = float64(elapsed.Microseconds()) / 1000
		switch stage {
		case grading.StageBaselines:
			ev.Type = EventBaselinesBuilt
		case grading.StageGrading:
			ev.Type = EventCompaniesGraded
			ev.Companies = ds.Len()
		case grading.StageComposition:
			ev.Type = EventRatingsComposed
		default:
			return
		}
		p.emit(ev)
	})
	if err != nil {
		return fail("grade", err)
	}
	out.Result = res

	issues := res.Issues()
	undefined := len(res.Baselines.Undefined())
	p.metrics.RecordGrading(len(res.Companies), issues, undefined)

	out.Sufficiency = p.sufficiency.Check(res)
	for _, w := range out.Sufficiency.Warnings {
		log.Warn().Msg(w)
	}
	out.Report = p.reportGen.Generate(out.RunID, res, out.Sufficiency.Rows())

	if p.outputDir != "" {
		start := time.Now()
		files, err := p.writeOutputs(res, out.Report)
		if err != nil {
			return fail("write reports", err)
		}
		p.metrics.RecordStage("export", time.Since(start))
		out.Files = files
	}

	if p.stores != nil {
		start := time.Now()
		persisted, err := p.persist(ctx, out, res)
		if err != nil {
			return fail("persist", err)
		}
		p.metrics.RecordStage("persist", time.Since(start))
		out.Persisted = persisted
	}

	now := p.clock()
	p.metrics.RecordRun(opts.Variant, "success")
	p.metrics.MarkSuccess(now)

	ev = base
	ev.Type = EventRunCompleted
	ev.At = now.UnixMilli()
	ev.Companies = len(res.Companies)
	ev.Issues = len(issues)
	ev.UndefinedBaselines = undefined
	p.emit(ev)

	log.Info().
		Int("companies", len(res.Companies)).
		Int("issues", len(issues)).
		Int("undefined_baselines", undefined).
		Bool("sufficient", out.Sufficiency.AllPass).
		Bool("persisted", out.Persisted).
		Msg("grading run completed")
	return out, nil
}

// writeOutputs renders every export into memory first so a render failure
// leaves the output directory untouched.
func (p *GradingPipeline) writeOutputs(res *grading.Result, report *reporting.Report) ([]string, error) {
	var graded, baselines, workbook bytes.Buffer
	if err := reporting.WriteGradedCSV(&graded, res); err != nil {
		return nil, err
	}
	if err := reporting.WriteBaselinesCSV(&baselines, report.Baselines); err != nil {
		return nil, err
	}
	if err := reporting.WriteWorkbook(&workbook, res); err != nil {
		return nil, err
	}

	outputs := []struct {
		name   string
		format string
		data   []byte
	}{
		{FileGradedCSV, "csv", graded.Bytes()},
		{FileReport, "markdown", []byte(reporting.RenderMarkdown(report))},
		{FileBaselinesCSV, "baselines_csv", baselines.Bytes()},
		{FileWorkbook, "xlsx", workbook.Bytes()},
	}

	if err := os.MkdirAll(p.outputDir, 0755); err != nil {
		return nil, err
	}
	files := make([]string, 0, len(outputs))
	for _, o := range outputs {
		path := filepath.Join(p.outputDir, o.name)
		if err := os.WriteFile(path, o.data, 0644); err != nil {
			return nil, err
		}
		p.metrics.RecordReport(o.format)
		files = append(files, path)
	}
	return files, nil
}

// persist stores the dataset, the grades and then the run. The run row is
// written last so that it only exists for runs whose grades are stored; a
// retry after a failed grade insert finds no run and completes it. Records
// that already exist are not an error: identical inputs share IDs.
func (p *GradingPipeline) persist(ctx context.Context, out *RunResult, res *grading.Result) (bool, error) {
	if p.stores.Companies != nil {
		start := time.Now()
		err := p.stores.Companies.InsertDataset(ctx, out.DatasetID, res.Dataset)
		p.metrics.RecordDBQuery("company_store", "insert_dataset", time.Since(start), ignoreDuplicate(err))
		if err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
			return false, fmt.Errorf("insert dataset: %w", err)
		}
	}

	createdAt := p.clock().UnixMilli()
	if p.stores.Grades != nil {
		records := make([]*domain.GradeRecord, len(res.Companies))
		for i, g := range res.Companies {
			records[i] = domain.NewGradeRecord(out.RunID, res.Options.Variant, i, g, createdAt)
		}
		start := time.Now()
		err := p.stores.Grades.InsertBulk(ctx, records)
		p.metrics.RecordDBQuery("grade_store", "insert_bulk", time.Since(start), ignoreDuplicate(err))
		if errors.Is(err, storage.ErrDuplicateKey) {
			p.log.Debug().Str("run_id", out.RunID).Msg("grades already stored")
		} else if err != nil {
			return false, fmt.Errorf("insert grades: %w", err)
		}
	}

	if p.stores.Runs != nil {
		run := &domain.GradingRun{
			RunID:              out.RunID,
			DatasetID:          out.DatasetID,
			Variant:            res.Options.Variant,
			Normalize:          res.Options.Normalize,
			CompanyCount:       len(res.Companies),
			IssueCount:         len(res.Issues()),
			UndefinedBaselines: len(res.Baselines.Undefined()),
			CreatedAt:          createdAt,
		}
		start := time.Now()
		err := p.stores.Runs.Insert(ctx, run)
		p.metrics.RecordDBQuery("run_store", "insert", time.Since(start), ignoreDuplicate(err))
		if errors.Is(err, storage.ErrDuplicateKey) {
			p.log.Info().Str("run_id", out.RunID).Msg("run already persisted")
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("insert run: %w", err)
		}
	}
	return true, nil
}

func ignoreDuplicate(err error) error {
	if errors.Is(err, storage.ErrDuplicateKey) {
		return nil
	}
	return err
}

func (p *GradingPipeline) emit(e Event) {
	if e.At == 0 {
		e.At = p.clock().UnixMilli()
	}
	for _, o := range p.observers {
		o.OnEvent(e)
	}
}
