package verification

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"fundamental-grader/internal/domain"
	"fundamental-grader/internal/grading"
	"fundamental-grader/internal/storage"
)

var (
	// ErrRunNotFound is returned when run ID doesn't exist.
	ErrRunNotFound = errors.New("run not found")

	// ErrDatasetNotFound is returned when the run's dataset is not stored.
	ErrDatasetNotFound = errors.New("dataset not found")

	// ErrGradeNotFound is returned when a run has no stored grade for a ticker.
	ErrGradeNotFound = errors.New("grade not found")
)

// RegradeVerifier implements Verifier by grading the stored dataset again
// with the run's options.
type RegradeVerifier struct {
	runStore     storage.RunStore
	companyStore storage.CompanyStore
	gradeStore   storage.GradeStore
	workers      int
	log          zerolog.Logger
}

// RegradeVerifierOptions contains configuration for creating a RegradeVerifier.
type RegradeVerifierOptions struct {
	RunStore     storage.RunStore
	CompanyStore storage.CompanyStore
	GradeStore   storage.GradeStore
	Workers      int // engine workers; <= 0 uses GOMAXPROCS
	Logger       *zerolog.Logger
}

var _ Verifier = (*RegradeVerifier)(nil)

// NewRegradeVerifier creates a new RegradeVerifier.
func NewRegradeVerifier(opts RegradeVerifierOptions) *RegradeVerifier {
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = opts.Logger.With().Str("component", "verifier").Logger()
	}
	return &RegradeVerifier{
		runStore:     opts.RunStore,
		companyStore: opts.CompanyStore,
		gradeStore:   opts.GradeStore,
		workers:      opts.Workers,
		log:          log,
	}
}

// VerifyCompany verifies one company. The whole dataset is re-graded since
// sector baselines depend on every peer.
func (v *RegradeVerifier) VerifyCompany(ctx context.Context, runID, ticker string) (*VerificationResult, error) {
	stored, err := v.gradeStore.GetByRunTicker(ctx, runID, ticker)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrGradeNotFound
		}
		return nil, err
	}

	regraded, err := v.regrade(ctx, runID)
	if err != nil {
		return nil, err
	}

	result := compare(stored, regraded.byTicker[ticker])
	return &result, nil
}

// VerifyRun verifies all stored grades of a run.
func (v *RegradeVerifier) VerifyRun(ctx context.Context, runID string) (*VerificationReport, error) {
	stored, err := v.gradeStore.GetByRun(ctx, runID)
	if err != nil {
		return nil, err
	}

	regraded, err := v.regrade(ctx, runID)
	if err != nil {
		return nil, err
	}

	report := &VerificationReport{
		RunID:          runID,
		TotalCompanies: len(stored),
		Results:        make([]VerificationResult, 0, len(stored)),
	}

	seen := make(map[string]struct{}, len(stored))
	for _, s := range stored {
		seen[s.Ticker] = struct{}{}
		result := compare(s, regraded.byTicker[s.Ticker])
		report.add(result)
	}

	// Companies graded now but never stored, in dataset order.
	for _, r := range regraded.records {
		if _, ok := seen[r.Ticker]; ok {
			continue
		}
		report.TotalCompanies++
		report.add(VerificationResult{
			Ticker:         r.Ticker,
			RegradedRating: r.OverallRating,
			Divergences:    []FieldDivergence{{Field: "Stored", Expected: nil, Actual: r.Ticker}},
		})
	}

	v.log.Info().
		Str("run_id", runID).
		Int("companies", report.TotalCompanies).
		Int("divergent", report.DivergentCompanies).
		Msg("run verified")
	return report, nil
}

func (r *VerificationReport) add(result VerificationResult) {
	r.Results = append(r.Results, result)
	if result.Match {
		r.MatchedCompanies++
	} else {
		r.DivergentCompanies++
	}
}

func compare(stored, regraded *domain.GradeRecord) VerificationResult {
	if regraded == nil {
		return VerificationResult{
			Ticker:       stored.Ticker,
			StoredRating: stored.OverallRating,
			Divergences:  []FieldDivergence{{Field: "Regraded", Expected: stored.Ticker, Actual: nil}},
		}
	}
	divergences := CompareGradeRecords(stored, regraded)
	return VerificationResult{
		Ticker:         stored.Ticker,
		Match:          len(divergences) == 0,
		Divergences:    divergences,
		StoredRating:   stored.OverallRating,
		RegradedRating: regraded.OverallRating,
	}
}

// regradedRun holds fresh grade records in dataset order plus a ticker index.
type regradedRun struct {
	records  []*domain.GradeRecord
	byTicker map[string]*domain.GradeRecord
}

// regrade grades the run's dataset with the run's options.
func (v *RegradeVerifier) regrade(ctx context.Context, runID string) (*regradedRun, error) {
	run, err := v.runStore.GetByID(ctx, runID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrRunNotFound
		}
		return nil, err
	}

	ds, err := v.companyStore.GetDataset(ctx, run.DatasetID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, run.DatasetID)
		}
		return nil, err
	}

	engine, err := grading.NewEngine(grading.Options{
		Variant:   run.Variant,
		Normalize: run.Normalize,
		Workers:   v.workers,
	})
	if err != nil {
		return nil, err
	}
	res, err := engine.Run(ctx, ds)
	if err != nil {
		return nil, fmt.Errorf("regrade run %s: %w", runID, err)
	}

	out := &regradedRun{
		records:  make([]*domain.GradeRecord, len(res.Companies)),
		byTicker: make(map[string]*domain.GradeRecord, len(res.Companies)),
	}
	for i, g := range res.Companies {
		rec := domain.NewGradeRecord(runID, run.Variant, i, g, run.CreatedAt)
		out.records[i] = rec
		out.byTicker[g.Ticker] = rec
	}
	return out, nil
}
