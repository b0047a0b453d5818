package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"fundamental-grader/internal/config"
	"fundamental-grader/internal/domain"
	"fundamental-grader/internal/grading"
	"fundamental-grader/internal/ingestion"
	"fundamental-grader/internal/observability"
	"fundamental-grader/internal/pipeline"
	"fundamental-grader/internal/reporting"
	"fundamental-grader/internal/storage"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// API serves the grading HTTP endpoints.
type API struct {
	cfg     config.Config
	stores  *pipeline.Stores
	hub     *Hub
	log     zerolog.Logger
	metrics *observability.Metrics
	gather  http.Handler
	clock   func() time.Time
}

// Routes registers every endpoint on a new mux.
func (a *API) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("POST /api/v1/grade", a.instrument("grade", http.HandlerFunc(a.handleGrade)))
	mux.Handle("GET /api/v1/runs/{id}", a.instrument("run", http.HandlerFunc(a.handleRun)))
	mux.Handle("GET /health", a.instrument("health", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})))
	mux.Handle("GET /metrics", a.gather)
	mux.Handle("GET /ws", a.hub)
	return mux
}

// statusRecorder captures the response code for metrics.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func (a *API) instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)
		a.metrics.RecordHTTPRequest(route, rec.code, time.Since(start))
		a.log.Debug().Str("route", route).Int("code", rec.code).Dur("elapsed", time.Since(start)).Msg("request served")
	})
}

// CategoryJSON is one category score in an API response.
type CategoryJSON struct {
	Name   string  `json:"name"`
	Score  float64 `json:"score"`
	Letter string  `json:"letter"`
}

// CompanyJSON is one graded company in an API response.
type CompanyJSON struct {
	Ticker           string            `json:"ticker"`
	Sector           string            `json:"sector"`
	Industry         string            `json:"industry"`
	Categories       []CategoryJSON    `json:"categories"`
	MetricGrades     map[string]string `json:"metric_grades,omitempty"`
	OverallRating    float64           `json:"overall_rating"`
	NormalizedRating *float64          `json:"normalized_rating,omitempty"`
	PercentDiff      *float64          `json:"percent_diff,omitempty"`
	IssueCount       int               `json:"issue_count"`
}

// GradeResponse is the JSON body of POST /api/v1/grade and GET /api/v1/runs/{id}.
type GradeResponse struct {
	RunID       string                          `json:"run_id"`
	DatasetID   string                          `json:"dataset_id"`
	Variant     domain.Variant                  `json:"variant"`
	Normalized  bool                            `json:"normalized"`
	Persisted   bool                            `json:"persisted"`
	Sufficiency []reporting.SufficiencyCheckRow `json:"sufficiency,omitempty"`
	Companies   []CompanyJSON                   `json:"companies"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (a *API) handleGrade(w http.ResponseWriter, r *http.Request) {
	opts, err := a.gradeOptions(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var loader ingestion.Loader = ingestion.CSVLoader{}
	if strings.HasPrefix(r.Header.Get("Content-Type"), xlsxContentType) {
		loader = ingestion.XLSXLoader{}
	}

	body := http.MaxBytesReader(w, r.Body, a.cfg.MaxUploadBytes)
	ds, err := loader.Load(r.Context(), body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, err)
			return
		}
		writeError(w, http.StatusBadRequest, err)
		return
	}

	engine, err := grading.NewEngine(opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	p := pipeline.NewGradingPipeline(engine, "").
		WithClock(a.clock).
		WithLogger(a.log).
		WithMetrics(a.metrics).
		WithObserver(a.hub)
	if a.stores != nil {
		p = p.WithStores(a.stores)
	}

	out, err := p.Run(r.Context(), ds)
	if err != nil {
		if errors.Is(err, domain.ErrMissingColumn) || errors.Is(err, grading.ErrNoCompanies) {
			writeError(w, http.StatusUnprocessableEntity, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	if strings.Contains(r.Header.Get("Accept"), "text/csv") {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("X-Run-ID", out.RunID)
		if err := reporting.WriteGradedCSV(w, out.Result); err != nil {
			a.log.Error().Err(err).Str("run_id", out.RunID).Msg("write csv response")
		}
		return
	}

	resp := GradeResponse{
		RunID:       out.RunID,
		DatasetID:   out.DatasetID,
		Variant:     opts.Variant,
		Normalized:  out.Result.Normalized,
		Persisted:   out.Persisted,
		Sufficiency: out.Sufficiency.Rows(),
		Companies:   make([]CompanyJSON, len(out.Result.Companies)),
	}
	for i, g := range out.Result.Companies {
		resp.Companies[i] = companyFromRecord(domain.NewGradeRecord(out.RunID, opts.Variant, i, g, 0))
	}
	writeJSON(w, http.StatusOK, resp)
}

// gradeOptions reads ?extended= and ?normalize=, falling back to config.
func (a *API) gradeOptions(r *http.Request) (grading.Options, error) {
	q := r.URL.Query()

	extended := a.cfg.Extended
	if v := q.Get("extended"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return grading.Options{}, errors.New("extended: " + err.Error())
		}
		extended = b
	}

	variant := domain.VariantCore
	if extended {
		variant = domain.VariantExtended
	}
	opts := grading.DefaultOptions(variant)
	opts.Normalize = opts.Normalize || a.cfg.Normalize
	opts.Workers = a.cfg.Workers

	if v := q.Get("normalize"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return grading.Options{}, errors.New("normalize: " + err.Error())
		}
		opts.Normalize = b
	}
	return opts, nil
}

func (a *API) handleRun(w http.ResponseWriter, r *http.Request) {
	if a.stores == nil || a.stores.Runs == nil || a.stores.Grades == nil {
		writeError(w, http.StatusNotFound, errors.New("persistence disabled"))
		return
	}

	runID := r.PathValue("id")
	run, err := a.stores.Runs.GetByID(r.Context(), runID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, errors.New("run not found: "+runID))
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	records, err := a.stores.Grades.GetByRun(r.Context(), runID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	resp := GradeResponse{
		RunID:      run.RunID,
		DatasetID:  run.DatasetID,
		Variant:    run.Variant,
		Normalized: run.Normalize,
		Persisted:  true,
		Companies:  make([]CompanyJSON, len(records)),
	}
	for i, rec := range records {
		resp.Companies[i] = companyFromRecord(rec)
	}
	writeJSON(w, http.StatusOK, resp)
}

func companyFromRecord(r *domain.GradeRecord) CompanyJSON {
	c := CompanyJSON{
		Ticker:           r.Ticker,
		Sector:           r.Sector,
		Industry:         r.Industry,
		Categories:       make([]CategoryJSON, len(r.CategoryNames)),
		MetricGrades:     r.MetricGrades,
		OverallRating:    r.OverallRating,
		NormalizedRating: r.NormalizedRating,
		PercentDiff:      r.PercentDiff,
		IssueCount:       r.IssueCount,
	}
	for i, name := range r.CategoryNames {
		c.Categories[i] = CategoryJSON{Name: name, Score: r.CategoryScores[i], Letter: r.CategoryLetters[i]}
	}
	return c
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, errorResponse{Error: err.Error()})
}
