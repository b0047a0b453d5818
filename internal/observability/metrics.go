// Package observability provides Prometheus metrics and structured logging.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fundamental-grader/internal/domain"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Grading metrics
	RunsTotal          *prometheus.CounterVec
	StageDuration      *prometheus.HistogramVec
	CompaniesGraded    prometheus.Counter
	IssuesTotal        *prometheus.CounterVec
	UndefinedBaselines prometheus.Gauge
	ReportsGenerated   *prometheus.CounterVec

	// Server metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	WSClients           prometheus.Gauge

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulRun prometheus.Gauge
}

// NewMetrics creates a new Metrics instance registered with reg.
// A nil reg registers with the default Prometheus registerer.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "fundamental_grader"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "grading",
			Name:      "runs_total",
			Help:      "Total number of grading runs by variant and status",
		}, []string{"variant", "status"}),
		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "grading",
			Name:      "stage_duration_seconds",
			Help:      "Grading pipeline stage duration in seconds",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10, 30},
		}, []string{"stage"}),
		CompaniesGraded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "grading",
			Name:      "companies_graded_total",
			Help:      "Total number of companies graded",
		}),
		IssuesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "grading",
			Name:      "data_quality_issues_total",
			Help:      "Total number of data-quality issues by kind",
		}, []string{"kind"}),
		UndefinedBaselines: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "grading",
			Name:      "undefined_baselines",
			Help:      "Number of undefined sector baselines in the last run",
		}),
		ReportsGenerated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reporting",
			Name:      "reports_generated_total",
			Help:      "Total number of reports generated by format",
		}, []string{"format"}),

		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status code",
		}, []string{"route", "code"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		WSClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "websocket_clients",
			Help:      "Number of connected websocket clients",
		}),

		DBQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		LastSuccessfulRun: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_run_timestamp",
			Help:      "Unix timestamp of last successful grading run",
		}),
	}
}

// RecordRun records a finished grading run.
func (m *Metrics) RecordRun(variant domain.Variant, status string) {
	m.RunsTotal.WithLabelValues(string(variant), status).Inc()
}

// RecordStage observes the duration of one pipeline stage.
func (m *Metrics) RecordStage(stage string, d time.Duration) {
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordGrading records the outcome counts of a completed grading pass.
func (m *Metrics) RecordGrading(companies int, issues []domain.DataQualityIssue, undefinedBaselines int) {
	m.CompaniesGraded.Add(float64(companies))
	for _, issue := range issues {
		m.IssuesTotal.WithLabelValues(string(issue.Kind)).Inc()
	}
	m.UndefinedBaselines.Set(float64(undefinedBaselines))
}

// RecordReport increments the reports counter for a format.
func (m *Metrics) RecordReport(format string) {
	m.ReportsGenerated.WithLabelValues(format).Inc()
}

// RecordHTTPRequest records one served HTTP request.
func (m *Metrics) RecordHTTPRequest(route string, code int, d time.Duration) {
	m.HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.HTTPRequestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// RecordDBQuery records database query metrics.
func (m *Metrics) RecordDBQuery(database, operation string, d time.Duration, err error) {
	m.DBQueryDuration.WithLabelValues(database, operation).Observe(d.Seconds())
	if err != nil {
		m.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// MarkSuccess sets the last successful run timestamp.
func (m *Metrics) MarkSuccess(at time.Time) {
	m.LastSuccessfulRun.Set(float64(at.Unix()))
}

// HandlerFor returns a /metrics handler serving the given gatherer.
func HandlerFor(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("", nil)
