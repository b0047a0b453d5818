package observability

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundamental-grader/internal/domain"
)

func TestMetrics_RecordGrading(t *testing.T) {
	m := NewMetrics("test", prometheus.NewRegistry())

	m.RecordGrading(3, []domain.DataQualityIssue{
		{Kind: domain.IssueMissingValue},
		{Kind: domain.IssueMissingValue},
		{Kind: domain.IssueBaselineUnavailable},
	}, 4)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.CompaniesGraded))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.IssuesTotal.WithLabelValues("missing_value")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.IssuesTotal.WithLabelValues("baseline_unavailable")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.UndefinedBaselines))
}

func TestMetrics_RecordRunAndDB(t *testing.T) {
	m := NewMetrics("test", prometheus.NewRegistry())

	m.RecordRun(domain.VariantCore, "success")
	m.RecordRun(domain.VariantCore, "success")
	m.RecordRun(domain.VariantExtended, "failed")
	m.RecordDBQuery("postgres", "insert", time.Millisecond, nil)
	m.RecordDBQuery("postgres", "insert", time.Millisecond, errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("core", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("extended", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DBQueryErrors.WithLabelValues("postgres", "insert")))
}

func TestMetrics_MarkSuccess(t *testing.T) {
	m := NewMetrics("test", prometheus.NewRegistry())
	m.MarkSuccess(time.Unix(1700000000, 0))
	assert.Equal(t, 1700000000.0, testutil.ToFloat64(m.LastSuccessfulRun))
}

func TestHandlerFor(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("test", reg)
	m.RecordReport("csv")

	rec := httptest.NewRecorder()
	HandlerFor(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `test_reporting_reports_generated_total{format="csv"} 1`)
}

func TestNewLoggerTo(t *testing.T) {
	var buf bytes.Buffer
	log := Component(NewLoggerTo(&buf, "warn", false), "pipeline")

	log.Info().Msg("dropped")
	log.Warn().Str("run_id", "abc").Msg("kept")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["message"])
	assert.Equal(t, "pipeline", entry["component"])
	assert.Equal(t, "abc", entry["run_id"])
	assert.Equal(t, "warn", entry["level"])
}

func TestNewLoggerTo_UnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerTo(&buf, "chatty", false)

	log.Debug().Msg("dropped")
	assert.Zero(t, buf.Len())
	log.Info().Msg("kept")
	assert.NotZero(t, buf.Len())
}
