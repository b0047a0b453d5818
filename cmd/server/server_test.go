package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundamental-grader/internal/config"
	"fundamental-grader/internal/domain"
	"fundamental-grader/internal/observability"
	"fundamental-grader/internal/pipeline"
	"fundamental-grader/internal/storage/memory"
)

var fixedTime = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestServer(t *testing.T, mutate func(*config.Config)) *httptest.Server {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics("test", reg)
	log := zerolog.Nop()

	api := &API{
		cfg: cfg,
		stores: &pipeline.Stores{
			Companies: memory.NewCompanyStore(),
			Runs:      memory.NewRunStore(),
			Grades:    memory.NewGradeStore(),
		},
		hub:     NewHub(log, metrics),
		log:     log,
		metrics: metrics,
		gather:  observability.HandlerFor(reg),
		clock:   func() time.Time { return fixedTime },
	}
	srv := httptest.NewServer(api.Routes())
	t.Cleanup(srv.Close)
	return srv
}

func demoCSV(t *testing.T, variant domain.Variant) string {
	t.Helper()
	ds, err := pipeline.DemoDataset(variant)
	require.NoError(t, err)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	require.NoError(t, w.Write(ds.Columns()))
	for _, c := range ds.Companies() {
		row := make([]string, len(ds.Columns()))
		for i, col := range ds.Columns() {
			row[i], _ = c.Raw(col)
		}
		require.NoError(t, w.Write(row))
	}
	w.Flush()
	require.NoError(t, w.Error())
	return buf.String()
}

func postGrade(t *testing.T, srv *httptest.Server, query, body, accept string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/grade"+query, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "text/csv")
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, r io.Reader) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(r).Decode(&v))
	return v
}

func TestGrade_JSONAndRunLookup(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := postGrade(t, srv, "", demoCSV(t, domain.VariantCore), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	graded := decode[GradeResponse](t, resp.Body)

	assert.NotEmpty(t, graded.RunID)
	assert.Equal(t, domain.VariantCore, graded.Variant)
	assert.False(t, graded.Normalized)
	assert.True(t, graded.Persisted)
	require.Len(t, graded.Companies, 12)
	assert.Equal(t, "ADBE", graded.Companies[0].Ticker)
	assert.Len(t, graded.Companies[0].Categories, 4)
	assert.Len(t, graded.Sufficiency, 3)

	runResp, err := http.Get(srv.URL + "/api/v1/runs/" + graded.RunID)
	require.NoError(t, err)
	defer runResp.Body.Close()
	require.Equal(t, http.StatusOK, runResp.StatusCode)
	stored := decode[GradeResponse](t, runResp.Body)

	assert.Equal(t, graded.RunID, stored.RunID)
	require.Len(t, stored.Companies, 12)
	for i := range graded.Companies {
		assert.Equal(t, graded.Companies[i].Ticker, stored.Companies[i].Ticker)
		assert.Equal(t, graded.Companies[i].OverallRating, stored.Companies[i].OverallRating)
	}
}

func TestGrade_ExtendedNormalizes(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := postGrade(t, srv, "?extended=true", demoCSV(t, domain.VariantExtended), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	graded := decode[GradeResponse](t, resp.Body)

	assert.Equal(t, domain.VariantExtended, graded.Variant)
	assert.True(t, graded.Normalized)
	maxNorm := 0.0
	for _, c := range graded.Companies {
		require.NotNil(t, c.NormalizedRating)
		maxNorm = max(maxNorm, *c.NormalizedRating)
	}
	assert.Equal(t, 100.0, maxNorm)
}

func TestGrade_CSVResponse(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := postGrade(t, srv, "", demoCSV(t, domain.VariantCore), "text/csv")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")
	assert.NotEmpty(t, resp.Header.Get("X-Run-ID"))

	records, err := csv.NewReader(resp.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 13)
	assert.Contains(t, records[0], "Overall Rating")
}

func TestGrade_Errors(t *testing.T) {
	srv := newTestServer(t, func(c *config.Config) { c.MaxUploadBytes = 1024 })

	tests := []struct {
		name  string
		query string
		body  string
		code  int
	}{
		{"bad flag", "?extended=maybe", "Ticker,Sector,Industry\n", http.StatusBadRequest},
		{"empty body", "", "", http.StatusBadRequest},
		{"missing metric columns", "", "Ticker,Sector,Industry\nAAA,Tech,Software\n", http.StatusUnprocessableEntity},
		{"too large", "", demoCSV(t, domain.VariantCore), http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postGrade(t, srv, tt.query, tt.body, "")
			assert.Equal(t, tt.code, resp.StatusCode)
			body := decode[errorResponse](t, resp.Body)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestRun_NotFound(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/api/v1/runs/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWebsocket_StreamsRunEvents(t *testing.T) {
	srv := newTestServer(t, nil)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Registration happens in the handler goroutine after the upgrade.
	require.Eventually(t, func() bool {
		resp, err := http.Get(srv.URL + "/metrics")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return strings.Contains(string(body), "test_http_websocket_clients 1")
	}, 2*time.Second, 10*time.Millisecond)

	resp := postGrade(t, srv, "", demoCSV(t, domain.VariantCore), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var types []pipeline.EventType
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for len(types) < 5 {
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		var ev pipeline.Event
		require.NoError(t, json.Unmarshal(msg, &ev))
		types = append(types, ev.Type)
	}
	assert.Equal(t, []pipeline.EventType{
		pipeline.EventRunStarted, pipeline.EventBaselinesBuilt, pipeline.EventCompaniesGraded,
		pipeline.EventRatingsComposed, pipeline.EventRunCompleted,
	}, types)
}

func TestMetricsAndHealth(t *testing.T) {
	srv := newTestServer(t, nil)

	health, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `test_http_requests_total{code="200",route="health"} 1`)
}
