package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taoyao-code/charge-console/internal/starttx"
)

func TestStartObserver_CountsByStateAndReason(t *testing.T) {
	m := NewAppMetrics(NewRegistry())
	obs := m.StartObserver()

	obs.Record(starttx.StateCompleted, starttx.ReasonAccepted)
	obs.Record(starttx.StateCompleted, starttx.ReasonAccepted)
	obs.Record(starttx.StateAborted, starttx.ReasonCancelled)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.StartRunsTotal.WithLabelValues("completed", "accepted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StartRunsTotal.WithLabelValues("aborted", "cancelled")))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *AppMetrics
	assert.NotPanics(t, func() {
		m.StartObserver().Record(starttx.StateFailed, starttx.ReasonRejected)
		m.ObserveCentralServer("start", "ok", time.Millisecond)
		m.SetBreakerState(2)
		m.PromptOpened()
		m.PromptClosed()
		m.RunStarted()
		m.RunFinished()
		m.ObserveHTTP("GET", "/x", 200)
	})
}

func TestHandler_ExposesRegisteredMetrics(t *testing.T) {
	reg := NewRegistry()
	m := NewAppMetrics(reg)
	m.ObserveCentralServer("start", "ok", 20*time.Millisecond)
	m.SetBreakerState(1)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "central_server_request_seconds_count{op=\"start\",result=\"ok\"} 1"))
	assert.True(t, strings.Contains(body, "central_server_breaker_state 1"))
}

func TestGauges(t *testing.T) {
	m := NewAppMetrics(NewRegistry())
	m.PromptOpened()
	m.PromptOpened()
	m.PromptClosed()
	m.RunStarted()
	m.ObserveHTTP("POST", "/api/v1/start-runs/:run_id/answer", 409)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.PromptsPending))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsActive))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("POST", "/api/v1/start-runs/:run_id/answer", "409")))
}
