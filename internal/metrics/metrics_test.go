package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T) string {
	t.Helper()
	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestHandlerExposesCollectors(t *testing.T) {
	RecordHTTPRequest(http.MethodPost, "/api/calculate", "200", 3*time.Millisecond)
	RecordEvaluation(true)
	RecordEvaluation(false)
	RecordHistoryAppend(true)

	body := scrape(t)
	assert.Contains(t, body, `calculator_http_requests_total{method="POST",path="/api/calculate",status="200"}`)
	assert.Contains(t, body, `calculator_http_request_duration_seconds_bucket{method="POST",path="/api/calculate"`)
	assert.Contains(t, body, `calculator_evaluator_evaluations_total{outcome="success"}`)
	assert.Contains(t, body, `calculator_evaluator_evaluations_total{outcome="failure"}`)
	assert.Contains(t, body, `calculator_history_appends_total{outcome="success"}`)
	assert.Contains(t, body, "go_goroutines")
}
