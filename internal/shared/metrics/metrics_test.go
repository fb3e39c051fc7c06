package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderCountersAndLabels(t *testing.T) {
	r := NewRegistry()
	r.IncAnalysisStarted()
	r.IncAnalysisStarted()
	r.IncAnalysisCompleted()
	r.IncAnalysisFailed("malformed_output")
	r.IncLLMAttempt("parse")
	r.IncLLMAttempt("success")
	r.IncLLMAttempt("success")

	out := r.Render()
	assert.Contains(t, out, "analysis_started_total 2\n")
	assert.Contains(t, out, "analysis_completed_total 1\n")
	assert.Contains(t, out, `analysis_failed_total{category="malformed_output"} 1`)
	assert.Contains(t, out, `llm_attempts_total{outcome="parse"} 1`)
	assert.Contains(t, out, `llm_attempts_total{outcome="success"} 2`)
	assert.Less(t, strings.Index(out, `outcome="parse"`), strings.Index(out, `outcome="success"`))
}

func TestHistogramIsCumulative(t *testing.T) {
	r := NewRegistry()
	r.ObserveAnalysisDurationMs(50)
	r.ObserveAnalysisDurationMs(300)
	r.ObserveAnalysisDurationMs(-1)
	r.ObserveAnalysisDurationMs(500000)

	out := r.Render()
	assert.Contains(t, out, `analysis_duration_ms_bucket{le="100"} 2`)
	assert.Contains(t, out, `analysis_duration_ms_bucket{le="500"} 3`)
	assert.Contains(t, out, `analysis_duration_ms_bucket{le="120000"} 3`)
	assert.Contains(t, out, `analysis_duration_ms_bucket{le="+Inf"} 4`)
	assert.Contains(t, out, "analysis_duration_ms_count 4\n")
	assert.Contains(t, out, "analysis_duration_ms_sum 500350\n")
}

func TestConcurrentIncrements(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.IncLLMAttempt("transport")
			r.IncAnalysisStarted()
		}()
	}
	wg.Wait()
	out := r.Render()
	assert.Contains(t, out, `llm_attempts_total{outcome="transport"} 50`)
	assert.Contains(t, out, "analysis_started_total 50\n")
}

func TestHandlerServesText(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRegistry()
	r.IncAnalysisFailed("")
	router := gin.New()
	router.GET("/metrics", r.Handler())

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.True(t, strings.HasPrefix(resp.Header().Get("Content-Type"), "text/plain"))
	assert.Contains(t, resp.Body.String(), `analysis_failed_total{category="unknown"} 1`)
}
