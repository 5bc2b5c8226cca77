package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestJobItem_Counts(t *testing.T) {
	appCollectors()
	before := testutil.ToFloat64(jobItemsVec.WithLabelValues("test_job", OutcomeSent))
	JobItem("test_job", OutcomeSent)
	JobItem("test_job", OutcomeSent)
	require.Equal(t, before+2, testutil.ToFloat64(jobItemsVec.WithLabelValues("test_job", OutcomeSent)))
	ObserveJob("test_job", time.Now())
}

func TestObserveUpstream(t *testing.T) {
	ObserveUpstream("/api/appdetails", "200", time.Now().Add(-40*time.Millisecond))
	appCollectors()
	require.Equal(t, 1, testutil.CollectAndCount(upstreamDurVec, "steamwatch_store_req_dur_ms"))
}

func TestNewMetric_UnsupportedTypePanics(t *testing.T) {
	require.Panics(t, func() { NewMetric(&Metric{Name: "x", Type: "gauge"}, "") })
}

func TestMillisecondsSince(t *testing.T) {
	ms := MillisecondsSince(time.Now().Add(-1500 * time.Millisecond))
	require.GreaterOrEqual(t, ms, 1500.0)
}

func TestComputeApproximateRequestSize(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/api/v1/watchlist", nil)
	r.Header.Set("X-A", "bc")
	r.ContentLength = 10
	// path 17 + method 4 + proto 8 + header 5 + host 11 + body 10
	require.Equal(t, 17+4+8+5+len(r.Host)+10, computeApproximateRequestSize(r))
}

func TestPrometheus_ServesMetricsPath(t *testing.T) {
	gin.SetMode(gin.TestMode)
	e := gin.New()
	p := NewPrometheus(NewPrometheusOptions{Subsystem: "metrics_test"})
	p.Use(e)
	e.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	w := httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `metrics_test_req_total{code="200",method="GET",url="/ping"} 1`)

	// a second instance reuses the registered collectors
	require.NotPanics(t, func() { NewPrometheus(NewPrometheusOptions{Subsystem: "metrics_test"}) })
}
