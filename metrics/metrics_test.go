package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_RecordSchedule(t *testing.T) {
	m := NewManager(WithNamespace("test"))

	m.RecordSchedule("preview", nil, 6)
	m.RecordSchedule("confirm", nil, 6)
	m.RecordSchedule("confirm", errors.New("stale"), 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.scheduleGenerations.WithLabelValues("preview", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.scheduleGenerations.WithLabelValues("confirm", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.scheduleGenerations.WithLabelValues("confirm", "error")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.scheduleFixtures))
}

func TestManager_Handler(t *testing.T) {
	m := NewManager()
	m.ObserveHTTP("GET", "/api/championships/{championshipID}", 200, 15*time.Millisecond)
	m.ObserveHTTP("GET", "", 404, time.Millisecond)
	m.RecordMatchResult("completed")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	out := string(body)
	assert.Contains(t, out, `championship_http_requests_total{method="GET",route="/api/championships/{championshipID}",status="200"} 1`)
	assert.Contains(t, out, `route="unmatched"`)
	assert.Contains(t, out, `championship_matches_results_total{status="completed"} 1`)
}

func TestManager_Options(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewManager(WithRegistry(registry), WithHistogramBuckets([]float64{0.1, 1}), WithNamespace(""))

	assert.Same(t, registry, m.Registry())
	m.ObserveHTTP("POST", "/api/auth/login", 401, 2*time.Second)

	families, err := registry.Gather()
	require.NoError(t, err)
	var buckets int
	for _, mf := range families {
		if mf.GetName() == "championship_http_request_duration_seconds" {
			buckets = len(mf.GetMetric()[0].GetHistogram().GetBucket())
		}
	}
	assert.Equal(t, 2, buckets)
}
