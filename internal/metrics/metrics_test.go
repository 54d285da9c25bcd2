package metrics_test

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/raysh454/favicond/internal/metrics"
	"github.com/raysh454/favicond/internal/model"
)

func TestMetrics_Observe(t *testing.T) {
	t.Parallel()

	m := metrics.New(prometheus.NewRegistry())
	m.ObserveResolution(model.OutcomeFound, 120*time.Millisecond)
	m.ObserveResolution(model.OutcomeFound, 80*time.Millisecond)
	m.ObserveResolution(model.OutcomeTransportError, time.Second)
	m.ObserveBatch(3, 2*time.Second)
	m.ObserveCache(true)
	m.ObserveCache(false)
	m.ObserveCache(false)
	m.ObserveHTTP("/favicons", 200)
	m.ObserveHTTP("/favicons", 400)

	if got := testutil.ToFloat64(m.ResolutionsTotal.WithLabelValues("found")); got != 2 {
		t.Errorf("found resolutions = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.ResolutionsTotal.WithLabelValues("transport_error")); got != 1 {
		t.Errorf("transport errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.BatchesTotal); got != 1 {
		t.Errorf("batches = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.CacheLookupsTotal.WithLabelValues("miss")); got != 2 {
		t.Errorf("cache misses = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("/favicons", "4xx")); got != 1 {
		t.Errorf("4xx requests = %v, want 1", got)
	}
}

func TestMetrics_Handler(t *testing.T) {
	t.Parallel()

	m := metrics.New(nil)
	m.ObserveBatch(1, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)

	for _, want := range []string{"favicond_batches_total 1", "go_goroutines"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
