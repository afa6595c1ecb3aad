package observability

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_RecordAndExpose(t *testing.T) {
	m := NewMetrics()

	m.RecordCycle(120 * time.Millisecond)
	m.RecordCycle(80 * time.Millisecond)
	m.RecordCycleError("upstream_hub_unavailable")
	m.RecordResult(0.412, 11.7)

	if got := testutil.ToFloat64(m.cyclesTotal); got != 2 {
		t.Fatalf("cycles_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.cycleFailures.WithLabelValues("upstream_hub_unavailable")); got != 1 {
		t.Fatalf("cycle_failures = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.moistureLevel); got != 0.412 {
		t.Fatalf("moisture_level = %v, want 0.412", got)
	}
	if got := testutil.ToFloat64(m.dewPointC); got != 11.7 {
		t.Fatalf("dew_point = %v, want 11.7", got)
	}
}

func TestMetrics_HandlerServesExposition(t *testing.T) {
	m := NewMetrics()
	m.RecordResult(0.5, 10.0)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	m.Handler().ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "grasswatch_moisture_level 0.5") {
		t.Fatalf("exposition missing moisture gauge:\n%s", body)
	}
}
