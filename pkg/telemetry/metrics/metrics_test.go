package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"mercator-hq/bridge/pkg/config"
)

func testConfig() config.MetricsConfig {
	return config.MetricsConfig{
		Enabled:   true,
		Namespace: "test",
		Subsystem: "bridge",
	}
}

func TestCollector_NewCollector(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := NewCollector(testConfig(), registry)

	if collector.Registry() != registry {
		t.Error("Collector registry not set correctly")
	}
	if !collector.Enabled() {
		t.Error("expected collector to be enabled")
	}

	if NewCollector(config.MetricsConfig{}, nil).Registry() == nil {
		t.Error("expected a registry to be created")
	}
}

func TestCollector_RecordRequest(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	collector.RecordRequest("GET", 200, 10*time.Millisecond)
	collector.RecordRequest("GET", 204, 5*time.Millisecond)
	collector.RecordRequest("BREW", 418, time.Millisecond)

	rm := collector.requestMetrics
	if got := testutil.ToFloat64(rm.requestsTotal.WithLabelValues("GET", "2xx")); got != 2 {
		t.Errorf("GET 2xx = %v, want 2", got)
	}
	if got := testutil.ToFloat64(rm.requestsTotal.WithLabelValues("other", "4xx")); got != 1 {
		t.Errorf("other 4xx = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(rm.requestDuration); got != 2 {
		t.Errorf("duration series = %d, want 2", got)
	}
}

func TestCollector_InFlight(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	collector.RequestStarted()
	collector.RequestStarted()
	collector.RequestFinished()

	if got := testutil.ToFloat64(collector.requestMetrics.inFlight); got != 1 {
		t.Errorf("in flight = %v, want 1", got)
	}
}

func TestCollector_Observer(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())
	am := collector.adapterMetrics

	collector.BodyWrapped("each")
	collector.BodyWrapped("each")
	collector.BodyWrapped("stream")
	collector.HopHeadersStripped([]string{"Connection", "transfer-encoding"})
	collector.ResponseAssembled(200)
	collector.ResponseAssembled(500)
	collector.ApplicationFailed("ArgumentError")
	collector.CallbacksFired(3, 1)

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"each bodies", testutil.ToFloat64(am.bodiesTotal.WithLabelValues("each")), 2},
		{"stream bodies", testutil.ToFloat64(am.bodiesTotal.WithLabelValues("stream")), 1},
		{"connection header", testutil.ToFloat64(am.hopHeadersTotal.WithLabelValues("connection")), 1},
		{"transfer-encoding header", testutil.ToFloat64(am.hopHeadersTotal.WithLabelValues("transfer-encoding")), 1},
		{"2xx responses", testutil.ToFloat64(am.responsesTotal.WithLabelValues("2xx")), 1},
		{"5xx responses", testutil.ToFloat64(am.responsesTotal.WithLabelValues("5xx")), 1},
		{"argument errors", testutil.ToFloat64(am.appErrorsTotal.WithLabelValues("ArgumentError")), 1},
		{"ok callbacks", testutil.ToFloat64(am.callbacksTotal.WithLabelValues("ok")), 2},
		{"failed callbacks", testutil.ToFloat64(am.callbacksTotal.WithLabelValues("failed")), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestCollector_ErrorNameCardinality(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())
	collector.errorNames = NewCardinalityLimiter(1)

	collector.ApplicationFailed("ArgumentError")
	collector.ApplicationFailed("TimeoutError")
	collector.ApplicationFailed("ArgumentError")

	am := collector.adapterMetrics
	if got := testutil.ToFloat64(am.appErrorsTotal.WithLabelValues("ArgumentError")); got != 2 {
		t.Errorf("ArgumentError = %v, want 2", got)
	}
	if got := testutil.ToFloat64(am.appErrorsTotal.WithLabelValues(otherLabel)); got != 1 {
		t.Errorf("other = %v, want 1", got)
	}
}

func TestCollector_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	collector := NewCollector(cfg, prometheus.NewRegistry())

	collector.RecordRequest("GET", 200, time.Millisecond)
	collector.BodyWrapped("each")
	collector.RequestStarted()

	if got := testutil.CollectAndCount(collector.requestMetrics.requestsTotal); got != 0 {
		t.Errorf("requests recorded while disabled: %d", got)
	}
	if got := testutil.CollectAndCount(collector.adapterMetrics.bodiesTotal); got != 0 {
		t.Errorf("bodies recorded while disabled: %d", got)
	}
}

func TestCollector_Handler(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())
	collector.BodyWrapped("file")

	rec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(string(body), `test_bridge_bodies_total{kind="file"} 1`) {
		t.Errorf("metrics output missing body counter:\n%s", body)
	}
}

func TestCardinalityLimiter(t *testing.T) {
	cl := NewCardinalityLimiter(2)

	if !cl.Allow("a") || !cl.Allow("b") {
		t.Fatal("expected first two values to be allowed")
	}
	if cl.Allow("c") {
		t.Error("expected third value to be rejected")
	}
	if !cl.Allow("a") {
		t.Error("expected known value to be allowed")
	}
	if cl.Count() != 2 {
		t.Errorf("Count() = %d, want 2", cl.Count())
	}
}

func TestStatusClass(t *testing.T) {
	tests := map[int]string{101: "1xx", 200: "2xx", 304: "3xx", 404: "4xx", 503: "5xx", 0: "unknown", 700: "unknown"}
	for status, want := range tests {
		if got := statusClass(status); got != want {
			t.Errorf("statusClass(%d) = %q, want %q", status, got, want)
		}
	}
}
