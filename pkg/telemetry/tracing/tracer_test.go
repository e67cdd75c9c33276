package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"mercator-hq/bridge/pkg/config"
)

func newTestTracer(t *testing.T, sampler string) (*Tracer, *tracetest.InMemoryExporter) {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tracer, err := NewWithExporter(config.TracingConfig{
		Enabled:     true,
		Sampler:     sampler,
		ServiceName: "bridge-test",
	}, "test", sdktrace.WithSyncer(exporter))
	if err != nil {
		t.Fatalf("NewWithExporter() error = %v", err)
	}
	t.Cleanup(func() { _ = tracer.Shutdown(context.Background()) })
	return tracer, exporter
}

func TestNew_Disabled(t *testing.T) {
	tracer, err := New(config.TracingConfig{Enabled: false}, "test")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if tracer.Enabled() {
		t.Error("expected disabled tracer")
	}

	ctx, span := tracer.Start(context.Background(), "noop")
	defer span.End()

	if TraceID(ctx) != "" || SpanID(ctx) != "" {
		t.Errorf("noop span has ids %q/%q", TraceID(ctx), SpanID(ctx))
	}
	if err := tracer.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestNewWithExporter_InvalidSampler(t *testing.T) {
	_, err := NewWithExporter(config.TracingConfig{Enabled: true, Sampler: "sometimes"}, "test")
	if err == nil {
		t.Fatal("expected error for unknown sampler")
	}
}

func TestTracer_Start(t *testing.T) {
	tracer, exporter := newTestTracer(t, SamplerAlways)

	ctx, span := tracer.Start(context.Background(), "rack.call")
	if TraceID(ctx) == "" || SpanID(ctx) == "" {
		t.Error("expected valid trace and span ids")
	}
	SetError(span, errors.New("boom"))
	span.End()

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("exported %d spans, want 1", len(spans))
	}
	if spans[0].Name != "rack.call" {
		t.Errorf("span name = %q", spans[0].Name)
	}
	if spans[0].Status.Code != codes.Error {
		t.Errorf("span status = %v, want error", spans[0].Status.Code)
	}
}

func TestTracer_NeverSampler(t *testing.T) {
	tracer, exporter := newTestTracer(t, SamplerNever)

	_, span := tracer.Start(context.Background(), "dropped")
	span.End()

	if n := len(exporter.GetSpans()); n != 0 {
		t.Errorf("exported %d spans, want 0", n)
	}
}

func TestTracer_StartHTTP(t *testing.T) {
	tracer, exporter := newTestTracer(t, SamplerNever)

	const traceID = "4bf92f3577b34da6a3ce929d0e0e4736"
	r := httptest.NewRequest(http.MethodGet, "http://example.com/items?page=2", nil)
	r.Header.Set("traceparent", "00-"+traceID+"-00f067aa0ba902b7-01")

	ctx, span := tracer.StartHTTP(r)
	SetHTTPStatus(span, http.StatusServiceUnavailable)
	span.End()

	if TraceID(ctx) != traceID {
		t.Errorf("TraceID = %q, want propagated %q", TraceID(ctx), traceID)
	}

	// The parent was sampled, so the never sampler is overridden.
	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("exported %d spans, want 1", len(spans))
	}
	got := spans[0]
	if got.Name != "HTTP GET" {
		t.Errorf("span name = %q", got.Name)
	}
	if got.Parent.SpanID().String() != "00f067aa0ba902b7" {
		t.Errorf("parent span = %s", got.Parent.SpanID())
	}
	if got.Status.Code != codes.Error {
		t.Errorf("status = %v, want error for 503", got.Status.Code)
	}

	attrs := map[string]string{}
	for _, kv := range got.Attributes {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	if attrs[AttrHTTPTarget] != "/items?page=2" || attrs[AttrHTTPStatusCode] != "503" {
		t.Errorf("attributes = %v", attrs)
	}
}

func TestTracer_Inject(t *testing.T) {
	tracer, _ := newTestTracer(t, SamplerAlways)

	ctx, span := tracer.Start(context.Background(), "outgoing")
	defer span.End()

	headers := http.Header{}
	tracer.Inject(ctx, headers)

	want := "00-" + TraceID(ctx) + "-" + SpanID(ctx) + "-01"
	if got := headers.Get("traceparent"); got != want {
		t.Errorf("traceparent = %q, want %q", got, want)
	}
}

func TestCreateSampler(t *testing.T) {
	tests := []struct {
		name     string
		strategy string
		ratio    float64
		wantErr  bool
	}{
		{"always", SamplerAlways, 0, false},
		{"never", SamplerNever, 0, false},
		{"ratio", SamplerRatio, 0.25, false},
		{"empty defaults to ratio", "", 0.5, false},
		{"ratio out of range", SamplerRatio, 1.5, true},
		{"unknown", "sometimes", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := createSampler(tt.strategy, tt.ratio)
			if (err != nil) != tt.wantErr {
				t.Fatalf("createSampler() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && s == nil {
				t.Error("expected sampler")
			}
		})
	}
}
