package rack

import (
	"io"
	"log/slog"
	"testing"

	"mercator-hq/bridge/pkg/protocol"
)

func benchmarkHeaders() *protocol.Headers {
	return protocol.NewHeaders(
		protocol.Field{Name: "host", Value: "localhost:9292"},
		protocol.Field{Name: "user-agent", Value: "bench/1.0"},
		protocol.Field{Name: "accept", Value: "text/html"},
		protocol.Field{Name: "accept", Value: "application/json"},
		protocol.Field{Name: "cookie", Value: "a=1"},
		protocol.Field{Name: "cookie", Value: "b=2"},
		protocol.Field{Name: "x-request-id", Value: "0f4c8a"},
	)
}

// Benchmark_EncodeEnv benchmarks copying request headers into an environment
func Benchmark_EncodeEnv(b *testing.B) {
	headers := benchmarkHeaders()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		EncodeEnv(headers, Env{})
	}
}

// Benchmark_DecodeEnv benchmarks rebuilding headers from an environment
func Benchmark_DecodeEnv(b *testing.B) {
	env := Env{}
	EncodeEnv(benchmarkHeaders(), env)
	env[KeyContentType] = "text/plain"

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = DecodeEnv(env)
	}
}

// Benchmark_DecodeFields benchmarks converting application response headers
func Benchmark_DecodeFields(b *testing.B) {
	fields := map[string]any{
		"content-type":  "text/plain",
		"set-cookie":    []string{"a=1", "b=2"},
		"cache-control": "no-cache",
		"x-request-id":  "0f4c8a",
		KeyProtocol:     "websocket",
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = DecodeFields(fields)
	}
}

// Benchmark_Adapter_Call benchmarks a full request through the adapter
func Benchmark_Adapter_Call(b *testing.B) {
	app := staticApp(Tuple{
		Status:  200,
		Headers: map[string]any{"content-type": "text/plain"},
		Body:    []string{"Hello", " World"},
	})
	a, err := New(app, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))), WithErrorSink(io.Discard))
	if err != nil {
		b.Fatalf("New() error = %v", err)
	}
	headers := benchmarkHeaders()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		req := &protocol.Request{
			Scheme:    "http",
			Authority: "localhost:9292",
			Method:    "GET",
			Path:      "/bench?x=1",
			Version:   "HTTP/1.1",
			Headers:   headers,
		}
		resp := a.Call(req)
		if _, err := resp.ReadAll(); err != nil {
			b.Fatalf("ReadAll() error = %v", err)
		}
	}
}
