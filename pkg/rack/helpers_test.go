package rack

import (
	"bytes"
	"log/slog"
	"sync"
	"testing"

	"mercator-hq/bridge/pkg/protocol"
)

type recordingObserver struct {
	mu       sync.Mutex
	kinds    []string
	stripped [][]string
	statuses []int
	failures []string
	fired    [][2]int
}

func (o *recordingObserver) BodyWrapped(kind string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.kinds = append(o.kinds, kind)
}

func (o *recordingObserver) HopHeadersStripped(names []string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stripped = append(o.stripped, names)
}

func (o *recordingObserver) ResponseAssembled(status int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.statuses = append(o.statuses, status)
}

func (o *recordingObserver) ApplicationFailed(reason string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failures = append(o.failures, reason)
}

func (o *recordingObserver) CallbacksFired(total, failed int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.fired = append(o.fired, [2]int{total, failed})
}

type testAdapter struct {
	*Adapter
	logs     *bytes.Buffer
	observer *recordingObserver
}

func newTestAdapter(t *testing.T, app App) *testAdapter {
	t.Helper()

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	observer := &recordingObserver{}

	a, err := New(app, WithLogger(logger), WithErrorSink(&bytes.Buffer{}), WithObserver(observer))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return &testAdapter{Adapter: a, logs: &logs, observer: observer}
}

func newRequest(method, path string, fields ...protocol.Field) *protocol.Request {
	return &protocol.Request{
		Scheme:    "http",
		Authority: "localhost:9292",
		Method:    method,
		Path:      path,
		Version:   "HTTP/1.1",
		Headers:   protocol.NewHeaders(fields...),
	}
}

func staticApp(t Tuple) App {
	return AppFunc(func(Env) (Tuple, error) { return t, nil })
}

func readBody(t *testing.T, resp *protocol.Response) string {
	t.Helper()
	data, err := resp.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	return string(data)
}
