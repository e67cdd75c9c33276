package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		timeout time.Duration
		want    time.Duration
	}{
		{"zero uses default", 0, DefaultCheckTimeout},
		{"negative uses default", -time.Second, DefaultCheckTimeout},
		{"custom", 2 * time.Second, 2 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := New(tt.timeout).timeout; got != tt.want {
				t.Errorf("timeout = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestChecker_RegisterUnregister(t *testing.T) {
	c := New(time.Second)
	ok := func(context.Context) error { return nil }

	c.Register("listener", ok)
	c.Register("config", ok)
	c.Register("config", ok)

	if got := c.Names(); !slices.Equal(got, []string{"config", "listener"}) {
		t.Errorf("Names() = %v", got)
	}

	c.Unregister("config")
	if got := c.Names(); !slices.Equal(got, []string{"listener"}) {
		t.Errorf("Names() after Unregister = %v", got)
	}
}

func TestChecker_Readiness(t *testing.T) {
	tests := []struct {
		name   string
		checks map[string]CheckFunc
		want   string
	}{
		{
			name: "no checks",
			want: StatusReady,
		},
		{
			name: "all healthy",
			checks: map[string]CheckFunc{
				"a": func(context.Context) error { return nil },
				"b": func(context.Context) error { return nil },
			},
			want: StatusReady,
		},
		{
			name: "one failing",
			checks: map[string]CheckFunc{
				"a": func(context.Context) error { return nil },
				"b": func(context.Context) error { return errors.New("down") },
			},
			want: StatusDegraded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(time.Second)
			for name, check := range tt.checks {
				c.Register(name, check)
			}

			report := c.Readiness(context.Background())
			if report.Status != tt.want {
				t.Errorf("status = %q, want %q", report.Status, tt.want)
			}
			if len(report.Checks) != len(tt.checks) {
				t.Errorf("got %d results, want %d", len(report.Checks), len(tt.checks))
			}
		})
	}
}

func TestChecker_ReadinessTimeout(t *testing.T) {
	c := New(20 * time.Millisecond)
	c.Register("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	c.Register("stuck", func(context.Context) error {
		time.Sleep(200 * time.Millisecond)
		return nil
	})

	report := c.Readiness(context.Background())
	if report.Status != StatusDegraded {
		t.Fatalf("status = %q", report.Status)
	}
	if msg := report.Checks["stuck"].Message; msg != ErrCheckTimeout.Error() {
		t.Errorf("stuck message = %q", msg)
	}
	if report.Checks["slow"].Status != StatusUnhealthy {
		t.Errorf("slow status = %q", report.Checks["slow"].Status)
	}
}

func TestChecker_Draining(t *testing.T) {
	c := New(time.Second)
	called := false
	c.Register("a", func(context.Context) error {
		called = true
		return nil
	})

	c.SetDraining(true)
	report := c.Readiness(context.Background())
	if report.Status != StatusDraining || report.Ready() {
		t.Errorf("report = %+v", report)
	}
	if called {
		t.Error("checks ran while draining")
	}

	c.SetDraining(false)
	if report := c.Readiness(context.Background()); !report.Ready() {
		t.Errorf("report after drain cleared = %+v", report)
	}
}

func TestHandlers(t *testing.T) {
	c := New(time.Second)
	mux := http.NewServeMux()
	Register(mux, c, Paths{Liveness: "/health", Readiness: "/ready", Version: "/version"}, BuildInfo{Version: "1.2.3"})

	tests := []struct {
		name       string
		method     string
		path       string
		setup      func()
		wantCode   int
		wantStatus string
	}{
		{"liveness", http.MethodGet, "/health", nil, http.StatusOK, StatusOK},
		{"readiness", http.MethodGet, "/ready", nil, http.StatusOK, StatusReady},
		{
			name:   "readiness degraded",
			method: http.MethodGet,
			path:   "/ready",
			setup: func() {
				c.Register("listener", func(context.Context) error { return errors.New("server is not running") })
			},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: StatusDegraded,
		},
		{
			name:       "readiness draining",
			method:     http.MethodGet,
			path:       "/ready",
			setup:      func() { c.SetDraining(true) },
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: StatusDraining,
		},
		{"liveness while draining", http.MethodGet, "/health", nil, http.StatusOK, StatusOK},
		{"head has no body", http.MethodHead, "/health", nil, http.StatusOK, ""},
		{"post rejected", http.MethodPost, "/health", nil, http.StatusMethodNotAllowed, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setup != nil {
				tt.setup()
			}

			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

			if w.Code != tt.wantCode {
				t.Fatalf("code = %d, want %d", w.Code, tt.wantCode)
			}
			if tt.wantStatus == "" {
				if tt.method == http.MethodHead && w.Body.Len() != 0 {
					t.Errorf("HEAD body = %q", w.Body.String())
				}
				return
			}

			var report Report
			if err := json.NewDecoder(w.Body).Decode(&report); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if report.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", report.Status, tt.wantStatus)
			}
		})
	}

	t.Run("version", func(t *testing.T) {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/version", nil))

		var info BuildInfo
		if err := json.NewDecoder(w.Body).Decode(&info); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if info.Version != "1.2.3" || info.GoVersion == "" {
			t.Errorf("info = %+v", info)
		}
	})
}
