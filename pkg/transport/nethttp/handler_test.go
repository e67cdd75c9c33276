package nethttp

import (
	"bufio"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mercator-hq/bridge/pkg/protocol"
	"mercator-hq/bridge/pkg/rack"
	"mercator-hq/bridge/pkg/rack/body"
)

func newServer(t *testing.T, app rack.AppFunc) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	adapter, err := rack.New(app, rack.WithLogger(logger), rack.WithErrorSink(io.Discard))
	if err != nil {
		t.Fatalf("rack.New() error = %v", err)
	}
	srv := httptest.NewServer(NewHandler(rack.NewRewindable(adapter), logger))
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	return resp, string(data)
}

func TestHandler(t *testing.T) {
	t.Run("environment", func(t *testing.T) {
		var env rack.Env
		srv := newServer(t, func(e rack.Env) (rack.Tuple, error) {
			env = e
			return rack.Tuple{Status: 200, Headers: map[string]any{}, Body: []string{"ok"}}, nil
		})

		resp, body := get(t, srv.URL+"/?foo=bar")

		if resp.StatusCode != 200 || body != "ok" {
			t.Fatalf("response = %d %q", resp.StatusCode, body)
		}
		if env.String(rack.KeyPathInfo) != "/" || env.String(rack.KeyQueryString) != "foo=bar" {
			t.Errorf("PATH_INFO = %q, QUERY_STRING = %q", env.String(rack.KeyPathInfo), env.String(rack.KeyQueryString))
		}
		if env.String(rack.KeyRequestMethod) != "GET" || env.String(rack.KeyServerName) != "127.0.0.1" {
			t.Errorf("REQUEST_METHOD = %q, SERVER_NAME = %q", env.String(rack.KeyRequestMethod), env.String(rack.KeyServerName))
		}
		if env.String(rack.KeyRemoteAddr) != "127.0.0.1" {
			t.Errorf("REMOTE_ADDR = %q", env.String(rack.KeyRemoteAddr))
		}
		if env.String("HTTP_USER_AGENT") == "" {
			t.Error("HTTP_USER_AGENT missing")
		}
	})

	t.Run("content length and headers", func(t *testing.T) {
		srv := newServer(t, func(rack.Env) (rack.Tuple, error) {
			return rack.Tuple{
				Status: 200,
				Headers: map[string]any{
					"content-type": "text/plain",
					"set-cookie":   []string{"a=1", "b=2"},
					"connection":   "close",
				},
				Body: []string{"Hello", " World"},
			}, nil
		})

		resp, body := get(t, srv.URL)

		if body != "Hello World" {
			t.Errorf("body = %q", body)
		}
		if resp.ContentLength != 11 {
			t.Errorf("ContentLength = %d, want 11", resp.ContentLength)
		}
		if got := resp.Header.Values("Set-Cookie"); len(got) != 2 {
			t.Errorf("Set-Cookie = %v", got)
		}
	})

	t.Run("declared content-length does not frame the body", func(t *testing.T) {
		tests := []struct {
			name     string
			declared string
			body     any
			length   int64
		}{
			{name: "shorter than chunks", declared: "3", body: []string{"Hello"}, length: 5},
			{name: "longer than chunks", declared: "20", body: []string{"Hello"}, length: 5},
			{
				name:     "producer",
				declared: "3",
				body:     body.EachFunc(func(yield func([]byte) error) error { return yield([]byte("Hello")) }),
				length:   -1,
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				srv := newServer(t, func(rack.Env) (rack.Tuple, error) {
					return rack.Tuple{
						Status:  200,
						Headers: map[string]any{"content-length": tt.declared},
						Body:    tt.body,
					}, nil
				})

				resp, got := get(t, srv.URL)

				if got != "Hello" {
					t.Errorf("body = %q, want %q", got, "Hello")
				}
				if resp.ContentLength != tt.length {
					t.Errorf("ContentLength = %d, want %d", resp.ContentLength, tt.length)
				}
			})
		}
	})

	t.Run("streaming", func(t *testing.T) {
		srv := newServer(t, func(rack.Env) (rack.Tuple, error) {
			return rack.Tuple{
				Status:  200,
				Headers: map[string]any{"content-type": "text/plain"},
				Body: body.StreamFunc(func(s protocol.Stream) error {
					for _, chunk := range []string{"Hello", "World"} {
						if _, err := s.Write([]byte(chunk)); err != nil {
							return err
						}
						if err := s.Flush(); err != nil {
							return err
						}
					}
					return s.Close()
				}),
			}, nil
		})

		resp, body := get(t, srv.URL)

		if body != "HelloWorld" {
			t.Errorf("body = %q, want %q", body, "HelloWorld")
		}
		if resp.ContentLength != -1 {
			t.Errorf("ContentLength = %d, want unknown", resp.ContentLength)
		}
	})

	t.Run("echo request body", func(t *testing.T) {
		srv := newServer(t, func(env rack.Env) (rack.Tuple, error) {
			data, err := env.Input().ReadLength(-1)
			if err != nil {
				return rack.Tuple{}, err
			}
			return rack.Tuple{Status: 200, Headers: map[string]any{}, Body: []string{strings.ToUpper(string(data))}}, nil
		})

		resp, err := http.Post(srv.URL, "text/plain", strings.NewReader("echo me"))
		if err != nil {
			t.Fatalf("POST: %v", err)
		}
		defer resp.Body.Close()
		data, _ := io.ReadAll(resp.Body)

		if string(data) != "ECHO ME" {
			t.Errorf("body = %q", data)
		}
	})

	t.Run("head", func(t *testing.T) {
		srv := newServer(t, func(rack.Env) (rack.Tuple, error) {
			return rack.Tuple{Status: 200, Headers: map[string]any{}, Body: []string{"Hello"}}, nil
		})

		resp, err := http.Head(srv.URL)
		if err != nil {
			t.Fatalf("HEAD: %v", err)
		}
		resp.Body.Close()

		if resp.ContentLength != 5 {
			t.Errorf("ContentLength = %d, want 5", resp.ContentLength)
		}
	})

	t.Run("file body", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "index.html")
		if err := os.WriteFile(path, []byte("<h1>hi</h1>"), 0o600); err != nil {
			t.Fatalf("failed to write fixture: %v", err)
		}
		srv := newServer(t, func(rack.Env) (rack.Tuple, error) {
			return rack.Tuple{Status: 200, Headers: map[string]any{"content-type": "text/html"}, Body: fileBody(path)}, nil
		})

		resp, body := get(t, srv.URL)

		if body != "<h1>hi</h1>" || resp.ContentLength != 11 {
			t.Errorf("response = %q (%d bytes declared)", body, resp.ContentLength)
		}
	})

	t.Run("application error", func(t *testing.T) {
		srv := newServer(t, func(rack.Env) (rack.Tuple, error) {
			return rack.Tuple{Status: nil, Headers: map[string]any{}}, nil
		})

		resp, body := get(t, srv.URL)

		if resp.StatusCode != 500 || body != "ArgumentError: Status must be an integer!" {
			t.Errorf("response = %d %q", resp.StatusCode, body)
		}
	})

	t.Run("completion callbacks", func(t *testing.T) {
		done := make(chan int, 1)
		srv := newServer(t, func(env rack.Env) (rack.Tuple, error) {
			_ = rack.OnFinished(env, func(_ rack.Env, status int, _ *protocol.Headers, _ error) error {
				done <- status
				return nil
			})
			return rack.Tuple{Status: 202, Headers: map[string]any{}, Body: []string{"queued"}}, nil
		})

		_, _ = get(t, srv.URL)

		if status := <-done; status != 202 {
			t.Errorf("callback status = %d, want 202", status)
		}
	})
}

// fileBody is an application body that names a file on disk.
type fileBody string

func (f fileBody) Path() string { return string(f) }

func (f fileBody) Each(yield func([]byte) error) error {
	data, err := os.ReadFile(string(f))
	if err != nil {
		return err
	}
	return yield(data)
}

func TestHijack(t *testing.T) {
	srv := newServer(t, func(rack.Env) (rack.Tuple, error) {
		hijack := protocol.HijackFunc(func(conn net.Conn, rw *bufio.ReadWriter) {
			defer conn.Close()
			_, _ = rw.WriteString("raw bytes")
			_ = rw.Flush()
		})
		return rack.Tuple{Status: 101, Headers: map[string]any{
			"rack.protocol": "echo",
			"rack.hijack":   hijack,
		}}, nil
	})

	conn, err := net.Dial("tcp", strings.TrimPrefix(srv.URL, "http://"))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	_, _ = io.WriteString(conn, "GET / HTTP/1.1\r\nHost: example\r\nConnection: Upgrade\r\nUpgrade: echo\r\n\r\n")
	r := bufio.NewReader(conn)
	resp, err := http.ReadResponse(r, nil)
	if err != nil {
		t.Fatalf("ReadResponse: %v", err)
	}
	if resp.StatusCode != 101 {
		t.Fatalf("StatusCode = %d, want 101", resp.StatusCode)
	}
	if got := resp.Header.Get("Upgrade"); got != "echo" {
		t.Errorf("Upgrade = %q, want echo", got)
	}

	data, _ := io.ReadAll(r)
	if string(data) != "raw bytes" {
		t.Errorf("hijacked stream = %q, want %q", data, "raw bytes")
	}
}

func TestNewRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "http://example.com:8080/chat?room=1", nil)
	r.Header.Set("Connection", "Upgrade")
	r.Header.Set("Upgrade", "websocket")
	r.Header.Set("X-Forwarded-Proto", "HTTPS")

	req := NewRequest(r)

	if req.Authority != "example.com:8080" || req.Path != "/chat?room=1" {
		t.Errorf("Authority = %q, Path = %q", req.Authority, req.Path)
	}
	if req.Scheme != "https" {
		t.Errorf("Scheme = %q, want https", req.Scheme)
	}
	if len(req.Protocol) != 1 || req.Protocol[0] != "websocket" {
		t.Errorf("Protocol = %v", req.Protocol)
	}
	if req.Body != nil {
		t.Errorf("Body = %v, want nil", req.Body)
	}
	if req.Context() != r.Context() {
		t.Error("request context not propagated")
	}
}
