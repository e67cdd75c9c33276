package rack

import (
	"errors"
	"testing"

	"mercator-hq/bridge/pkg/protocol"
)

func TestMakeEnvironment(t *testing.T) {
	a := newTestAdapter(t, staticApp(Tuple{}))

	t.Run("request line", func(t *testing.T) {
		req := newRequest("GET", "/?foo=bar")
		env, err := a.MakeEnvironment(req)
		if err != nil {
			t.Fatalf("MakeEnvironment() error = %v", err)
		}

		want := map[string]string{
			KeyRequestMethod:  "GET",
			KeyScriptName:     "",
			KeyPathInfo:       "/",
			KeyRequestPath:    "/",
			KeyRequestURI:     "/?foo=bar",
			KeyQueryString:    "foo=bar",
			KeyServerProtocol: "HTTP/1.1",
			KeyServerName:     "localhost",
			KeyServerPort:     "9292",
			KeyHTTPHost:       "localhost:9292",
			KeyURLScheme:      "http",
		}
		for key, value := range want {
			if got := env.String(key); got != value {
				t.Errorf("env[%s] = %q, want %q", key, got, value)
			}
		}

		if _, ok := env[KeyInput]; ok {
			t.Error("rack.input present for a request without body")
		}
		if env.Request() != req {
			t.Error("request back-reference missing")
		}
		if env.Finished() == nil {
			t.Error("completion registry missing")
		}
	})

	t.Run("no query string", func(t *testing.T) {
		env, _ := a.MakeEnvironment(newRequest("GET", "/index"))
		if env.String(KeyQueryString) != "" || env.String(KeyPathInfo) != "/index" {
			t.Errorf("PATH_INFO = %q, QUERY_STRING = %q", env.String(KeyPathInfo), env.String(KeyQueryString))
		}
	})

	t.Run("authority without port", func(t *testing.T) {
		req := newRequest("GET", "/")
		req.Authority = "example.com"
		env, _ := a.MakeEnvironment(req)

		if env.String(KeyServerName) != "example.com" {
			t.Errorf("SERVER_NAME = %q", env.String(KeyServerName))
		}
		if _, ok := env[KeyServerPort]; ok {
			t.Error("SERVER_PORT set without a port")
		}
	})

	t.Run("ipv6 authority", func(t *testing.T) {
		req := newRequest("GET", "/")
		req.Authority = "[::1]:8080"
		env, _ := a.MakeEnvironment(req)

		if env.String(KeyServerName) != "[::1]" || env.String(KeyServerPort) != "8080" {
			t.Errorf("SERVER_NAME = %q, SERVER_PORT = %q", env.String(KeyServerName), env.String(KeyServerPort))
		}
	})

	t.Run("authority wins over host header", func(t *testing.T) {
		req := newRequest("GET", "/", protocol.Field{Name: "host", Value: "other.example"})
		req.Authority = "example.com"
		env, _ := a.MakeEnvironment(req)

		if got := env.String(KeyHTTPHost); got != "example.com" {
			t.Errorf("HTTP_HOST = %q, want %q", got, "example.com")
		}
	})

	t.Run("host header without authority", func(t *testing.T) {
		req := newRequest("GET", "/", protocol.Field{Name: "host", Value: "other.example"})
		req.Authority = ""
		env, _ := a.MakeEnvironment(req)

		if got := env.String(KeyHTTPHost); got != "other.example" {
			t.Errorf("HTTP_HOST = %q, want %q", got, "other.example")
		}
	})

	t.Run("multiple host headers", func(t *testing.T) {
		req := newRequest("GET", "/",
			protocol.Field{Name: "host", Value: "a.example"},
			protocol.Field{Name: "host", Value: "b.example"},
		)
		req.Authority = ""

		_, err := a.MakeEnvironment(req)
		var argErr *ArgumentError
		if !errors.As(err, &argErr) || argErr.Message != "Multiple host headers!" {
			t.Errorf("MakeEnvironment() error = %v, want multiple host headers", err)
		}
	})

	t.Run("headers", func(t *testing.T) {
		req := newRequest("POST", "/submit",
			protocol.Field{Name: "content-type", Value: "application/json"},
			protocol.Field{Name: "cookie", Value: "a=1"},
			protocol.Field{Name: "cookie", Value: "b=2"},
			protocol.Field{Name: "accept", Value: "text/html"},
			protocol.Field{Name: "accept", Value: "application/json"},
			protocol.Field{Name: "x-request-id", Value: "abc"},
		)
		req.Body = protocol.NewBufferedString(`{"a":1}`)
		req.RemoteAddr = "127.0.0.1:5555"

		env, err := a.MakeEnvironment(req)
		if err != nil {
			t.Fatalf("MakeEnvironment() error = %v", err)
		}

		want := map[string]string{
			KeyContentType:      "application/json",
			KeyContentLength:    "7",
			"HTTP_COOKIE":       "a=1; b=2",
			"HTTP_ACCEPT":       "text/html, application/json",
			"HTTP_X_REQUEST_ID": "abc",
			KeyRemoteAddr:       "127.0.0.1",
		}
		for key, value := range want {
			if got := env.String(key); got != value {
				t.Errorf("env[%s] = %q, want %q", key, got, value)
			}
		}
		if _, ok := env["HTTP_CONTENT_TYPE"]; ok {
			t.Error("content-type copied as an HTTP_ key")
		}
		if req.Headers.Has("content-type") {
			t.Error("content-type left in the request headers")
		}

		in := env.Input()
		if in == nil {
			t.Fatal("rack.input missing")
		}
		data, _ := in.ReadLength(-1)
		if string(data) != `{"a":1}` {
			t.Errorf("input = %q", data)
		}
	})

	t.Run("content-length from header", func(t *testing.T) {
		req := newRequest("POST", "/", protocol.Field{Name: "content-length", Value: "12"})
		env, _ := a.MakeEnvironment(req)

		if env.String(KeyContentLength) != "12" {
			t.Errorf("CONTENT_LENGTH = %q, want 12", env.String(KeyContentLength))
		}
		if _, ok := env["HTTP_CONTENT_LENGTH"]; ok {
			t.Error("content-length copied as an HTTP_ key")
		}
	})

	t.Run("empty body is closed and omitted", func(t *testing.T) {
		req := newRequest("POST", "/")
		b := protocol.NewBuffered()
		req.Body = b
		env, _ := a.MakeEnvironment(req)

		if env.Input() != nil {
			t.Error("rack.input present for an empty body")
		}
	})

	t.Run("upgrade protocols", func(t *testing.T) {
		req := newRequest("GET", "/chat")
		req.Protocol = []string{"websocket"}
		env, _ := a.MakeEnvironment(req)

		got, _ := env[KeyProtocol].([]string)
		if len(got) != 1 || got[0] != "websocket" {
			t.Errorf("rack.protocol = %v", env[KeyProtocol])
		}
	})
}
