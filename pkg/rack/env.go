package rack

import (
	"log/slog"

	"mercator-hq/bridge/pkg/protocol"
)

// CGI keys (RFC 3875 section 4.1).
const (
	KeyRequestMethod  = "REQUEST_METHOD"
	KeyScriptName     = "SCRIPT_NAME"
	KeyPathInfo       = "PATH_INFO"
	KeyRequestPath    = "REQUEST_PATH"
	KeyRequestURI     = "REQUEST_URI"
	KeyQueryString    = "QUERY_STRING"
	KeyServerProtocol = "SERVER_PROTOCOL"
	KeyServerName     = "SERVER_NAME"
	KeyServerPort     = "SERVER_PORT"
	KeyRemoteAddr     = "REMOTE_ADDR"
	KeyContentType    = "CONTENT_TYPE"
	KeyContentLength  = "CONTENT_LENGTH"
	KeyHTTPHost       = "HTTP_HOST"
	KeyHTTPUpgrade    = "HTTP_UPGRADE"
)

// Side-channel keys.
const (
	KeyInput            = "rack.input"
	KeyErrors           = "rack.errors"
	KeyLogger           = "rack.logger"
	KeyURLScheme        = "rack.url_scheme"
	KeyProtocol         = "rack.protocol"
	KeyHijack           = "rack.hijack"
	KeyResponseFinished = "rack.response_finished"
	KeyRequest          = "protocol.http.request"
)

// MetaPrefix marks response header keys that carry protocol metadata rather
// than wire headers.
const MetaPrefix = "rack."

// Env is the per-request environment handed to an application.
type Env map[string]any

// String returns the string value stored at key, or "".
func (e Env) String(key string) string {
	s, _ := e[key].(string)
	return s
}

// Request returns the engine request the environment was built from.
func (e Env) Request() *protocol.Request {
	r, _ := e[KeyRequest].(*protocol.Request)
	return r
}

// Input returns the request body input, or nil when the request had no body.
func (e Env) Input() *Input {
	in, _ := e[KeyInput].(*Input)
	return in
}

// Logger returns the request logger, falling back to slog.Default.
func (e Env) Logger() *slog.Logger {
	if l, ok := e[KeyLogger].(*slog.Logger); ok && l != nil {
		return l
	}
	return slog.Default()
}

// Finished returns the completion callback registry, or nil.
func (e Env) Finished() *Finished {
	f, _ := e[KeyResponseFinished].(*Finished)
	return f
}

// Tuple is the (status, headers, body) triple returned by an application.
//
// Status must hold an integer. Header values are strings (newline-separated
// for multiple values) or []string. Body is nil, a chunk sequence, a stream
// callable or a protocol.Body; see package body.
type Tuple struct {
	Status  any
	Headers map[string]any
	Body    any
}

// App is an application following the environment calling convention.
type App interface {
	Call(env Env) (Tuple, error)
}

// AppFunc adapts a function to App.
type AppFunc func(env Env) (Tuple, error)

// Call calls f(env).
func (f AppFunc) Call(env Env) (Tuple, error) {
	return f(env)
}
