// Package demo is the sample application served by the bridge command. It
// exercises each response body shape and the completion callbacks.
package demo

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"mercator-hq/bridge/pkg/protocol"
	"mercator-hq/bridge/pkg/rack"
	"mercator-hq/bridge/pkg/rack/body"
)

const (
	defaultTicks    = 5
	maxTicks        = 100
	defaultInterval = 200 * time.Millisecond
)

// App routes requests to the demo endpoints:
//
//	GET  /          greeting
//	GET  /env       the CGI part of the environment, one key per line
//	GET  /stream    ?n= ticks written through a stream body
//	POST /echo      the request body streamed back
//	GET  /files/... files under the configured root
//	GET  /upgrade   raw echo over the hijacked connection (Upgrade: echo)
type App struct {
	root     string
	interval time.Duration
}

// Option configures an App.
type Option func(*App)

// WithFileRoot serves /files/ from dir. Without it /files/ answers 404.
func WithFileRoot(dir string) Option {
	return func(a *App) { a.root = dir }
}

// WithTickInterval sets the delay between /stream ticks.
func WithTickInterval(d time.Duration) Option {
	return func(a *App) { a.interval = d }
}

// New creates the demo application.
func New(opts ...Option) *App {
	a := &App{interval: defaultInterval}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Call implements rack.App.
func (a *App) Call(env rack.Env) (rack.Tuple, error) {
	method := env.String(rack.KeyRequestMethod)
	path := env.String(rack.KeyPathInfo)

	if err := rack.OnFinished(env, func(env rack.Env, status int, _ *protocol.Headers, err error) error {
		env.Logger().Debug("demo response finished",
			"method", method,
			"path", path,
			"status", status,
			"error", err,
		)
		return nil
	}); err != nil {
		return rack.Tuple{}, err
	}

	switch {
	case path == "/" || path == "":
		return text(http.StatusOK, "Hello from bridge!\n"), nil
	case path == "/env":
		return a.env(env), nil
	case path == "/stream":
		return a.stream(env), nil
	case path == "/echo":
		if method != http.MethodPost && method != http.MethodPut {
			return text(http.StatusMethodNotAllowed, "use POST or PUT\n"), nil
		}
		return a.echo(env), nil
	case strings.HasPrefix(path, "/files/"):
		return a.file(strings.TrimPrefix(path, "/files/")), nil
	case path == "/upgrade":
		return a.upgrade(env), nil
	}
	return text(http.StatusNotFound, "Not Found\n"), nil
}

func text(status int, s string) rack.Tuple {
	return rack.Tuple{
		Status:  status,
		Headers: map[string]any{"content-type": "text/plain; charset=utf-8"},
		Body:    []string{s},
	}
}

func (a *App) env(env rack.Env) rack.Tuple {
	keys := make([]string, 0, len(env))
	for k, v := range env {
		if _, ok := v.(string); ok && !strings.Contains(k, ".") {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, k+"="+env.String(k)+"\n")
	}
	return rack.Tuple{
		Status:  http.StatusOK,
		Headers: map[string]any{"content-type": "text/plain; charset=utf-8"},
		Body:    lines,
	}
}

func (a *App) stream(env rack.Env) rack.Tuple {
	n := defaultTicks
	if q, err := url.ParseQuery(env.String(rack.KeyQueryString)); err == nil {
		if v, err := strconv.Atoi(q.Get("n")); err == nil && v >= 0 {
			n = min(v, maxTicks)
		}
	}
	interval := a.interval
	ctx := context.Background()
	if r := env.Request(); r != nil {
		ctx = r.Context()
	}

	return rack.Tuple{
		Status: http.StatusOK,
		Headers: map[string]any{
			"content-type":  "text/plain; charset=utf-8",
			"cache-control": "no-cache",
		},
		Body: body.StreamFunc(func(stream protocol.Stream) error {
			defer stream.Close()
			for i := 1; i <= n; i++ {
				if _, err := fmt.Fprintf(stream, "tick %d\n", i); err != nil {
					return err
				}
				if err := stream.Flush(); err != nil {
					return err
				}
				if i == n || interval <= 0 {
					continue
				}
				select {
				case <-time.After(interval):
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			return nil
		}),
	}
}

func (a *App) echo(env rack.Env) rack.Tuple {
	contentType := env.String(rack.KeyContentType)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	input := env.Input()
	if input == nil {
		return rack.Tuple{Status: http.StatusOK, Headers: map[string]any{"content-type": contentType}, Body: []string{}}
	}

	return rack.Tuple{
		Status:  http.StatusOK,
		Headers: map[string]any{"content-type": contentType},
		Body: body.EachFunc(func(yield func([]byte) error) error {
			return input.Each(yield)
		}),
	}
}

func (a *App) file(name string) rack.Tuple {
	if a.root == "" || !filepath.IsLocal(name) {
		return text(http.StatusNotFound, "Not Found\n")
	}

	f, err := protocol.OpenFile(filepath.Join(a.root, filepath.FromSlash(name)))
	if err != nil {
		if protocol.IsNotExist(err) {
			return text(http.StatusNotFound, "Not Found\n")
		}
		return text(http.StatusInternalServerError, "cannot open file\n")
	}
	return rack.Tuple{
		Status:  http.StatusOK,
		Headers: map[string]any{"content-type": "application/octet-stream"},
		Body:    f,
	}
}

func (a *App) upgrade(env rack.Env) rack.Tuple {
	request := env.Request()
	if request == nil || !slices.Contains(request.Protocol, "echo") {
		return text(http.StatusUpgradeRequired, "Upgrade: echo required\n")
	}

	return rack.Tuple{
		Status: http.StatusSwitchingProtocols,
		Headers: map[string]any{
			rack.KeyProtocol: "echo",
			rack.KeyHijack: protocol.HijackFunc(func(conn net.Conn, rw *bufio.ReadWriter) {
				defer conn.Close()
				for {
					line, err := rw.ReadString('\n')
					if line != "" {
						_, _ = rw.WriteString(line)
						_ = rw.Flush()
					}
					if err != nil {
						return
					}
				}
			}),
		},
	}
}
