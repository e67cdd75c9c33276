// Package fasthttp serves a protocol.Handler with github.com/valyala/fasthttp.
package fasthttp

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"strings"

	"github.com/valyala/fasthttp"

	"mercator-hq/bridge/pkg/protocol"
)

// NewRequestHandler adapts h into a fasthttp.RequestHandler. A nil logger
// uses slog.Default.
//
// The request body is buffered by fasthttp before the handler runs. Response
// bodies that are not held in memory are written with SetBodyStreamWriter,
// after the handler has returned.
func NewRequestHandler(h protocol.Handler, logger *slog.Logger) fasthttp.RequestHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return func(ctx *fasthttp.RequestCtx) {
		// The request context outlives the handler when the body is streamed.
		cctx, cancel := context.WithCancel(RequestContext(ctx))

		req := NewRequest(ctx).WithContext(cctx)
		resp := h.Call(req)
		if resp == nil {
			cancel()
			ctx.SetStatusCode(fasthttp.StatusInternalServerError)
			return
		}

		if !writeResponse(ctx, req, resp, logger, cancel) {
			cancel()
		}
	}
}

// contextKey is the user value key holding a request scoped context.
const contextKey = "bridge.context"

// WithRequestContext attaches c to ctx. Handlers built by NewRequestHandler
// derive the protocol request context from it, so values set by wrapping
// handlers (request IDs, spans) reach the application.
func WithRequestContext(ctx *fasthttp.RequestCtx, c context.Context) {
	ctx.SetUserValue(contextKey, c)
}

// RequestContext returns the context attached by WithRequestContext, or
// context.Background.
func RequestContext(ctx *fasthttp.RequestCtx) context.Context {
	if c, ok := ctx.UserValue(contextKey).(context.Context); ok && c != nil {
		return c
	}
	return context.Background()
}

// NewRequest converts ctx into a protocol request.
func NewRequest(ctx *fasthttp.RequestCtx) *protocol.Request {
	headers := protocol.NewHeaders()
	ctx.Request.Header.VisitAll(func(k, v []byte) {
		headers.Add(string(k), string(v))
	})

	version := "HTTP/1.0"
	if ctx.Request.Header.IsHTTP11() {
		version = "HTTP/1.1"
	}

	scheme := "http"
	if ctx.IsTLS() {
		scheme = "https"
	} else if proto := headers.Get("x-forwarded-proto"); proto != "" {
		scheme = strings.ToLower(proto)
	}

	req := &protocol.Request{
		Scheme:     scheme,
		Authority:  string(ctx.Host()),
		Method:     string(ctx.Method()),
		Path:       string(ctx.RequestURI()),
		Version:    version,
		Headers:    headers,
		Protocol:   upgradeProtocols(headers),
		RemoteAddr: ctx.RemoteAddr().String(),
	}
	if data := ctx.PostBody(); len(data) > 0 {
		req.Body = protocol.NewBuffered(append([]byte(nil), data...))
	}
	return req
}

func upgradeProtocols(h *protocol.Headers) []string {
	upgrade := h.Get("upgrade")
	if upgrade == "" || !strings.Contains(strings.ToLower(h.Get("connection")), "upgrade") {
		return nil
	}
	var protocols []string
	for _, p := range strings.Split(upgrade, ",") {
		if p = strings.TrimSpace(p); p != "" {
			protocols = append(protocols, p)
		}
	}
	return protocols
}

// writeResponse copies resp into ctx. It reports whether the body is written
// after the handler returns, in which case cancel runs when it completes.
func writeResponse(ctx *fasthttp.RequestCtx, req *protocol.Request, resp *protocol.Response, logger *slog.Logger, cancel context.CancelFunc) bool {
	ctx.SetStatusCode(resp.Status)
	resp.Headers.Each(func(name, value string) {
		if strings.EqualFold(name, "content-length") {
			return
		}
		ctx.Response.Header.Add(name, value)
	})
	if resp.Protocol != "" {
		ctx.Response.Header.Set("Upgrade", resp.Protocol)
		ctx.Response.Header.Set("Connection", "Upgrade")
	}

	b := resp.Body

	if resp.Hijack != nil {
		if b != nil {
			b.Close(nil)
		}
		ctx.Response.SkipBody = true
		hijack := resp.Hijack
		ctx.Hijack(func(c net.Conn) {
			hijack(c, bufio.NewReadWriter(bufio.NewReader(c), bufio.NewWriter(c)))
		})
		return false
	}

	if b == nil {
		return false
	}

	if req.IsHead() {
		ctx.Response.SkipBody = true
		if n := b.Length(); n >= 0 {
			ctx.Response.Header.SetContentLength(int(n))
		}
		b.Close(nil)
		return false
	}

	if s, ok := b.(protocol.Streamer); !(ok && s.Stream()) {
		if b.Ready() {
			data, err := protocol.ReadAll(b)
			if err != nil {
				logWriteError(logger, req, resp, err)
			}
			ctx.SetBody(data)
			return false
		}
		if n := b.Length(); n >= 0 {
			ctx.SetBodyStream(&bodyStream{body: b, r: protocol.NewBodyReader(b)}, int(n))
			return false
		}
	}

	ctx.SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancel()
		if err := protocol.WriteBody(w, b, req.Body, w.Flush); err != nil {
			logWriteError(logger, req, resp, err)
		}
	})
	return true
}

// bodyStream is an io.ReadCloser over a body of known length. fasthttp closes
// it once the response has been written.
type bodyStream struct {
	body protocol.Body
	r    io.Reader
	err  error
}

func (s *bodyStream) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		s.err = err
	}
	return n, err
}

func (s *bodyStream) Close() error {
	s.body.Close(s.err)
	return nil
}

func logWriteError(logger *slog.Logger, req *protocol.Request, resp *protocol.Response, err error) {
	logger.Debug("response write failed",
		"method", req.Method,
		"path", req.Path,
		"status", resp.Status,
		"error", err,
	)
}
