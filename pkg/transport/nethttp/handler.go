// Package nethttp serves a protocol.Handler with the standard library HTTP
// server.
package nethttp

import (
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"mercator-hq/bridge/pkg/protocol"
)

// Handler is an http.Handler that translates requests into protocol
// requests and writes the resulting protocol responses.
type Handler struct {
	handler protocol.Handler
	logger  *slog.Logger
}

// NewHandler creates a Handler serving h. A nil logger uses slog.Default.
func NewHandler(h protocol.Handler, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{handler: h, logger: logger}
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req := NewRequest(r)
	resp := h.handler.Call(req)
	if resp == nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if err := h.writeResponse(w, r, req, resp); err != nil {
		h.logger.DebugContext(r.Context(), "response write failed",
			"method", req.Method,
			"path", req.Path,
			"status", resp.Status,
			"error", err,
		)
	}
}

// NewRequest converts r into a protocol request. The request body is read
// lazily from r.Body.
func NewRequest(r *http.Request) *protocol.Request {
	path := r.RequestURI
	if !strings.HasPrefix(path, "/") {
		path = r.URL.RequestURI()
	}

	req := &protocol.Request{
		Scheme:     scheme(r),
		Authority:  r.Host,
		Method:     r.Method,
		Path:       path,
		Version:    r.Proto,
		Headers:    headers(r.Header),
		Protocol:   upgradeProtocols(r.Header),
		RemoteAddr: r.RemoteAddr,
	}
	if r.Body != nil && r.Body != http.NoBody {
		req.Body = protocol.NewReader(r.Body, r.ContentLength)
	}
	return req.WithContext(r.Context())
}

func scheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		return strings.ToLower(proto)
	}
	return "http"
}

func headers(h http.Header) *protocol.Headers {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)

	out := protocol.NewHeaders()
	for _, name := range names {
		for _, value := range h[name] {
			out.Add(name, value)
		}
	}
	return out
}

func upgradeProtocols(h http.Header) []string {
	upgrade := h.Get("Upgrade")
	if upgrade == "" || !strings.Contains(strings.ToLower(h.Get("Connection")), "upgrade") {
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

func (h *Handler) writeResponse(w http.ResponseWriter, r *http.Request, req *protocol.Request, resp *protocol.Response) error {
	rc := http.NewResponseController(w)
	flush := func() error {
		if err := rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
			return err
		}
		return nil
	}

	header := w.Header()
	resp.Headers.Each(func(name, value string) {
		header.Add(name, value)
	})
	if resp.Protocol != "" {
		header.Set("Upgrade", resp.Protocol)
		header.Set("Connection", "Upgrade")
	}

	b := resp.Body
	if b != nil && b.Length() >= 0 && header.Get("Content-Length") == "" {
		header.Set("Content-Length", strconv.FormatInt(b.Length(), 10))
	}

	if resp.Hijack != nil {
		return h.hijack(w, rc, resp)
	}

	w.WriteHeader(resp.Status)
	if b == nil {
		return nil
	}

	if err := r.Context().Err(); err != nil {
		b.Close(err)
		return err
	}
	return protocol.WriteBody(w, b, req.Body, flush)
}

func (h *Handler) hijack(w http.ResponseWriter, rc *http.ResponseController, resp *protocol.Response) error {
	if resp.Body != nil {
		resp.Body.Close(nil)
	}

	w.WriteHeader(resp.Status)
	if err := rc.Flush(); err != nil {
		return err
	}

	conn, rw, err := rc.Hijack()
	if err != nil {
		return err
	}
	resp.Hijack(conn, rw)
	return nil
}
