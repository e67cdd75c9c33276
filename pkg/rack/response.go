package rack

import (
	"bufio"
	"net"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"mercator-hq/bridge/pkg/protocol"
	"mercator-hq/bridge/pkg/rack/body"
)

// IsNoContent reports whether status never carries a body.
func IsNoContent(status int) bool {
	switch status {
	case http.StatusNoContent, http.StatusResetContent, http.StatusNotModified:
		return true
	}
	return false
}

// StatusCode converts an application status value to an int. Any Go integer
// type is accepted as long as the value fits in an int.
func StatusCode(v any) (int, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := rv.Int()
		if int64(int(n)) != n {
			return 0, false
		}
		return int(n), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n := rv.Uint()
		if n > uint64(^uint(0)>>1) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}

// Wrap validates an application tuple and assembles the engine response.
//
// Assembly rules:
//   - Status must be a Go integer and Headers must not be nil, otherwise an
//     *ArgumentError is returned
//   - content-length is dropped: the transport frames the body from its
//     computed length and a declared value that disagrees is only logged
//   - Hop headers (connection, keep-alive, transfer-encoding, ...) are
//     stripped and reported to the observer
//   - Statuses 204, 205 and 304 never carry a body; the application body is
//     closed
//   - HEAD responses keep the body length but no data
//   - Keys under MetaPrefix become response metadata: KeyProtocol sets the
//     upgrade protocol and KeyHijack the connection hijacker
//   - Pending completion callbacks are attached to the body so closing it
//     fires them; a response without a body fires them immediately
//
// Wrap calls into application-supplied body values and may panic. Call runs
// it under recover; callers using Wrap directly must do the same.
//
// Example usage:
//
//	env, _ := adapter.MakeEnvironment(req)
//	resp, err := adapter.Wrap(env, rack.Tuple{
//		Status:  200,
//		Headers: map[string]any{"content-type": "text/plain"},
//		Body:    []string{"Hello"},
//	}, req)
func (a *Adapter) Wrap(env Env, t Tuple, req *protocol.Request) (*protocol.Response, error) {
	status, ok := StatusCode(t.Status)
	if !ok {
		return nil, &ArgumentError{Message: "Status must be an integer!"}
	}
	if t.Headers == nil {
		return nil, &ArgumentError{Message: "Headers must not be nil!"}
	}

	headers, meta := DecodeFields(t.Headers)
	logger := env.Logger()

	declared := int64(-1)
	if values := headers.Delete("content-length"); len(values) > 0 {
		n, err := strconv.ParseInt(strings.TrimSpace(values[0]), 10, 64)
		if err != nil || n < 0 {
			logger.Warn("ignoring invalid content-length", "value", values[0])
		} else {
			declared = n
		}
	}

	if hop := headers.Extract(HopHeaders...); len(hop) > 0 {
		names := make([]string, 0, len(hop))
		for _, f := range hop {
			names = append(names, f.Name)
		}
		logger.Warn("ignoring protocol-level headers", "headers", names)
		a.observer.HopHeadersStripped(names)
	}

	var b protocol.Body
	kind := body.KindNone
	if IsNoContent(status) {
		if !body.IsEmpty(t.Body) {
			logger.Warn("ignoring body for response without content", "status", status)
		}
		body.Close(t.Body, nil)
	} else {
		var err error
		b, kind, err = body.Wrap(status, t.Body, req.Body)
		if err != nil {
			return nil, &ArgumentError{Message: "Body must be a chunk sequence, a stream callable or nil!"}
		}
		if n := lengthOf(b); declared >= 0 && n >= 0 && n != declared {
			logger.Warn("ignoring mismatched content-length", "declared", declared, "length", n)
		}
	}
	a.observer.BodyWrapped(kind.String())

	if req.IsHead() && b != nil {
		b = protocol.NewHead(b)
	}

	if f := env.Finished(); f != nil {
		switch {
		case !f.Pending():
			f.seal()
		case b == nil:
			f.Fire(env, status, headers, nil)
		default:
			b = protocol.NewCompletable(b, func(err error) {
				f.Fire(env, status, headers, err)
			})
		}
	}

	resp := protocol.NewResponse(status, headers, b)
	resp.Protocol = metaProtocol(meta[KeyProtocol])
	resp.Hijack = metaHijack(meta[KeyHijack])
	return resp, nil
}

func lengthOf(b protocol.Body) int64 {
	if b == nil {
		return 0
	}
	return b.Length()
}

func metaProtocol(v any) string {
	switch p := v.(type) {
	case string:
		return p
	case []string:
		if len(p) > 0 {
			return p[0]
		}
	}
	return ""
}

func metaHijack(v any) protocol.HijackFunc {
	switch h := v.(type) {
	case protocol.HijackFunc:
		return h
	case func(net.Conn, *bufio.ReadWriter):
		return h
	}
	return nil
}
