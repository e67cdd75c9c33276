package rack

import (
	"io"
	"strings"
	"testing"

	"mercator-hq/bridge/pkg/protocol"
)

// onceBody is a body that cannot be replayed.
type onceBody struct {
	*protocol.Reader
}

func newOnceBody(s string) protocol.Body {
	return onceBody{protocol.NewReader(io.NopCloser(strings.NewReader(s)), int64(len(s)))}
}

func TestRewindableNeedsRewind(t *testing.T) {
	r := NewRewindable(nil)

	tests := []struct {
		name        string
		method      string
		contentType string
		want        bool
	}{
		{"post without content type", "POST", "", true},
		{"form", "POST", "application/x-www-form-urlencoded", true},
		{"multipart", "PUT", "multipart/form-data; boundary=x", true},
		{"json post", "POST", "application/json", false},
		{"plain get", "GET", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := newRequest(tt.method, "/")
			if tt.contentType != "" {
				req.Headers.Add("content-type", tt.contentType)
			}
			if got := r.NeedsRewind(req); got != tt.want {
				t.Errorf("NeedsRewind() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRewindableReplaysInput(t *testing.T) {
	var first, second string
	a := newTestAdapter(t, AppFunc(func(env Env) (Tuple, error) {
		in := env.Input()
		data, _ := in.ReadLength(-1)
		first = string(data)

		if err := in.Rewind(); err != nil {
			return Tuple{}, err
		}
		data, _ = in.ReadLength(-1)
		second = string(data)
		return Tuple{Status: 200, Headers: map[string]any{}}, nil
	}))
	handler := NewRewindable(a)

	req := newRequest("POST", "/form", protocol.Field{Name: "content-type", Value: "application/x-www-form-urlencoded"})
	req.Body = newOnceBody("a=1&b=2")

	resp := handler.Call(req)

	if resp.Status != 200 {
		t.Fatalf("Status = %d, body = %q", resp.Status, readBody(t, resp))
	}
	if first != "a=1&b=2" || second != "a=1&b=2" {
		t.Errorf("reads = %q, %q", first, second)
	}
}

func TestRewindableLeavesOtherRequests(t *testing.T) {
	a := newTestAdapter(t, AppFunc(func(env Env) (Tuple, error) {
		if err := env.Input().Rewind(); err != nil {
			return Tuple{}, err
		}
		return Tuple{Status: 200, Headers: map[string]any{}}, nil
	}))
	handler := NewRewindable(a)

	req := newRequest("POST", "/api", protocol.Field{Name: "content-type", Value: "application/json"})
	req.Body = newOnceBody(`{}`)

	resp := handler.Call(req)

	if got := readBody(t, resp); got != "Error: input is not rewindable" {
		t.Errorf("body = %q", got)
	}
}
