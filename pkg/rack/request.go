package rack

import (
	"strings"

	"mercator-hq/bridge/pkg/protocol"
	"mercator-hq/bridge/pkg/rack/body"
)

// RequestFromEnv returns the engine request for env. The original request is
// reused when the environment was built by an Adapter; otherwise one is
// rebuilt from the CGI keys, with the body read from KeyInput.
func RequestFromEnv(env Env) *protocol.Request {
	if req := env.Request(); req != nil {
		return req
	}

	path := env.String(KeyPathInfo)
	if query := env.String(KeyQueryString); query != "" {
		path += "?" + query
	}

	req := &protocol.Request{
		Scheme:    env.String(KeyURLScheme),
		Authority: env.String(KeyHTTPHost),
		Method:    env.String(KeyRequestMethod),
		Path:      path,
		Version:   env.String(KeyServerProtocol),
		Headers:   DecodeEnv(env),
		Protocol:  envProtocol(env),
	}
	if in := env.Input(); in != nil {
		req.Body = &inputBody{input: in}
	}

	env[KeyRequest] = req
	return req
}

func envProtocol(env Env) []string {
	switch p := env[KeyProtocol].(type) {
	case []string:
		return p
	case string:
		return []string{p}
	}
	if upgrade := env.String(KeyHTTPUpgrade); upgrade != "" {
		parts := strings.Split(upgrade, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return nil
}

// TupleFromResponse converts an engine response back into an application
// tuple, so engine handlers can be mounted inside applications.
func TupleFromResponse(resp *protocol.Response) Tuple {
	fields := EncodeFields(resp.Headers)
	if resp.Protocol != "" {
		fields[KeyProtocol] = resp.Protocol
	}
	if resp.Hijack != nil {
		fields[KeyHijack] = resp.Hijack
	}

	var b any
	if resp.Body != nil {
		b = resp.Body
		if s, ok := resp.Body.(protocol.Streamer); ok && s.Stream() {
			b = body.StreamFunc(s.Call)
		}
	}
	return Tuple{Status: resp.Status, Headers: fields, Body: b}
}

// inputBody adapts an Input back into a protocol.Body.
type inputBody struct {
	input *Input
}

func (b *inputBody) Read() ([]byte, error) { return b.input.Gets() }
func (b *inputBody) Close(error)           { _ = b.input.Close() }
func (b *inputBody) Empty() bool           { return b.input.Closed() }
func (b *inputBody) Ready() bool           { return false }
func (b *inputBody) Length() int64         { return -1 }
func (b *inputBody) Rewind() error         { return b.input.Rewind() }
