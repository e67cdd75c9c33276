package rack

import (
	"fmt"
	"sort"
	"strings"

	"mercator-hq/bridge/pkg/protocol"
)

// HopHeaders are meaningful only to a single connection and are never passed
// through from an application response.
var HopHeaders = []string{
	"connection",
	"keep-alive",
	"public",
	"proxy-authenticate",
	"transfer-encoding",
	"upgrade",
}

// envHeaderKey maps a header name to its HTTP_* environment key.
func envHeaderKey(name string) string {
	return "HTTP_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

// EncodeEnv copies request headers into env as HTTP_* keys. Repeated headers
// are merged into one key: cookies are joined with "; ", everything else
// with ", ". Host, content-type and content-length have dedicated slots and
// are skipped.
func EncodeEnv(headers *protocol.Headers, env Env) {
	headers.Each(func(name, value string) {
		switch name {
		case "host", "content-type", "content-length":
			return
		}

		key := envHeaderKey(name)
		current, ok := env[key].(string)
		if !ok {
			env[key] = value
			return
		}

		sep := ", "
		if name == "cookie" {
			sep = "; "
		}
		env[key] = current + sep + value
	})
}

// DecodeEnv rebuilds request headers from the HTTP_* keys of env, along
// with content-type and content-length. HTTP_HOST is skipped because the
// authority travels separately. Keys are visited in sorted order.
func DecodeEnv(env Env) *protocol.Headers {
	headers := protocol.NewHeaders()

	keys := make([]string, 0, len(env))
	for key := range env {
		if strings.HasPrefix(key, "HTTP_") && key != KeyHTTPHost {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	for _, key := range keys {
		value, ok := env[key].(string)
		if !ok {
			continue
		}
		name := strings.ToLower(strings.ReplaceAll(key[len("HTTP_"):], "_", "-"))
		headers.Add(name, value)
	}

	if ct := env.String(KeyContentType); ct != "" {
		headers.Add("content-type", ct)
	}
	if cl := env.String(KeyContentLength); cl != "" {
		headers.Add("content-length", cl)
	}
	return headers
}

// EncodeFields converts headers into the application field convention: one
// value becomes a string, several become a []string.
func EncodeFields(headers *protocol.Headers) map[string]any {
	fields := make(map[string]any, headers.Len())
	headers.Each(func(name, value string) {
		switch current := fields[name].(type) {
		case nil:
			fields[name] = value
		case string:
			fields[name] = []string{current, value}
		case []string:
			fields[name] = append(current, value)
		}
	})
	return fields
}

// DecodeFields splits application response fields into wire headers and
// protocol metadata.
//
// Keys are lower-cased. Keys under MetaPrefix are returned in meta with their
// original values and never become headers. A string value containing
// newlines yields one header per line; a []string or []any value yields one
// header per element. Keys are visited in sorted order so the output is
// deterministic.
func DecodeFields(fields map[string]any) (*protocol.Headers, map[string]any) {
	headers := protocol.NewHeaders()
	meta := make(map[string]any)

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := fields[key]
		name := strings.ToLower(key)

		if strings.HasPrefix(name, MetaPrefix) {
			meta[name] = value
			continue
		}

		switch v := value.(type) {
		case nil:
		case string:
			for _, line := range strings.Split(v, "\n") {
				headers.Add(name, line)
			}
		case []string:
			for _, item := range v {
				headers.Add(name, item)
			}
		case []any:
			for _, item := range v {
				headers.Add(name, fmt.Sprint(item))
			}
		default:
			headers.Add(name, fmt.Sprint(v))
		}
	}

	return headers, meta
}
