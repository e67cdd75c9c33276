package rack

import (
	"net"
	"strconv"
	"strings"

	"mercator-hq/bridge/pkg/protocol"
)

// MakeEnvironment builds the application environment for req.
//
// The request path is split on the first "?" into PATH_INFO and QUERY_STRING,
// and the authority on its last ":" into SERVER_NAME and SERVER_PORT (the
// port key is omitted when there is none). An empty request body is closed
// straight away and left out of the environment. Content-type is moved out of
// the request headers into CONTENT_TYPE; every other header is copied as an
// HTTP_* key. The connection authority, when present, always wins over a host
// header. Without an authority, more than one host header is rejected.
func (a *Adapter) MakeEnvironment(req *protocol.Request) (Env, error) {
	path, query, _ := strings.Cut(req.Path, "?")

	env := Env{
		KeyRequest:          req,
		KeyErrors:           a.errors,
		KeyLogger:           a.logger,
		KeyResponseFinished: NewFinished(a.logger, a.observer),

		KeyRequestMethod:  req.Method,
		KeyScriptName:     "",
		KeyPathInfo:       path,
		KeyRequestPath:    path,
		KeyRequestURI:     req.Path,
		KeyQueryString:    query,
		KeyServerProtocol: req.Version,
		KeyURLScheme:      req.Scheme,
	}

	if len(req.Protocol) > 0 {
		env[KeyProtocol] = req.Protocol
	}

	name, port, hasPort := splitAuthority(req.Authority)
	env[KeyServerName] = name
	if hasPort {
		env[KeyServerPort] = port
	}

	if b := req.Body; b != nil {
		if b.Empty() {
			b.Close(nil)
		} else {
			env[KeyInput] = NewInput(b)
		}
	}

	if err := unwrapRequest(req, env); err != nil {
		return nil, err
	}
	return env, nil
}

func unwrapRequest(req *protocol.Request, env Env) error {
	if values := req.Headers.Delete("content-type"); len(values) > 0 {
		env[KeyContentType] = values[0]
	}

	if req.Body != nil && req.Body.Length() >= 0 {
		env[KeyContentLength] = strconv.FormatInt(req.Body.Length(), 10)
	} else if cl := req.Headers.Get("content-length"); cl != "" {
		env[KeyContentLength] = cl
	}

	EncodeEnv(req.Headers, env)

	if req.Authority != "" {
		env[KeyHTTPHost] = req.Authority
	} else {
		hosts := req.Headers.Values("host")
		switch {
		case len(hosts) > 1:
			return &ArgumentError{Message: "Multiple host headers!"}
		case len(hosts) == 1:
			env[KeyHTTPHost] = hosts[0]
		}
	}

	if req.RemoteAddr != "" {
		host, _, err := net.SplitHostPort(req.RemoteAddr)
		if err != nil {
			host = req.RemoteAddr
		}
		if net.ParseIP(host) != nil {
			env[KeyRemoteAddr] = host
		}
	}
	return nil
}

// splitAuthority splits host[:port] on the last colon, leaving bracketed IPv6
// literals intact.
func splitAuthority(authority string) (name, port string, ok bool) {
	if strings.HasSuffix(authority, "]") {
		return authority, "", false
	}
	i := strings.LastIndexByte(authority, ':')
	if i < 0 {
		return authority, "", false
	}
	return authority[:i], authority[i+1:], true
}
