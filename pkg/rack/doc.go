// Package rack adapts applications written against the environment calling
// convention to the streaming engine model of package protocol.
//
// An application receives an Env (a flat map of CGI-style keys plus
// side-channel keys such as KeyInput and KeyResponseFinished) and returns a
// Tuple of (status, headers, body). The Adapter translates in both
// directions:
//
//	Request -> Rewindable -> MakeEnvironment -> App.Call -> Wrap -> Response
//
// # Environment
//
// MakeEnvironment produces REQUEST_METHOD, SCRIPT_NAME, PATH_INFO,
// QUERY_STRING, SERVER_NAME, SERVER_PORT, SERVER_PROTOCOL, the HTTP_* header
// keys, CONTENT_TYPE and CONTENT_LENGTH, and the side-channel keys:
//
//   - rack.input: an *Input over the request body (absent for empty bodies)
//   - rack.errors: the error sink
//   - rack.logger: the request *slog.Logger
//   - rack.url_scheme and rack.protocol
//   - rack.response_finished: the *Finished completion registry
//   - protocol.http.request: the original *protocol.Request
//
// # Responses
//
// Wrap validates the tuple (status must be an integer, headers must not be
// nil), decodes multi-value headers, strips content-length and hop headers,
// drops bodies of 204/205/304 responses, selects a body adapter (see package
// body) and truncates HEAD responses.
//
// # Failures
//
// Adapter.Call never lets an application error or panic escape. The error is
// logged, any partial body is closed, completion callbacks fire with the
// error, and a 500 response with a "Name: message" body is returned:
//
//	ArgumentError: Status must be an integer!
//
// # Completion Callbacks
//
// Applications register callbacks with OnFinished. They fire exactly once,
// when the response body is closed by the transport, in reverse registration
// order. A failing callback is logged and does not affect the others.
//
// Example:
//
//	app := rack.AppFunc(func(env rack.Env) (rack.Tuple, error) {
//		_ = rack.OnFinished(env, func(env rack.Env, status int, h *protocol.Headers, err error) error {
//			env.Logger().Info("response finished", "status", status)
//			return nil
//		})
//		return rack.Tuple{Status: 200, Headers: map[string]any{"content-type": "text/plain"}, Body: []string{"Hello"}}, nil
//	})
//
//	adapter, _ := rack.New(app, rack.WithLogger(logger))
//	handler := rack.NewRewindable(adapter)
package rack
