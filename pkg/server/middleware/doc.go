// Package middleware provides the HTTP middleware wrapped around the bridge
// adapter.
//
// The net/http chain is assembled with Chain, outermost first:
//
//	handler = middleware.Chain(handler,
//	    middleware.RequestID,
//	    middleware.Tracing(tracer),
//	    middleware.Logging(logger, collector),
//	    middleware.Recovery(logger),
//	)
//
// Recovery sits innermost so the logging and tracing layers observe the 500
// it writes. Response writers are wrapped with an Unwrap method, which
// keeps http.ResponseController flushing and hijacking working for
// streamed and upgraded responses.
//
// FastHTTP applies the same concerns to a fasthttp.RequestHandler in a
// single wrapper.
package middleware
