// Package health serves liveness and readiness probes for the bridge
// server.
//
// Liveness answers 200 while the process runs. Readiness runs the
// registered checks concurrently, each bounded by a timeout, and answers 503
// when any fails. Once the server starts draining for shutdown, readiness
// answers 503 with status "draining" without running the checks.
//
//	checker := health.New(5 * time.Second)
//	checker.Register("listener", func(ctx context.Context) error {
//	    if !srv.IsRunning() {
//	        return errors.New("server is not running")
//	    }
//	    return nil
//	})
//	health.Register(mux, checker, health.Paths{
//	    Liveness:  "/health",
//	    Readiness: "/ready",
//	    Version:   "/version",
//	}, health.BuildInfo{Version: version})
package health
