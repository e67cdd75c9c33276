package health

import (
	"encoding/json"
	"net/http"
	"runtime"
)

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

// LivenessHandler answers the liveness probe.
//
// Example response:
//
//	{"status": "ok", "timestamp": "2026-03-02T10:30:00Z"}
func (c *Checker) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeReport(w, r, http.StatusOK, c.Liveness())
	}
}

// ReadinessHandler answers the readiness probe: 200 when ready, 503 when
// degraded or draining.
//
// Example response (degraded):
//
//	{
//	    "status": "degraded",
//	    "checks": {
//	        "config": {"status": "ok", "duration_ns": 1200},
//	        "listener": {"status": "unhealthy", "message": "server is not running"}
//	    },
//	    "timestamp": "2026-03-02T10:30:00Z"
//	}
func (c *Checker) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := c.Readiness(r.Context())
		code := http.StatusOK
		if !report.Ready() {
			code = http.StatusServiceUnavailable
		}
		writeReport(w, r, code, report)
	}
}

// VersionHandler serves build information. GoVersion is filled in from the
// runtime.
func VersionHandler(info BuildInfo) http.HandlerFunc {
	info.GoVersion = runtime.Version()
	return func(w http.ResponseWriter, r *http.Request) {
		writeReport(w, r, http.StatusOK, info)
	}
}

// Paths names the endpoints registered by Register. Empty paths are
// skipped.
type Paths struct {
	Liveness  string
	Readiness string
	Version   string
}

// Register adds the probe endpoints to mux.
//
//	health.Register(mux, checker, health.Paths{
//	    Liveness:  "/health",
//	    Readiness: "/ready",
//	}, health.BuildInfo{Version: version})
func Register(mux *http.ServeMux, c *Checker, paths Paths, info BuildInfo) {
	if paths.Liveness != "" {
		mux.Handle(paths.Liveness, c.LivenessHandler())
	}
	if paths.Readiness != "" {
		mux.Handle(paths.Readiness, c.ReadinessHandler())
	}
	if paths.Version != "" {
		mux.Handle(paths.Version, VersionHandler(info))
	}
}

func writeReport(w http.ResponseWriter, r *http.Request, code int, v any) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	if r.Method != http.MethodHead {
		_ = json.NewEncoder(w).Encode(v)
	}
}
