package server

import (
	"context"
	cryptotls "crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"mercator-hq/bridge/pkg/config"
	"mercator-hq/bridge/pkg/protocol"
	"mercator-hq/bridge/pkg/rack"
	bridgetls "mercator-hq/bridge/pkg/security/tls"
	"mercator-hq/bridge/pkg/server/middleware"
	"mercator-hq/bridge/pkg/telemetry/health"
	"mercator-hq/bridge/pkg/telemetry/metrics"
	"mercator-hq/bridge/pkg/telemetry/tracing"
	fasthttpadapter "mercator-hq/bridge/pkg/transport/fasthttp"
	"mercator-hq/bridge/pkg/transport/nethttp"
)

// fastReadBufferSize is the per-connection read buffer of the fasthttp
// engine. It also bounds the request head.
const fastReadBufferSize = 64 * 1024

// ErrServerRunning is returned by Start when the server is already running.
var ErrServerRunning = errors.New("server is already running")

// Server serves an application through the environment adapter on the
// configured engine.
type Server struct {
	config    *config.Config
	logger    *slog.Logger
	collector *metrics.Collector
	tracer    *tracing.Tracer
	checker   *health.Checker
	info      health.BuildInfo

	handler  protocol.Handler
	ops      *http.ServeMux
	opsPaths map[string]bool

	tlsConfig *cryptotls.Config
	certs     *bridgetls.CertificateReloader

	mu           sync.RWMutex
	running      bool
	listener     net.Listener
	httpServer   *http.Server
	fastServer   *fasthttp.Server
	shutdownOnce sync.Once
	shutdownChan chan struct{}
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server and adapter logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCollector records request and adapter metrics and serves them on the
// configured metrics path.
func WithCollector(c *metrics.Collector) Option {
	return func(s *Server) { s.collector = c }
}

// WithTracer starts a span for every application request.
func WithTracer(t *tracing.Tracer) Option {
	return func(s *Server) { s.tracer = t }
}

// WithBuildInfo sets the information served on /version.
func WithBuildInfo(info health.BuildInfo) Option {
	return func(s *Server) { s.info = info }
}

// WithListener serves on l instead of listening on the configured address.
func WithListener(l net.Listener) Option {
	return func(s *Server) { s.listener = l }
}

// New creates a server for app.
func New(cfg *config.Config, app rack.App, opts ...Option) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("server: nil config")
	}

	s := &Server{
		config:       cfg,
		logger:       slog.Default(),
		shutdownChan: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	rackOpts := []rack.Option{
		rack.WithLogger(s.logger),
		rack.WithErrorSink(cfg.Adapter.ErrorWriter()),
	}
	if s.collector != nil {
		rackOpts = append(rackOpts, rack.WithObserver(s.collector))
	}
	adapter, err := rack.New(app, rackOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create adapter: %w", err)
	}

	s.handler = adapter
	if cfg.Adapter.Rewindable {
		s.handler = rack.NewRewindable(adapter)
	}

	if tc := cfg.Server.TLS; tc.Enabled {
		s.certs, err = bridgetls.NewCertificateReloader(tc.CertFile, tc.KeyFile, tc.ReloadSchedule, s.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to load TLS certificate: %w", err)
		}
		s.tlsConfig, err = bridgetls.NewConfig(tc, s.certs)
		if err != nil {
			return nil, fmt.Errorf("failed to configure TLS: %w", err)
		}
	}

	s.setupOps()
	return s, nil
}

// setupOps registers the probe, version and metrics endpoints. They bypass
// the application and its middleware.
func (s *Server) setupOps() {
	s.ops = http.NewServeMux()
	s.opsPaths = make(map[string]bool)

	if hc := s.config.Telemetry.Health; hc.Enabled {
		s.checker = health.New(hc.CheckTimeout)
		s.checker.Register("listener", func(context.Context) error {
			if !s.IsRunning() {
				return errors.New("server is not running")
			}
			return nil
		})
		if s.certs != nil {
			s.checker.Register("tls_certificate", func(context.Context) error {
				return bridgetls.ValidateCertificate(s.certs.Certificate())
			})
		}

		paths := health.Paths{
			Liveness:  hc.LivenessPath,
			Readiness: hc.ReadinessPath,
			Version:   "/version",
		}
		health.Register(s.ops, s.checker, paths, s.info)
		s.opsPaths[paths.Liveness] = true
		s.opsPaths[paths.Readiness] = true
		s.opsPaths[paths.Version] = true
	}

	if mc := s.config.Telemetry.Metrics; mc.Enabled && s.collector != nil {
		s.ops.Handle(mc.Path, s.collector.Handler())
		s.opsPaths[mc.Path] = true
	}
}

// Checker returns the health checker, or nil when probes are disabled.
func (s *Server) Checker() *health.Checker {
	return s.checker
}

// Handler returns the net/http handler: the ops endpoints plus the
// application wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	var recorder middleware.RequestRecorder
	if s.collector != nil {
		recorder = s.collector
	}

	app := middleware.Chain(nethttp.NewHandler(s.handler, s.logger),
		middleware.RequestID,
		middleware.Tracing(s.tracer),
		middleware.Logging(s.logger, recorder),
		middleware.Recovery(s.logger),
	)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.opsPaths[r.URL.Path] {
			s.ops.ServeHTTP(w, r)
			return
		}
		app.ServeHTTP(w, r)
	})
}

// FastHandler returns the fasthttp handler equivalent of Handler.
func (s *Server) FastHandler() fasthttp.RequestHandler {
	var recorder middleware.RequestRecorder
	if s.collector != nil {
		recorder = s.collector
	}

	ops := fasthttpadaptor.NewFastHTTPHandler(s.ops)
	app := middleware.FastHTTP(fasthttpadapter.NewRequestHandler(s.handler, s.logger), s.logger, s.tracer, recorder)

	return func(ctx *fasthttp.RequestCtx) {
		if s.opsPaths[string(ctx.Path())] {
			ops(ctx)
			return
		}
		app(ctx)
	}
}

// Start serves until ctx is cancelled, Stop is called or the server fails.
// It then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrServerRunning
	}

	ln := s.listener
	if ln == nil {
		var err error
		ln, err = net.Listen("tcp", s.config.Server.ListenAddress)
		if err != nil {
			s.mu.Unlock()
			return fmt.Errorf("failed to listen on %s: %w", s.config.Server.ListenAddress, err)
		}
		s.listener = ln
	}
	serve := s.newEngine()
	s.running = true
	s.mu.Unlock()

	if s.tlsConfig != nil {
		ln = cryptotls.NewListener(ln, s.tlsConfig)

		certCtx, stopCerts := context.WithCancel(ctx)
		defer stopCerts()
		go s.certs.Run(certCtx)
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting bridge server",
			"address", ln.Addr().String(),
			"engine", s.config.Server.Engine,
			"tls", s.tlsConfig != nil,
			"rewindable", s.config.Adapter.Rewindable,
		)
		if err := serve(ln); err != nil {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case <-s.shutdownChan:
		s.logger.Info("shutdown requested")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		return err
	}
}

// newEngine creates the configured engine and returns its serve loop.
// The caller holds s.mu.
func (s *Server) newEngine() func(net.Listener) error {
	sc := s.config.Server

	if sc.Engine == config.EngineFastHTTP {
		s.fastServer = &fasthttp.Server{
			Handler:                      s.FastHandler(),
			Name:                         "bridge",
			ReadBufferSize:               fastReadBufferSize,
			MaxRequestBodySize:           sc.MaxRequestBodySize,
			ReadTimeout:                  sc.ReadTimeout,
			WriteTimeout:                 sc.WriteTimeout,
			IdleTimeout:                  sc.IdleTimeout,
			NoDefaultServerHeader:        true,
			NoDefaultContentType:         true,
			DisablePreParseMultipartForm: true,
			Logger:                       fastLogger{s.logger},
		}
		return s.fastServer.Serve
	}

	s.httpServer = &http.Server{
		Handler:        s.Handler(),
		ReadTimeout:    sc.ReadTimeout,
		WriteTimeout:   sc.WriteTimeout,
		IdleTimeout:    sc.IdleTimeout,
		MaxHeaderBytes: sc.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}
	srv := s.httpServer
	return func(ln net.Listener) error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// Stop asks a running Start to shut down.
func (s *Server) Stop() {
	select {
	case <-s.shutdownChan:
	default:
		close(s.shutdownChan)
	}
}

// Shutdown gracefully shuts down the server. Readiness fails first, then
// in-flight requests get up to the configured shutdown timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.RLock()
		running := s.running
		httpServer, fastServer := s.httpServer, s.fastServer
		s.mu.RUnlock()
		if !running {
			return
		}

		timeout := s.config.Server.ShutdownTimeout
		s.logger.Info("initiating graceful shutdown", "timeout", timeout.String())
		if s.checker != nil {
			s.checker.SetDraining(true)
		}

		shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		var err error
		if fastServer != nil {
			err = shutdownFast(shutdownCtx, fastServer)
		} else {
			err = httpServer.Shutdown(shutdownCtx)
		}
		if err != nil {
			s.logger.Error("error during server shutdown", "error", err)
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		s.mu.Lock()
		s.running = false
		s.mu.Unlock()

		s.logger.Info("bridge server stopped")
	})

	return shutdownErr
}

// shutdownFast waits for fasthttp to drain, giving up when ctx expires.
func shutdownFast(ctx context.Context, srv *fasthttp.Server) error {
	done := make(chan error, 1)
	go func() { done <- srv.Shutdown() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addr returns the listening address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// fastLogger routes fasthttp's internal logging to slog.
type fastLogger struct {
	logger *slog.Logger
}

func (l fastLogger) Printf(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf(format, args...), "engine", config.EngineFastHTTP)
}
