package rack

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"runtime/debug"

	"mercator-hq/bridge/pkg/protocol"
	"mercator-hq/bridge/pkg/rack/body"
)

// Adapter serves an App as a protocol.Handler.
//
// For every request the adapter:
//   - Builds an Env from the engine request (see MakeEnvironment)
//   - Calls the application
//   - Assembles the returned Tuple into a protocol.Response (see Wrap)
//
// Errors and panics raised by the application, including panics from its
// body values during assembly, never escape Call. They are logged,
// completion callbacks fire with the error and a 500 response naming the
// error is returned.
//
// Example usage:
//
//	adapter, err := rack.New(app, rack.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	handler := nethttp.NewHandler(rack.NewRewindable(adapter), logger)
type Adapter struct {
	app      App
	logger   *slog.Logger
	errors   io.Writer
	observer Observer
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger sets the logger exposed as KeyLogger and used by the adapter.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Adapter) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithErrorSink sets the writer exposed as KeyErrors.
func WithErrorSink(w io.Writer) Option {
	return func(a *Adapter) {
		if w != nil {
			a.errors = w
		}
	}
}

// WithObserver sets the event observer.
func WithObserver(o Observer) Option {
	return func(a *Adapter) {
		if o != nil {
			a.observer = o
		}
	}
}

// New creates an adapter for app.
func New(app App, opts ...Option) (*Adapter, error) {
	if app == nil {
		return nil, ErrNilApp
	}
	a := &Adapter{
		app:      app,
		logger:   slog.Default(),
		errors:   os.Stderr,
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Logger returns the adapter logger.
func (a *Adapter) Logger() *slog.Logger { return a.logger }

// Call builds the environment for req, invokes the application and returns
// the engine response. It always returns a response.
func (a *Adapter) Call(req *protocol.Request) *protocol.Response {
	env, err := a.MakeEnvironment(req)
	if err != nil {
		return a.failure(req, nil, nil, err)
	}

	tuple, err := a.invoke(env)
	if err != nil {
		return a.failure(req, env, tuple.Body, err)
	}

	resp, err := a.wrap(env, tuple, req)
	if err != nil {
		return a.failure(req, env, tuple.Body, err)
	}

	a.observer.ResponseAssembled(resp.Status)
	return resp
}

func (a *Adapter) invoke(env Env) (tuple Tuple, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return a.app.Call(env)
}

func (a *Adapter) wrap(env Env, tuple Tuple, req *protocol.Request) (resp *protocol.Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return a.Wrap(env, tuple, req)
}

// failure closes any partial body, fires completion callbacks with err and
// returns a 500 response naming the error.
func (a *Adapter) failure(req *protocol.Request, env Env, partial any, err error) *protocol.Response {
	attrs := []any{
		"method", req.Method,
		"path", req.Path,
		"error", err,
	}
	var panicErr *PanicError
	if errors.As(err, &panicErr) {
		attrs = append(attrs, "stack", string(panicErr.Stack))
	}
	a.logger.ErrorContext(req.Context(), "application failed", attrs...)

	a.closePartial(req, partial, err)

	if env != nil {
		if f := env.Finished(); f != nil {
			f.Fire(env, 0, nil, err)
		}
	}

	a.observer.ApplicationFailed(ErrorName(err))
	a.observer.ResponseAssembled(http.StatusInternalServerError)
	return protocol.NewTextResponse(http.StatusInternalServerError, FormatError(err))
}

func (a *Adapter) closePartial(req *protocol.Request, partial any, err error) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.ErrorContext(req.Context(), "closing response body panicked", "panic", r)
		}
	}()
	body.Close(partial, err)
}
