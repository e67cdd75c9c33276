package rack

import (
	"fmt"
	"log/slog"
	"sync"

	"mercator-hq/bridge/pkg/protocol"
)

// FinishedFunc is a completion callback. It receives the environment, the
// response status and headers, and the error that ended the response, if
// any. Status is 0 and headers nil when the application produced no valid
// response.
type FinishedFunc func(env Env, status int, headers *protocol.Headers, err error) error

// Finished is the per-request registry of completion callbacks, stored in the
// environment under KeyResponseFinished.
//
// The registry:
//   - Accepts callbacks while the application runs
//   - Fires exactly once, when the response body is closed, or immediately
//     when the response has no body or the application failed
//   - Runs callbacks most recently registered first
//   - Logs a callback that fails or panics and keeps running the others
//
// The list is guarded by a mutex because transports may close bodies on
// another goroutine.
//
// Example usage:
//
//	_ = rack.OnFinished(env, func(env rack.Env, status int, _ *protocol.Headers, err error) error {
//		logger.Info("request finished", "status", status, "error", err)
//		return nil
//	})
type Finished struct {
	mu        sync.Mutex
	callbacks []FinishedFunc
	fired     bool
	logger    *slog.Logger
	observer  Observer
}

// NewFinished creates an empty registry.
func NewFinished(logger *slog.Logger, observer Observer) *Finished {
	if logger == nil {
		logger = slog.Default()
	}
	if observer == nil {
		observer = nopObserver{}
	}
	return &Finished{logger: logger, observer: observer}
}

// Add registers cb. It returns ErrFinished once the registry has fired.
func (f *Finished) Add(cb FinishedFunc) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fired {
		return ErrFinished
	}
	f.callbacks = append(f.callbacks, cb)
	return nil
}

// Len returns the number of registered callbacks.
func (f *Finished) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.callbacks)
}

// Pending reports whether callbacks are registered and not yet fired.
func (f *Finished) Pending() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.fired && len(f.callbacks) > 0
}

// Fired reports whether the registry has fired or been sealed.
func (f *Finished) Fired() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fired
}

// seal closes the registry without running anything; later Add calls fail.
func (f *Finished) seal() {
	f.mu.Lock()
	f.fired = true
	f.mu.Unlock()
}

// Fire runs every callback once, most recently registered first. It returns
// false if the registry had already fired.
func (f *Finished) Fire(env Env, status int, headers *protocol.Headers, err error) bool {
	f.mu.Lock()
	if f.fired {
		f.mu.Unlock()
		return false
	}
	f.fired = true
	callbacks := f.callbacks
	f.callbacks = nil
	f.mu.Unlock()

	failed := 0
	for i := len(callbacks) - 1; i >= 0; i-- {
		if cbErr := f.invoke(callbacks[i], env, status, headers, err); cbErr != nil {
			failed++
			f.logger.Error("completion callback failed",
				"index", i,
				"status", status,
				"error", cbErr,
			)
		}
	}

	f.observer.CallbacksFired(len(callbacks), failed)
	return true
}

func (f *Finished) invoke(cb FinishedFunc, env Env, status int, headers *protocol.Headers, err error) (cbErr error) {
	defer func() {
		if r := recover(); r != nil {
			cbErr = fmt.Errorf("completion callback panicked: %v", r)
		}
	}()
	return cb(env, status, headers, err)
}

// OnFinished registers cb in the environment's registry.
func OnFinished(env Env, cb FinishedFunc) error {
	f := env.Finished()
	if f == nil {
		return ErrFinished
	}
	return f.Add(cb)
}
