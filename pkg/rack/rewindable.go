package rack

import (
	"net/http"
	"regexp"

	"mercator-hq/bridge/pkg/protocol"
)

// BufferedMediaTypes matches content types whose bodies applications
// typically parse more than once.
var BufferedMediaTypes = regexp.MustCompile(`application/x-www-form-urlencoded|multipart/form-data|multipart/related|multipart/mixed`)

// Delegate is the component wrapped by Rewindable, usually an *Adapter.
type Delegate interface {
	protocol.Handler
	MakeEnvironment(req *protocol.Request) (Env, error)
}

// Rewindable makes request bodies replayable when the content type requires
// it, and leaves every other body single-pass so large uploads are not
// buffered needlessly.
type Rewindable struct {
	delegate Delegate
}

// NewRewindable wraps delegate.
func NewRewindable(delegate Delegate) *Rewindable {
	return &Rewindable{delegate: delegate}
}

// NeedsRewind reports whether req's body must be replayable: a POST without a
// content type, or a form or multipart content type.
func (r *Rewindable) NeedsRewind(req *protocol.Request) bool {
	contentType := req.Headers.Get("content-type")
	if req.Method == http.MethodPost && !req.Headers.Has("content-type") {
		return true
	}
	return BufferedMediaTypes.MatchString(contentType)
}

// MakeEnvironment delegates unchanged.
func (r *Rewindable) MakeEnvironment(req *protocol.Request) (Env, error) {
	return r.delegate.MakeEnvironment(req)
}

// Call replaces the body with a protocol.Rewindable when needed and calls the
// delegate.
func (r *Rewindable) Call(req *protocol.Request) *protocol.Response {
	if req.Body != nil && r.NeedsRewind(req) {
		if _, ok := req.Body.(protocol.Rewinder); !ok {
			req.Body = protocol.NewRewindable(req.Body)
		}
	}
	return r.delegate.Call(req)
}
