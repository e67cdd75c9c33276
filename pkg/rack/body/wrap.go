package body

import (
	"net/http"

	"mercator-hq/bridge/pkg/protocol"
)

// Wrap resolves an application body value into an engine body.
//
// input is the request body, made available to streaming callables. A status of
// exactly 200 with a value exposing Path() is served from that file and the
// original value is closed; if the file cannot be opened the value is wrapped
// as usual. Partial responses (206 and others) are never substituted.
func Wrap(status int, value any, input protocol.Body) (protocol.Body, Kind, error) {
	if b, ok := value.(protocol.Body); ok {
		return b, KindBody, nil
	}

	if p, ok := value.(Pather); ok && status == http.StatusOK {
		if f, err := protocol.OpenFile(p.Path()); err == nil {
			Close(value, nil)
			return f, KindFile, nil
		}
	}

	switch kind := Classify(value); kind {
	case KindNone:
		return nil, kind, nil
	case KindChunks, KindEach:
		e, err := NewEnumerable(value)
		if err != nil {
			return nil, KindInvalid, err
		}
		return e, kind, nil
	case KindStream:
		return NewStreaming(value.(Caller), input), kind, nil
	default:
		return nil, KindInvalid, ErrInvalidBody
	}
}
