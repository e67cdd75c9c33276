package body

import (
	"errors"
	"io"

	"mercator-hq/bridge/pkg/protocol"
)

var (
	// ErrInvalidBody is returned when a body value has no supported shape.
	ErrInvalidBody = errors.New("body must be nil, a chunk sequence, a stream callable or a protocol body")

	// ErrStreamClosed is returned by writes after the stream was closed.
	ErrStreamClosed = protocol.ErrStreamClosed

	// ErrAlreadyRead is returned by Call once the body has been read from.
	ErrAlreadyRead = errors.New("streaming body has already been read")

	// ErrAlreadyCalled is returned by Read once the body has been called.
	ErrAlreadyCalled = errors.New("streaming body has already been called")

	// ErrNotReading is returned by writes made outside of a read.
	ErrNotReading = errors.New("stream is not being read")

	// errStopped stops an Each iteration when the reader goes away.
	errStopped = errors.New("iteration stopped")
)

// Each is a finite chunk producer. Each must call yield for every chunk in
// order and stop when yield returns an error, returning that error.
type Each interface {
	Each(yield func(chunk []byte) error) error
}

// EachFunc adapts a function to Each.
type EachFunc func(yield func(chunk []byte) error) error

// Each calls f(yield).
func (f EachFunc) Each(yield func(chunk []byte) error) error {
	return f(yield)
}

// Caller writes a whole body into a stream.
type Caller interface {
	Call(stream protocol.Stream) error
}

// StreamFunc adapts a function to Caller.
type StreamFunc func(stream protocol.Stream) error

// Call calls f(stream).
func (f StreamFunc) Call(stream protocol.Stream) error {
	return f(stream)
}

// Pather is implemented by bodies backed by a file.
type Pather interface {
	Path() string
}

// Kind is the resolved shape of a response body value.
type Kind int

const (
	KindNone Kind = iota
	KindBody
	KindFile
	KindChunks
	KindEach
	KindStream
	KindInvalid
)

// String returns the kind name used in logs and metrics.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindBody:
		return "body"
	case KindFile:
		return "file"
	case KindChunks:
		return "chunks"
	case KindEach:
		return "each"
	case KindStream:
		return "stream"
	default:
		return "invalid"
	}
}

// Classify resolves the shape of v without touching it.
func Classify(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNone
	case protocol.Body:
		return KindBody
	case []string, [][]byte, string, []byte:
		return KindChunks
	case Each:
		return KindEach
	case Caller:
		return KindStream
	default:
		return KindInvalid
	}
}

// Close closes v when it is closeable. Protocol bodies are closed with err.
func Close(v any, err error) {
	switch c := v.(type) {
	case protocol.Body:
		c.Close(err)
	case io.Closer:
		_ = c.Close()
	case interface{ Close() }:
		c.Close()
	}
}

// IsEmpty reports whether v is known to produce no data. Values whose size
// cannot be known without running them are reported as non-empty.
func IsEmpty(v any) bool {
	switch b := v.(type) {
	case nil:
		return true
	case protocol.Body:
		return b.Empty()
	case string:
		return b == ""
	case []byte:
		return len(b) == 0
	case []string:
		for _, s := range b {
			if s != "" {
				return false
			}
		}
		return true
	case [][]byte:
		for _, c := range b {
			if len(c) > 0 {
				return false
			}
		}
		return true
	case interface{ Empty() bool }:
		return b.Empty()
	default:
		return false
	}
}
