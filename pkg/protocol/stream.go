package protocol

import (
	"errors"
	"io"
)

var (
	// ErrNotStreamer is returned when Call is used on a body that cannot stream.
	ErrNotStreamer = errors.New("body does not support streaming")

	// ErrStreamClosed is returned by writes to a closed stream.
	ErrStreamClosed = errors.New("stream is closed")
)

// IOStream is a Stream that reads from a request Body and writes to an
// io.Writer. Transports use it for the direct streaming path.
type IOStream struct {
	input  *BodyReader
	output io.Writer
	flush  func() error
	closed bool
}

// NewIOStream creates a stream over input and output. flush may be nil.
func NewIOStream(input Body, output io.Writer, flush func() error) *IOStream {
	return &IOStream{input: NewBodyReader(input), output: output, flush: flush}
}

// Read reads request body bytes.
func (s *IOStream) Read(p []byte) (int, error) { return s.input.Read(p) }

// Write writes response body bytes.
func (s *IOStream) Write(p []byte) (int, error) {
	if s.closed {
		return 0, ErrStreamClosed
	}
	return s.output.Write(p)
}

// Flush flushes the output when the transport supports it.
func (s *IOStream) Flush() error {
	if s.flush == nil {
		return nil
	}
	return s.flush()
}

// Close flushes pending output and rejects further writes.
func (s *IOStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.Flush()
}

// Closed reports whether Close has been called.
func (s *IOStream) Closed() bool { return s.closed }
