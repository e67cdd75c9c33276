package body

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"sync"

	"mercator-hq/bridge/pkg/protocol"
)

// Streaming adapts a push-style Caller to protocol.Body.
type Streaming struct {
	mu     sync.Mutex
	source Caller
	input  protocol.Body
	out    *output
	next   func() ([]byte, bool)
	stop   func()
	result error
	called bool
	closed bool
}

// NewStreaming wraps source. input, which may be nil, is exposed to the
// callable through the stream's Read method.
func NewStreaming(source Caller, input protocol.Body) *Streaming {
	return &Streaming{source: source, input: input}
}

// Source returns the wrapped callable.
func (s *Streaming) Source() Caller { return s.source }

// Read resumes the callable until it writes the next chunk. It returns io.EOF
// once the callable returns, or the callable's error if it failed.
func (s *Streaming) Read() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, protocol.ErrBodyClosed
	}
	if s.called {
		return nil, ErrAlreadyCalled
	}

	if s.next == nil {
		s.out = &output{input: protocol.NewBodyReader(s.input)}
		s.next, s.stop = iter.Pull(s.sequence())
	}

	chunk, ok := s.next()
	if ok {
		return chunk, nil
	}
	if s.result != nil {
		return nil, s.result
	}
	return nil, io.EOF
}

func (s *Streaming) sequence() iter.Seq[[]byte] {
	return func(yield func([]byte) bool) {
		defer func() {
			if r := recover(); r != nil {
				s.result = fmt.Errorf("streaming body panicked: %v", r)
			}
			s.out.yield = nil
		}()

		s.out.yield = yield
		err := s.source.Call(s.out)
		if err != nil && !errors.Is(err, s.out.closeErr) {
			s.result = err
		}
	}
}

// Stream always reports true.
func (s *Streaming) Stream() bool { return true }

// Call runs the callable directly against stream, bypassing the chunk bridge,
// then closes the body with the callable's error. A panicking callable is
// recovered and reported as that error. Call fails if the body has already
// been read.
func (s *Streaming) Call(stream protocol.Stream) (err error) {
	s.mu.Lock()
	if s.next != nil {
		s.mu.Unlock()
		return ErrAlreadyRead
	}
	if s.closed || s.called {
		s.mu.Unlock()
		return protocol.ErrBodyClosed
	}
	s.called = true
	s.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("streaming body panicked: %v", r)
		}
		s.Close(err)
	}()
	return s.source.Call(stream)
}

// Close ends the stream. With a nil error the callable sees a clean end of
// stream; otherwise its pending Write returns err. A finished callable is not
// affected. The wrapped source is closed when it is closeable.
func (s *Streaming) Close(err error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.stop != nil {
		if err != nil {
			s.out.closeErr = err
		} else {
			s.out.closeErr = ErrStreamClosed
		}
		s.out.closed = true
		s.stop()
	}
	s.mu.Unlock()

	Close(s.source, err)
}

// Empty reports false: a stream's size is unknown until it runs.
func (s *Streaming) Empty() bool { return false }

// Ready reports false.
func (s *Streaming) Ready() bool { return false }

// Length returns -1.
func (s *Streaming) Length() int64 { return -1 }

// output is the protocol.Stream handed to the callable during Read.
type output struct {
	input    *protocol.BodyReader
	yield    func([]byte) bool
	closed   bool
	closeErr error
}

func (o *output) Read(p []byte) (int, error) {
	return o.input.Read(p)
}

// Write hands one chunk to the reader and suspends until the next Read.
func (o *output) Write(p []byte) (int, error) {
	if o.closed {
		return 0, o.closeErr
	}
	if o.yield == nil {
		return 0, ErrNotReading
	}
	if len(p) == 0 {
		return 0, nil
	}

	chunk := make([]byte, len(p))
	copy(chunk, p)
	if !o.yield(chunk) {
		if o.closeErr == nil {
			o.closeErr = ErrStreamClosed
		}
		o.closed = true
		return 0, o.closeErr
	}
	return len(p), nil
}

// Close ends the body from the writer side; the reader sees end of stream
// once the callable returns.
func (o *output) Close() error {
	if !o.closed {
		o.closed = true
		o.closeErr = ErrStreamClosed
	}
	return nil
}

func (o *output) Flush() error {
	if o.closed {
		return o.closeErr
	}
	return nil
}
