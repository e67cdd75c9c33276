package rack

import (
	"errors"
	"io"
	"sync"

	"mercator-hq/bridge/pkg/protocol"
)

// Input exposes a request body to applications under KeyInput.
//
// Input is not always rewindable: bodies are only buffered when the
// Rewindable middleware decided they need to be (see Rewindable). Once the
// body is exhausted it is closed automatically, so applications that never
// call Close do not leak the underlying stream.
type Input struct {
	mu       sync.Mutex
	body     protocol.Body
	pending  []byte
	finished bool
	closed   bool
}

// NewInput wraps b. A nil body behaves as an empty, finished input.
func NewInput(b protocol.Body) *Input {
	return &Input{body: b, finished: b == nil}
}

// Body returns the wrapped body.
func (in *Input) Body() protocol.Body { return in.body }

// Read implements io.Reader.
func (in *Input) Read(p []byte) (int, error) {
	in.mu.Lock()
	defer in.mu.Unlock()

	if len(p) == 0 {
		return 0, nil
	}
	for len(in.pending) == 0 {
		chunk, err := in.readNext()
		if err != nil {
			return 0, err
		}
		in.pending = chunk
	}
	n := copy(p, in.pending)
	in.pending = in.pending[n:]
	return n, nil
}

// ReadLength reads with IO#read semantics. A negative length reads until the
// end and returns an empty, non-nil slice at end of input. A positive length
// reads at most length bytes and returns io.EOF once nothing is left. A zero
// length returns an empty slice.
func (in *Input) ReadLength(length int) ([]byte, error) {
	in.mu.Lock()
	defer in.mu.Unlock()

	if length == 0 {
		return []byte{}, nil
	}

	buf := append([]byte{}, in.pending...)
	in.pending = nil

	for length < 0 || len(buf) < length {
		chunk, err := in.readNext()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return buf, err
		}
		buf = append(buf, chunk...)
	}

	if length < 0 {
		return buf, nil
	}
	if len(buf) > length {
		in.pending = buf[length:]
		buf = buf[:length]
	}
	if len(buf) == 0 {
		return nil, io.EOF
	}
	return buf, nil
}

// ReadPartial returns at most length bytes from the next available chunk,
// avoiding a read from the body when data is already pending. A
// non-positive length returns the whole chunk.
func (in *Input) ReadPartial(length int) ([]byte, error) {
	in.mu.Lock()
	defer in.mu.Unlock()

	buf := in.pending
	in.pending = nil
	if len(buf) == 0 {
		chunk, err := in.readNext()
		if err != nil {
			return nil, err
		}
		buf = chunk
	}
	if length > 0 && len(buf) > length {
		in.pending = buf[length:]
		buf = buf[:length]
	}
	return buf, nil
}

// Gets returns the next chunk of the body, or io.EOF when there is no more
// data.
func (in *Input) Gets() ([]byte, error) {
	in.mu.Lock()
	defer in.mu.Unlock()

	if len(in.pending) > 0 {
		chunk := in.pending
		in.pending = nil
		return chunk, nil
	}
	return in.readNext()
}

// Each calls fn for every remaining chunk.
func (in *Input) Each(fn func(chunk []byte) error) error {
	for {
		chunk, err := in.Gets()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(chunk); err != nil {
			return err
		}
	}
}

// Rewind restarts the input from the beginning. It returns ErrNotRewindable
// when the body cannot replay its data.
func (in *Input) Rewind() error {
	in.mu.Lock()
	defer in.mu.Unlock()

	r, ok := in.body.(protocol.Rewinder)
	if !ok {
		return ErrNotRewindable
	}
	if err := r.Rewind(); err != nil {
		return err
	}
	in.pending = nil
	in.finished = false
	in.closed = false
	return nil
}

// Close closes the body. It is safe to call more than once.
func (in *Input) Close() error {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.close(nil)
	return nil
}

// Closed reports whether the input has been closed.
func (in *Input) Closed() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.closed
}

func (in *Input) close(err error) {
	if in.closed {
		return
	}
	in.closed = true
	in.pending = nil
	if in.body != nil {
		in.body.Close(err)
	}
}

func (in *Input) readNext() ([]byte, error) {
	if in.finished || in.closed {
		return nil, io.EOF
	}

	chunk, err := in.body.Read()
	if errors.Is(err, io.EOF) {
		in.finished = true
		in.close(nil)
		return nil, io.EOF
	}
	if err != nil {
		in.close(err)
		return nil, err
	}
	return chunk, nil
}
