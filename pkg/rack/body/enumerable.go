package body

import (
	"errors"
	"io"
	"iter"
	"sync"

	"mercator-hq/bridge/pkg/protocol"
)

// Enumerable adapts a finite chunk sequence to protocol.Body.
//
// In-memory sequences ([]string, [][]byte, string, []byte) are read by index
// and report Ready. Each producers are pulled lazily, one chunk per Read.
type Enumerable struct {
	mu     sync.Mutex
	source any
	chunks [][]byte
	each   Each
	index  int
	length int64
	closed bool

	next    func() ([]byte, bool)
	stop    func()
	eachErr error
}

// NewEnumerable wraps value, which must be a chunk slice, a string, a byte
// slice or an Each. The length of an in-memory sequence is the sum of its
// chunks; an Each producer has no known length.
func NewEnumerable(value any) (*Enumerable, error) {
	e := &Enumerable{source: value, length: -1}

	switch v := value.(type) {
	case []string:
		e.chunks = make([][]byte, 0, len(v))
		for _, s := range v {
			e.chunks = append(e.chunks, []byte(s))
		}
	case [][]byte:
		e.chunks = v
	case string:
		e.chunks = [][]byte{[]byte(v)}
	case []byte:
		e.chunks = [][]byte{v}
	case Each:
		e.each = v
		return e, nil
	default:
		return nil, ErrInvalidBody
	}

	var n int64
	for _, c := range e.chunks {
		n += int64(len(c))
	}
	e.length = n
	return e, nil
}

// Source returns the wrapped application value.
func (e *Enumerable) Source() any { return e.source }

// Read returns the next chunk, or io.EOF once the sequence is exhausted.
func (e *Enumerable) Read() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, protocol.ErrBodyClosed
	}

	if e.each == nil {
		for e.index < len(e.chunks) {
			chunk := e.chunks[e.index]
			e.index++
			if len(chunk) > 0 {
				return chunk, nil
			}
		}
		return nil, io.EOF
	}

	if e.next == nil {
		e.next, e.stop = iter.Pull(e.sequence())
	}
	chunk, ok := e.next()
	if !ok {
		if e.eachErr != nil && !errors.Is(e.eachErr, errStopped) {
			return nil, e.eachErr
		}
		return nil, io.EOF
	}
	return chunk, nil
}

func (e *Enumerable) sequence() iter.Seq[[]byte] {
	return func(yield func([]byte) bool) {
		e.eachErr = e.each.Each(func(chunk []byte) error {
			if len(chunk) == 0 {
				return nil
			}
			if !yield(chunk) {
				return errStopped
			}
			return nil
		})
	}
}

// Each calls fn for every remaining chunk, then closes the body with the
// iteration error, whether or not iteration succeeded.
func (e *Enumerable) Each(fn func(chunk []byte) error) (err error) {
	defer func() { e.Close(err) }()

	e.mu.Lock()
	direct := e.each != nil && e.next == nil && !e.closed
	e.mu.Unlock()

	if direct {
		return e.each.Each(func(chunk []byte) error {
			if len(chunk) == 0 {
				return nil
			}
			return fn(chunk)
		})
	}

	for {
		chunk, rerr := e.Read()
		if errors.Is(rerr, io.EOF) {
			return nil
		}
		if rerr != nil {
			return rerr
		}
		if err := fn(chunk); err != nil {
			return err
		}
	}
}

// Close stops any pending iteration and closes the wrapped value if it is
// closeable. Calling Close more than once has no effect.
func (e *Enumerable) Close(err error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.chunks = nil
	if e.stop != nil {
		e.stop()
	}
	e.mu.Unlock()

	Close(e.source, err)
}

// Empty reports whether no data remains.
func (e *Enumerable) Empty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed || e.length == 0 {
		return true
	}
	if e.each != nil {
		if em, ok := e.each.(interface{ Empty() bool }); ok {
			return em.Empty()
		}
		return false
	}
	for _, c := range e.chunks[e.index:] {
		if len(c) > 0 {
			return false
		}
	}
	return true
}

// Ready reports whether the chunks are already in memory.
func (e *Enumerable) Ready() bool {
	return e.each == nil
}

// Length returns the content length, or -1 when unknown.
func (e *Enumerable) Length() int64 { return e.length }
