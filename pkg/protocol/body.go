package protocol

import (
	"errors"
	"io"
	"sync"
)

// ErrBodyClosed is returned when reading from a body that has been closed.
var ErrBodyClosed = errors.New("body is closed")

// Body is a pull-style producer of byte chunks.
//
// Read returns the next chunk, or io.EOF once the body is exhausted. Close
// releases the underlying resources; the error describes why the body is being
// closed (nil for a normal end of stream) and may be propagated to producers.
// Close must be idempotent.
type Body interface {
	// Read returns the next chunk or io.EOF.
	Read() ([]byte, error)

	// Close releases the body. It is safe to call more than once.
	Close(err error)

	// Empty reports whether the body is known to produce no more data.
	Empty() bool

	// Ready reports whether the data is already materialised, so that a
	// transport may read it without blocking.
	Ready() bool

	// Length is the total length in bytes, or -1 when unknown.
	Length() int64
}

// Stream is the bidirectional byte stream handed to streaming bodies: reads
// consume the request body and writes produce the response body.
type Stream interface {
	io.Reader
	io.Writer

	// Flush pushes written data towards the client.
	Flush() error

	// Close ends the response body. Later writes fail.
	Close() error
}

// Streamer is a Body that can write itself directly into a Stream instead of
// being pulled chunk by chunk.
type Streamer interface {
	Body

	// Stream reports whether the body prefers Call over Read.
	Stream() bool

	// Call writes the whole body into stream and closes the body.
	Call(stream Stream) error
}

// Rewinder is implemented by bodies that can restart from their first chunk.
type Rewinder interface {
	Rewind() error
}

// ReadAll drains b and closes it, passing any read error to Close.
func ReadAll(b Body) ([]byte, error) {
	if b == nil {
		return nil, nil
	}
	var out []byte
	for {
		chunk, err := b.Read()
		if errors.Is(err, io.EOF) {
			b.Close(nil)
			return out, nil
		}
		if err != nil {
			b.Close(err)
			return out, err
		}
		out = append(out, chunk...)
	}
}

// Buffered is an in-memory body made of pre-computed chunks.
type Buffered struct {
	mu     sync.Mutex
	chunks [][]byte
	index  int
	length int64
	closed bool
}

// NewBuffered creates a buffered body from chunks.
func NewBuffered(chunks ...[]byte) *Buffered {
	var length int64
	for _, c := range chunks {
		length += int64(len(c))
	}
	return &Buffered{chunks: chunks, length: length}
}

// NewBufferedString creates a single chunk buffered body.
func NewBufferedString(s string) *Buffered {
	return NewBuffered([]byte(s))
}

// Read returns the next chunk.
func (b *Buffered) Read() ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed || b.index >= len(b.chunks) {
		return nil, io.EOF
	}
	chunk := b.chunks[b.index]
	b.index++
	return chunk, nil
}

// Close marks the body closed.
func (b *Buffered) Close(error) {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
}

// Empty reports whether every chunk has been read.
func (b *Buffered) Empty() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed || b.index >= len(b.chunks)
}

// Ready always reports true.
func (b *Buffered) Ready() bool { return true }

// Length returns the total size of all chunks.
func (b *Buffered) Length() int64 { return b.length }

// Rewind restarts the body from the first chunk and reopens it.
func (b *Buffered) Rewind() error {
	b.mu.Lock()
	b.index = 0
	b.closed = false
	b.mu.Unlock()
	return nil
}

// Chunks returns the underlying chunks.
func (b *Buffered) Chunks() [][]byte {
	return b.chunks
}
