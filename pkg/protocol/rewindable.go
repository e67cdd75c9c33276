package protocol

import (
	"io"
	"sync"
)

// Rewindable records every chunk read from the wrapped body so the body can
// be replayed from the start with Rewind. Buffered chunks survive Close.
type Rewindable struct {
	mu     sync.Mutex
	body   Body
	chunks [][]byte
	index  int
	done   bool
}

// NewRewindable wraps b.
func NewRewindable(b Body) *Rewindable {
	return &Rewindable{body: b}
}

// Read returns a recorded chunk when replaying, otherwise reads and records
// the next chunk from the wrapped body.
func (r *Rewindable) Read() ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.index < len(r.chunks) {
		chunk := r.chunks[r.index]
		r.index++
		return chunk, nil
	}
	if r.done || r.body == nil {
		return nil, io.EOF
	}

	chunk, err := r.body.Read()
	if err == io.EOF {
		r.done = true
		return nil, io.EOF
	}
	if err != nil {
		return nil, err
	}
	r.chunks = append(r.chunks, chunk)
	r.index++
	return chunk, nil
}

// Rewind restarts from the first recorded chunk.
func (r *Rewindable) Rewind() error {
	r.mu.Lock()
	r.index = 0
	r.mu.Unlock()
	return nil
}

// Close closes the wrapped body. Recorded chunks stay available.
func (r *Rewindable) Close(err error) {
	r.mu.Lock()
	b := r.body
	r.body = nil
	r.mu.Unlock()
	if b != nil {
		b.Close(err)
	}
}

// Empty reports whether nothing remains, recorded or unread.
func (r *Rewindable) Empty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.index < len(r.chunks) {
		return false
	}
	return r.done || r.body == nil || r.body.Empty()
}

// Ready reports whether the next read can be served without blocking.
func (r *Rewindable) Ready() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.index < len(r.chunks) {
		return true
	}
	return r.body == nil || r.body.Ready()
}

// Length returns the length of the wrapped body.
func (r *Rewindable) Length() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.body == nil {
		var n int64
		for _, c := range r.chunks {
			n += int64(len(c))
		}
		return n
	}
	return r.body.Length()
}
