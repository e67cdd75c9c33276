package protocol

import (
	"errors"
	"io"
	"sync"
)

// BlockSize is the read size used when adapting an io.Reader to a Body.
const BlockSize = 4 * 1024

// Reader adapts an io.ReadCloser into a Body, reading in BlockSize chunks.
type Reader struct {
	mu     sync.Mutex
	rc     io.ReadCloser
	length int64
	done   bool
}

// NewReader wraps rc. length is the declared size, or -1 when unknown.
func NewReader(rc io.ReadCloser, length int64) *Reader {
	return &Reader{rc: rc, length: length}
}

// Read returns the next block from the reader.
func (r *Reader) Read() ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.rc == nil {
		return nil, ErrBodyClosed
	}
	if r.done {
		return nil, io.EOF
	}

	buf := make([]byte, BlockSize)
	for {
		n, err := r.rc.Read(buf)
		if n > 0 {
			if errors.Is(err, io.EOF) {
				r.done = true
			}
			return buf[:n], nil
		}
		if errors.Is(err, io.EOF) {
			r.done = true
			return nil, io.EOF
		}
		if err != nil {
			return nil, err
		}
	}
}

// Close closes the underlying reader once.
func (r *Reader) Close(error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rc != nil {
		_ = r.rc.Close()
		r.rc = nil
	}
}

// Empty reports whether the declared length is zero or the reader is done.
func (r *Reader) Empty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.length == 0 || r.done || r.rc == nil
}

// Ready reports false: data arrives from the network.
func (r *Reader) Ready() bool { return false }

// Length returns the declared length.
func (r *Reader) Length() int64 { return r.length }

// BodyReader exposes a Body as an io.Reader, keeping the unread remainder of
// the current chunk between calls.
type BodyReader struct {
	body    Body
	pending []byte
}

// NewBodyReader returns an io.Reader over b.
func NewBodyReader(b Body) *BodyReader {
	return &BodyReader{body: b}
}

// Read implements io.Reader.
func (br *BodyReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	for len(br.pending) == 0 {
		if br.body == nil {
			return 0, io.EOF
		}
		chunk, err := br.body.Read()
		if err != nil {
			return 0, err
		}
		br.pending = chunk
	}
	n := copy(p, br.pending)
	br.pending = br.pending[n:]
	return n, nil
}
