package protocol

import "io"

// Head is the body of a response to a HEAD request: it produces no data but
// keeps the length of the body it replaced.
type Head struct {
	length int64
}

// NewHead closes b and returns a zero-length body with b's length. It returns
// nil when b is nil.
func NewHead(b Body) *Head {
	if b == nil {
		return nil
	}
	h := &Head{length: b.Length()}
	b.Close(nil)
	return h
}

// Read always returns io.EOF.
func (h *Head) Read() ([]byte, error) { return nil, io.EOF }

// Close is a no-op.
func (h *Head) Close(error) {}

// Empty always reports true.
func (h *Head) Empty() bool { return true }

// Ready always reports true.
func (h *Head) Ready() bool { return true }

// Length returns the length of the replaced body.
func (h *Head) Length() int64 { return h.length }
