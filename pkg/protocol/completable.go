package protocol

import (
	"fmt"
	"sync"
)

// Completable wraps a body and invokes a callback exactly once, when the body
// is closed. The close error is passed to the callback.
type Completable struct {
	body     Body
	callback func(err error)
	once     sync.Once
}

// NewCompletable wraps b so that callback runs once when it is closed.
func NewCompletable(b Body, callback func(err error)) *Completable {
	return &Completable{body: b, callback: callback}
}

// Inner returns the wrapped body.
func (c *Completable) Inner() Body { return c.body }

// Read delegates to the wrapped body.
func (c *Completable) Read() ([]byte, error) { return c.body.Read() }

// Close closes the wrapped body, then runs the callback once.
func (c *Completable) Close(err error) {
	c.once.Do(func() {
		c.body.Close(err)
		if c.callback != nil {
			c.callback(err)
		}
	})
}

// Empty delegates to the wrapped body.
func (c *Completable) Empty() bool { return c.body.Empty() }

// Ready delegates to the wrapped body.
func (c *Completable) Ready() bool { return c.body.Ready() }

// Length delegates to the wrapped body.
func (c *Completable) Length() int64 { return c.body.Length() }

// Stream reports whether the wrapped body prefers to be called.
func (c *Completable) Stream() bool {
	s, ok := c.body.(Streamer)
	return ok && s.Stream()
}

// Call invokes the wrapped streaming body and then closes c with the result.
// c is closed even when the wrapped body panics; the panic is returned as an
// error.
func (c *Completable) Call(stream Stream) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("streaming body panicked: %v", r)
		}
		c.Close(err)
	}()

	s, ok := c.body.(Streamer)
	if !ok {
		return ErrNotStreamer
	}
	return s.Call(stream)
}
