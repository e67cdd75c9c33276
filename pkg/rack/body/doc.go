// Package body adapts application response bodies to the engine Body model.
//
// Applications return bodies in several shapes. Wrap resolves the shape once,
// into a Kind, and returns the matching adapter:
//
//   - nil: no body
//   - protocol.Body: used as-is
//   - anything with Path() string, when the status is exactly 200: a
//     protocol.File opened from that path (zero-copy capable)
//   - []string, [][]byte, string, []byte or Each: an Enumerable
//   - Caller (including StreamFunc): a Streaming body
//
// # Streaming
//
// A Streaming body runs a push-style callable that writes chunks into a
// protocol.Stream, and exposes it as a pull-style Body. The callable runs as a
// coroutine (iter.Pull): it executes until it writes a chunk, then control
// returns to the reader; the next Read resumes it. Exactly one chunk is in
// flight at any time, chunks arrive in write order and the reader paces the
// writer. Closing the body early makes the pending Write return the close
// error so the callable can unwind.
//
// Writes must happen on the goroutine that runs the callable.
package body
