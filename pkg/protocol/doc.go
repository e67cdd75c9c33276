// Package protocol defines the engine-side HTTP model used by the bridge.
//
// The engine model is streaming and pull based: a Request carries a Body that
// is read chunk by chunk, and a Response carries a Body that the transport
// drains on demand. Transports (see pkg/transport) convert their native
// request objects into a Request, hand it to a Handler and write the returned
// Response back to the client.
//
// # Core Types
//
//   - Headers: ordered, case-insensitive multimap of header fields
//   - Body: pull-style chunk producer with idempotent Close
//   - Streamer: a Body that can also write itself directly into a Stream
//   - Request / Response: the engine request and response
//   - Handler: anything that turns a Request into a Response
//
// # Bodies
//
// Several Body implementations are provided:
//
//   - Buffered: in-memory chunks, rewindable
//   - Reader: adapts an io.ReadCloser, reads in fixed-size blocks
//   - File: file-backed body, lets transports use zero-copy paths
//   - Head: zero-length body that keeps the length of the body it replaces
//   - Rewindable: records chunks as they are read so they can be replayed
//   - Completable: invokes a callback exactly once when closed
//
// # Thread Safety
//
// Bodies are owned by a single request and are not safe for concurrent Read
// calls. Close may be called from any goroutine and is idempotent.
package protocol
