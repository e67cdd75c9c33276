package protocol

import (
	"bufio"
	"net"
)

// HijackFunc takes over the raw connection after the response head has been
// handled by the transport.
type HijackFunc func(conn net.Conn, rw *bufio.ReadWriter)

// Response is an engine response.
type Response struct {
	Status  int
	Headers *Headers

	// Body is nil for responses without content.
	Body Body

	// Protocol is the negotiated upgrade protocol, e.g. "websocket".
	Protocol string

	// Hijack, when set, is given the raw connection instead of writing Body.
	Hijack HijackFunc
}

// NewResponse creates a response. A nil headers value is replaced by an
// empty set.
func NewResponse(status int, headers *Headers, body Body) *Response {
	if headers == nil {
		headers = NewHeaders()
	}
	return &Response{Status: status, Headers: headers, Body: body}
}

// NewTextResponse creates a plain text response.
func NewTextResponse(status int, text string) *Response {
	headers := NewHeaders(Field{Name: "content-type", Value: "text/plain; charset=utf-8"})
	return NewResponse(status, headers, NewBufferedString(text))
}

// ReadAll drains and closes the response body.
func (r *Response) ReadAll() ([]byte, error) {
	return ReadAll(r.Body)
}

// Handler turns a Request into a Response.
type Handler interface {
	Call(req *Request) *Response
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(req *Request) *Response

// Call calls f(req).
func (f HandlerFunc) Call(req *Request) *Response {
	return f(req)
}
