package protocol

import (
	"errors"
	"io"
)

// WriteBody sends b to w and closes b with the outcome.
//
// Streaming bodies are called with a Stream over input and w. File bodies
// are copied with WriteTo. Any other body is pulled chunk by chunk, flushing
// whenever the body was not holding its data in memory. flush may be nil.
func WriteBody(w io.Writer, b Body, input Body, flush func() error) error {
	if b == nil {
		return nil
	}
	if flush == nil {
		flush = func() error { return nil }
	}

	if s, ok := b.(Streamer); ok && s.Stream() {
		return s.Call(NewIOStream(input, w, flush))
	}

	if f := fileOf(b); f != nil {
		_, err := f.WriteTo(w)
		b.Close(err)
		return err
	}

	for {
		ready := b.Ready()
		chunk, err := b.Read()
		if errors.Is(err, io.EOF) {
			b.Close(nil)
			return nil
		}
		if err != nil {
			b.Close(err)
			return err
		}
		if _, err := w.Write(chunk); err != nil {
			b.Close(err)
			return err
		}
		if !ready {
			if err := flush(); err != nil {
				b.Close(err)
				return err
			}
		}
	}
}

func fileOf(b Body) *File {
	for {
		switch v := b.(type) {
		case *File:
			return v
		case *Completable:
			b = v.Inner()
		default:
			return nil
		}
	}
}
