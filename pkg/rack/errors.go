package rack

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"
)

var (
	// ErrNilApp is returned when an adapter is created without an application.
	ErrNilApp = errors.New("app must be callable")

	// ErrFinished is returned when registering a completion callback after the
	// response has been finalised.
	ErrFinished = errors.New("response already finished")

	// ErrNotRewindable is returned by Input.Rewind when the body cannot replay.
	ErrNotRewindable = errors.New("input is not rewindable")
)

// ArgumentError reports an application result that violates the calling
// convention.
type ArgumentError struct {
	Message string
}

func (e *ArgumentError) Error() string {
	return e.Message
}

// PanicError carries a value recovered from a panicking application.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	if err, ok := e.Value.(error); ok {
		return err.Error()
	}
	return fmt.Sprint(e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// ErrorName returns a short type name for err, e.g. "ArgumentError". Errors
// may provide their own name with an ErrorName() string method; unexported
// error types are reported as "Error".
func ErrorName(err error) string {
	if named, ok := err.(interface{ ErrorName() string }); ok {
		return named.ErrorName()
	}
	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Name() == "" {
		return "Error"
	}
	if r := []rune(t.Name()); !unicode.IsUpper(r[0]) {
		return "Error"
	}
	return t.Name()
}

// FormatError renders err as a single "Name: message" line.
func FormatError(err error) string {
	msg := strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(err.Error())
	return ErrorName(err) + ": " + msg
}
