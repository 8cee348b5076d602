package httperrors

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// Error is a failure that carries the HTTP status the client should receive.
// Handler collections may return it, or any error implementing StatusCode() int.
type Error struct {
	status int
	cause  error
}

type statusCoder interface {
	StatusCode() int
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// New returns an error with the given status and message, recording the stack
// trace at the point it was called
func New(status int, message string) error {
	return &Error{status: status, cause: errors.New(message)}
}

// Errorf formats according to a format specifier and returns the result as an
// error carrying status
func Errorf(status int, format string, args ...interface{}) error {
	return &Error{status: status, cause: errors.Errorf(format, args...)}
}

// Wrap attaches status to err. It returns nil if err is nil.
func Wrap(err error, status int) error {
	if err == nil {
		return nil
	}

	var st stackTracer
	if !errors.As(err, &st) {
		err = errors.WithStack(err)
	}

	return &Error{status: status, cause: err}
}

func (e *Error) Error() string {
	return e.cause.Error()
}

// StatusCode returns the HTTP status attached to the error
func (e *Error) StatusCode() int {
	return e.status
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Format supports %+v, printing the message followed by the stack trace
func (e *Error) Format(s fmt.State, verb rune) {
	if f, ok := e.cause.(fmt.Formatter); ok {
		f.Format(s, verb)
		return
	}

	fmt.Fprint(s, e.cause.Error())
}

// StatusCode returns the client error or server error status carried by err,
// or 500 when err does not carry a usable one
func StatusCode(err error) int {
	var sc statusCoder
	if errors.As(err, &sc) {
		if status := sc.StatusCode(); status >= 400 && status <= 599 {
			return status
		}
	}

	return http.StatusInternalServerError
}

// Stack returns the message of err followed by the first stack trace recorded
// in its chain. Errors without one get the stack of the caller.
func Stack(err error) string {
	var st stackTracer
	if !errors.As(err, &st) {
		st = errors.WithStack(err).(stackTracer)
	}

	return fmt.Sprintf("%s%+v", err.Error(), st.StackTrace())
}
