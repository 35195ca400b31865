package itest

import (
	"fmt"

	"github.com/mumoshu/itest/pkg/api/transport"
	"github.com/pkg/errors"
)

type ErrorKind int

const (
	// UnknownError is returned by KindOf for errors that carry no kind.
	UnknownError ErrorKind = iota
	// FatalSetupError aborts a run before or during setup. It is never
	// reported through the success/failure listener pair.
	FatalSetupError
	// TestFailure is raised by the actions of a run.
	TestFailure
	// ValidationError is raised on mismatching values.
	ValidationError
	// TimeoutError is raised when a blocking receive gives up.
	TimeoutError
)

func (k ErrorKind) String() string {
	switch k {
	case FatalSetupError:
		return "fatal setup error"
	case TestFailure:
		return "test failure"
	case ValidationError:
		return "validation error"
	case TimeoutError:
		return "timeout error"
	default:
		return "unknown error"
	}
}

// Error is the tagged error type of the framework.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Cause makes Error play well with errors.Cause of github.com/pkg/errors.
func (e *Error) Cause() error {
	return e.Err
}

func newError(kind ErrorKind, cause error, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Err:     cause,
	}
}

func NewFatalSetupError(cause error, format string, args ...interface{}) *Error {
	return newError(FatalSetupError, cause, format, args...)
}

func NewTestFailure(cause error, format string, args ...interface{}) *Error {
	return newError(TestFailure, cause, format, args...)
}

func NewValidationError(cause error, format string, args ...interface{}) *Error {
	return newError(ValidationError, cause, format, args...)
}

func NewTimeoutError(cause error, format string, args ...interface{}) *Error {
	return newError(TimeoutError, cause, format, args...)
}

// KindOf returns the kind of the outermost tagged error in err's chain.
// A bare *transport.TimeoutError counts as TimeoutError.
func KindOf(err error) ErrorKind {
	for err != nil {
		switch e := err.(type) {
		case *Error:
			return e.Kind
		case *transport.TimeoutError:
			return TimeoutError
		}
		err = unwrap(err)
	}
	return UnknownError
}

// HasKind reports whether any error in err's chain is of the given kind.
func HasKind(err error, kind ErrorKind) bool {
	for err != nil {
		switch e := err.(type) {
		case *Error:
			if e.Kind == kind {
				return true
			}
		case *transport.TimeoutError:
			if kind == TimeoutError {
				return true
			}
		}
		err = unwrap(err)
	}
	return false
}

func unwrap(err error) error {
	if u := errors.Unwrap(err); u != nil {
		return u
	}
	if c, ok := err.(interface{ Cause() error }); ok {
		return c.Cause()
	}
	return nil
}
