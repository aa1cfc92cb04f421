// Package errors wraps pkg/errors and adds error codes. The codes are the
// error kinds callers of the I/O layer switch on; see Is.
package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Code is an error code which can be used to check against a given error. For
// example, see the Is() method.
type Code string

const (
	ErrUncoded Code = "Uncoded"

	// ErrInvalidArgument is returned for precondition violations such as a
	// negative row count or an out-of-range rank.
	ErrInvalidArgument Code = "InvalidArgument"

	// ErrIO is returned when a container or file cannot be opened, a dataset
	// is missing, or a read, write or close fails.
	ErrIO Code = "IOError"

	// ErrFormat is returned when a text file holds fewer tokens than the
	// declared dimensions imply, or a token is not a number.
	ErrFormat Code = "FormatError"
)

func New(code Code, message string) error {
	return errors.WithStack(codedError{
		Code:    code,
		Message: message,
	})
}

func Newf(code Code, format string, args ...interface{}) error {
	return New(code, fmt.Sprintf(format, args...))
}

// Coded attaches code to err. The result satisfies Is(result, code) and err
// stays reachable through Unwrap, so sentinel checks keep working.
func Coded(code Code, err error, message string) error {
	if err == nil {
		return nil
	}
	return errors.WithStack(codedError{
		Code:    code,
		Message: message,
		cause:   err,
	})
}

// Codedf is Coded with a formatted message.
func Codedf(code Code, err error, format string, args ...interface{}) error {
	return Coded(code, err, fmt.Sprintf(format, args...))
}


func Errorf(format string, args ...interface{}) error {
	return errors.Errorf(format, args...)
}

// Is is a fork of the Is() method from `pkg/errors` which takes as its target
// an error Code instead of an error.
func Is(err error, target Code) bool {
	match := codedError{
		Code: target,
	}
	return errors.Is(err, match)
}

// CodeOf returns the code of the first coded error in err's chain, or
// ErrUncoded.
func CodeOf(err error) Code {
	var ce codedError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ErrUncoded
}

func Unwrap(err error) error {
	return errors.Unwrap(err)
}

func WithMessage(err error, message string) error {
	return errors.WithMessage(err, message)
}


func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// codedError is the fundamental type used by this package to provide coded
// errors.
type codedError struct {
	Code    Code
	Message string
	cause   error
}

func (ce codedError) Error() string {
	if ce.cause != nil {
		return string(ce.Code) + ": " + ce.Message + ": " + ce.cause.Error()
	}
	return string(ce.Code) + ": " + ce.Message
}

func (ce codedError) Is(err error) bool {
	if e, ok := err.(codedError); ok && ce.Code == e.Code {
		return true
	}
	return false
}

func (ce codedError) Unwrap() error {
	return ce.cause
}
