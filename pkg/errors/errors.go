// Package errors provides the error helpers used across the codebase.
// It wraps github.com/pkg/errors so call sites get stack traces for free
// and New accepts printf-style arguments.
package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/pkg/errors"
)

type StackTracer interface {
	StackTrace() errors.StackTrace
}

// New returns an error with the supplied message and records the stack trace
// at the point it was called. Arguments are handled fmt.Sprintf style.
func New(format string, args ...interface{}) error {
	if len(args) == 0 {
		return errors.New(format)
	}
	return errors.New(fmt.Sprintf(format, args...))
}

// Wrap annotates err with a message and a stack trace.
// Returns nil if err is nil.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf annotates err with a formatted message and a stack trace.
// Returns nil if err is nil.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// Cause returns the underlying cause of the error, if possible.
func Cause(err error) error {
	return errors.Cause(err)
}
