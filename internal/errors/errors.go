// Package errors defines the coded error kinds raised while provisioning a machine.
//
// Every failure that crosses a step or phase boundary carries a Code so callers
// can decide whether it is fatal to the dependent step, to a whole phase, or to
// the run. Codes compare with errors.Is, messages do not take part.
package errors

import (
	"errors"
	"fmt"
)

// Code identifies an error kind.
type Code string

const (
	ErrUnknown Code = "UNKNOWN"

	// ErrSourceUnavailable: a package list or canonical export file cannot be read.
	ErrSourceUnavailable Code = "SOURCE_UNAVAILABLE"
	// ErrSubprocessFailure: a package manager or script exited non-zero or could not start.
	ErrSubprocessFailure Code = "SUBPROCESS_FAILURE"
	// ErrTargetMissing: a shell startup file does not exist.
	ErrTargetMissing Code = "TARGET_MISSING"
	// ErrConfigUnavailable: a shell startup file cannot be opened for appending.
	ErrConfigUnavailable Code = "CONFIG_UNAVAILABLE"
	// ErrDeployFailed: the dotfile tree could not be fetched or mirrored.
	ErrDeployFailed Code = "DEPLOY_FAILED"
	// ErrInvalidConfig: the YAML configuration is unreadable or inconsistent.
	ErrInvalidConfig Code = "INVALID_CONFIG"
)

// SetupError is a coded error with an optional wrapped cause.
type SetupError struct {
	Code    Code
	Message string
	Wrapped error
}

func (e *SetupError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *SetupError) Unwrap() error {
	return e.Wrapped
}

// Is matches any SetupError carrying the same code.
func (e *SetupError) Is(target error) bool {
	var t *SetupError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// New creates a SetupError without a cause.
func New(code Code, message string) *SetupError {
	return &SetupError{Code: code, Message: message}
}

// Newf creates a SetupError with a formatted message.
func Newf(code Code, format string, args ...any) *SetupError {
	return &SetupError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to err. It returns nil when err is nil.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &SetupError{Code: code, Message: message, Wrapped: err}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, code Code, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &SetupError{Code: code, Message: fmt.Sprintf(format, args...), Wrapped: err}
}

// IsCode reports whether any error in err's chain carries code.
func IsCode(err error, code Code) bool {
	var se *SetupError
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}

// CodeOf returns the code of the first SetupError in err's chain, or ErrUnknown.
func CodeOf(err error) Code {
	var se *SetupError
	if errors.As(err, &se) {
		return se.Code
	}
	return ErrUnknown
}
