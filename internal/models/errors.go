package models

import (
	"errors"
	"fmt"
)

// ErrorKind represents different categories of setup failures
type ErrorKind int

const (
	ErrPrecondition ErrorKind = iota
	ErrVerification
	ErrTolerated
	ErrSubprocess
)

// String returns the string representation of ErrorKind
func (k ErrorKind) String() string {
	switch k {
	case ErrPrecondition:
		return "Precondition"
	case ErrVerification:
		return "Verification"
	case ErrTolerated:
		return "Tolerated"
	case ErrSubprocess:
		return "Subprocess"
	default:
		return "Unknown"
	}
}

// SetupError represents a failure in a named provisioning step. Errors of
// kind ErrTolerated are collected as values and reported, never returned as
// the failure of an operation.
type SetupError struct {
	Kind ErrorKind
	Step string
	Err  error
}

// Error implements the error interface
func (e *SetupError) Error() string {
	if e.Step != "" {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Step, e.Err)
	}
	return fmt.Sprintf("[%s] %v", e.Kind, e.Err)
}

// Unwrap returns the wrapped error
func (e *SetupError) Unwrap() error {
	return e.Err
}

// CommandError represents a subprocess exiting non-zero.
type CommandError struct {
	Line     string
	ExitCode int
	Stderr   string
}

// Error implements the error interface
func (e *CommandError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s: exit status %d: %s", e.Line, e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("%s: exit status %d", e.Line, e.ExitCode)
}

// ExitCode maps an error to the process exit status. A failed subprocess
// surfaces its own exit status; every other failure exits 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) && cmdErr.ExitCode > 0 {
		return cmdErr.ExitCode
	}
	return 1
}
