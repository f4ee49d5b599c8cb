package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupError_Error(t *testing.T) {
	err := &SetupError{Kind: ErrVerification, Step: "verify signing key", Err: errors.New("mismatch")}
	assert.Equal(t, "[Verification] verify signing key: mismatch", err.Error())

	noStep := &SetupError{Kind: ErrPrecondition, Err: errors.New("no root")}
	assert.Equal(t, "[Precondition] no root", noStep.Error())
}

func TestSetupError_Unwrap(t *testing.T) {
	inner := errors.New("inner")
	err := &SetupError{Kind: ErrSubprocess, Step: "install", Err: inner}

	assert.ErrorIs(t, err, inner)
	assert.ErrorIs(t, fmt.Errorf("wrapped: %w", err), inner)
}

func TestCommandError_Error(t *testing.T) {
	withStderr := &CommandError{Line: "apt-get update", ExitCode: 100, Stderr: "no network"}
	assert.Equal(t, "apt-get update: exit status 100: no network", withStderr.Error())

	noStderr := &CommandError{Line: "true", ExitCode: 1}
	assert.Equal(t, "true: exit status 1", noStderr.Error())
}

func TestExitCode(t *testing.T) {
	cmdErr := &CommandError{Line: "dnf makecache", ExitCode: 4}

	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(errors.New("plain")))
	assert.Equal(t, 4, ExitCode(cmdErr))

	// The subprocess exit status survives wrapping in a SetupError.
	wrapped := &SetupError{Kind: ErrSubprocess, Step: "refresh metadata", Err: cmdErr}
	assert.Equal(t, 4, ExitCode(wrapped))

	// A zero stored exit code never maps to success.
	assert.Equal(t, 1, ExitCode(&CommandError{Line: "x"}))
}

func TestErrorKind_String(t *testing.T) {
	require.Equal(t, "Precondition", ErrPrecondition.String())
	require.Equal(t, "Verification", ErrVerification.String())
	require.Equal(t, "Tolerated", ErrTolerated.String())
	require.Equal(t, "Subprocess", ErrSubprocess.String())
	require.Equal(t, "Unknown", ErrorKind(99).String())
}
