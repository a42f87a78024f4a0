package domain

import (
	"errors"
	"fmt"
)

// Failure kinds carried through return values. Each kind maps to exactly
// one retry policy in the coalescer:
//
//   - ErrTransport: connection lifecycle failure; the track is re-queued
//     unless a newer one is already pending.
//   - ErrRejected: the encoder answered "NO" or the response was
//     malformed; the payload itself is presumed bad, no retry.
//   - ErrEncode: the RT+ payload could not be built; RT+TAG is skipped.
//   - ErrValidation: the feed message was missing required fields; the
//     track is never scheduled.
var (
	ErrTransport  = errors.New("TRANSPORT")
	ErrRejected   = errors.New("REJECTED")
	ErrEncode     = errors.New("ENCODE")
	ErrValidation = errors.New("VALIDATION")
)

// CommandError wraps a command failure with its kind and original cause
type CommandError struct {
	// Command is the encoder command name, e.g. "TEXT"
	Command string
	// Kind is one of the sentinel failure kinds above
	Kind error
	// Cause is the underlying error, kept for diagnostics
	Cause error
}

// NewCommandError builds a CommandError for the given command
func NewCommandError(command string, kind, cause error) *CommandError {
	return &CommandError{Command: command, Kind: kind, Cause: cause}
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%v: command %q: %v", e.Kind, e.Command, e.Cause)
}

// Unwrap exposes the failure kind so callers can branch with errors.Is
func (e *CommandError) Unwrap() error {
	return e.Kind
}
