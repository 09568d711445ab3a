package dispatch

import (
	"fmt"

	"github.com/agnivade/levenshtein"
)

// ErrorCode classifies execution failures.
type ErrorCode string

// Execution error codes.
const (
	CodeNoRevertTarget    ErrorCode = "no_revert_target"
	CodeNoEditableMessage ErrorCode = "no_editable_message"
	CodeUnknownCommand    ErrorCode = "unknown_command"
	CodeRemoteFailed      ErrorCode = "remote_operation_failed"
)

// ExecutionError is the single error type the dispatcher surfaces. Its
// message is what gets recorded verbatim on the history entry and shown to
// the user.
type ExecutionError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *ExecutionError) Error() string {
	return e.Message
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// errNoRevertTarget is returned when no message exists to revert to.
func errNoRevertTarget() *ExecutionError {
	return &ExecutionError{
		Code:    CodeNoRevertTarget,
		Message: "no message to revert to",
	}
}

// errNoEditableMessage is returned when the session has no user message to
// edit.
func errNoEditableMessage() *ExecutionError {
	return &ExecutionError{
		Code:    CodeNoEditableMessage,
		Message: "no user message to edit",
	}
}

// errUnknownCommand is the defensive fallback for dispatcher misuse; the
// availability gate keeps unknown commands out of the visible list, so this
// is never a reachable UI path. The message carries a nearest-name hint.
func errUnknownCommand(name string, known []string) *ExecutionError {
	msg := fmt.Sprintf("unknown command: %s", name)
	if hint := nearestName(name, known); hint != "" {
		msg = fmt.Sprintf("unknown command: %s (did you mean %q?)", name, hint)
	}
	return &ExecutionError{Code: CodeUnknownCommand, Message: msg}
}

// errRemoteFailed wraps a collaborator failure, keeping its human-readable
// message.
func errRemoteFailed(op string, err error) *ExecutionError {
	return &ExecutionError{
		Code:    CodeRemoteFailed,
		Message: fmt.Sprintf("%s failed: %s", op, err.Error()),
		Err:     err,
	}
}

// nearestName returns the closest known name within a small edit distance,
// or empty if nothing is close enough to suggest.
func nearestName(name string, known []string) string {
	best := ""
	bestDist := 3 // suggestions beyond two edits are noise
	for _, candidate := range known {
		if d := levenshtein.ComputeDistance(name, candidate); d < bestDist {
			best = candidate
			bestDist = d
		}
	}
	return best
}
