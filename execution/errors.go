package execution

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind describes the classification of a CommandError. It is the only error surface the layers above the
// executor are expected to branch on; raw diagnostic text is attached for operator visibility but is never matched
// against in core logic.
type ErrorKind string

const (
	// ErrorKindCommandFailed indicates the command ran and exited with a non-zero status.
	ErrorKindCommandFailed ErrorKind = "command_failed"

	// ErrorKindTimedOut indicates the command exceeded its allotted timeout and was killed.
	ErrorKindTimedOut ErrorKind = "command_timed_out"

	// ErrorKindOutputParse indicates the command succeeded but its stdout was not a valid JSON document.
	ErrorKindOutputParse ErrorKind = "output_parse_error"

	// ErrorKindToolNotFound indicates the tool binary could not be located on the host. This is a server
	// configuration error, not a user error.
	ErrorKindToolNotFound ErrorKind = "tool_not_found"
)

// CommandError is the typed error returned by the Executor for any failed invocation. It carries the kind of
// failure along with the raw diagnostics captured from the underlying process.
type CommandError struct {
	// Kind describes the classification of this error.
	Kind ErrorKind

	// Tool describes the name of the binary that was invoked.
	Tool string

	// Stderr holds the captured standard error text for command failures.
	Stderr string

	// Raw holds the captured standard output for output parse failures.
	Raw string

	// err describes the underlying error, if any.
	err error
}

// Error returns the error message string, implementing the `error` interface.
func (e *CommandError) Error() string {
	switch e.Kind {
	case ErrorKindCommandFailed:
		return fmt.Sprintf("%s exited with an error: %s", e.Tool, e.Stderr)
	case ErrorKindTimedOut:
		return fmt.Sprintf("%s timed out", e.Tool)
	case ErrorKindOutputParse:
		return fmt.Sprintf("%s produced output that could not be parsed as JSON", e.Tool)
	case ErrorKindToolNotFound:
		return fmt.Sprintf("%s is not installed or not in PATH", e.Tool)
	default:
		return fmt.Sprintf("%s failed", e.Tool)
	}
}

// Unwrap returns the underlying error, if any, supporting errors.Is/errors.As chains.
func (e *CommandError) Unwrap() error {
	return e.err
}

// NewCommandFailedError creates a CommandError for a command which exited with a non-zero status.
func NewCommandFailedError(tool string, stderr string, err error) *CommandError {
	return &CommandError{Kind: ErrorKindCommandFailed, Tool: tool, Stderr: stderr, err: err}
}

// NewTimedOutError creates a CommandError for a command which exceeded the given timeout.
func NewTimedOutError(tool string, timeout time.Duration) *CommandError {
	return &CommandError{Kind: ErrorKindTimedOut, Tool: tool, err: fmt.Errorf("command exceeded %s timeout", timeout)}
}

// NewOutputParseError creates a CommandError for a command whose stdout could not be decoded as JSON.
func NewOutputParseError(tool string, raw string, err error) *CommandError {
	return &CommandError{Kind: ErrorKindOutputParse, Tool: tool, Raw: raw, err: err}
}

// NewToolNotFoundError creates a CommandError for a tool binary which could not be located.
func NewToolNotFoundError(tool string, err error) *CommandError {
	return &CommandError{Kind: ErrorKindToolNotFound, Tool: tool, err: err}
}

// AsCommandError unwraps the given error into a *CommandError, returning the typed error and a boolean indicating
// whether the conversion succeeded.
func AsCommandError(err error) (*CommandError, bool) {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr, true
	}
	return nil, false
}

// IsKind reports whether the given error is a CommandError of the provided kind.
func IsKind(err error, kind ErrorKind) bool {
	cmdErr, ok := AsCommandError(err)
	return ok && cmdErr.Kind == kind
}
