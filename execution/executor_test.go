package execution

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/simforge/simforge/logging"
)

// newTestExecutor creates an Executor over a disabled logger for use in tests.
func newTestExecutor() *Executor {
	return NewExecutor(logging.NewLogger(0, false))
}

// TestRunCapturesStdout will test that a successful command returns its raw stdout.
func TestRunCapturesStdout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test requires a POSIX shell")
	}

	executor := newTestExecutor()
	stdout, err := executor.Run(context.Background(), "sh", []string{"-c", "printf hello"}, DefaultChainTimeout)
	assert.NoError(t, err)
	assert.Equal(t, "hello", string(stdout))
}

// TestRunCommandFailed will test that a non-zero exit is classified as a command failure carrying the captured
// stderr, with any stdout the command produced still returned alongside the error.
func TestRunCommandFailed(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test requires a POSIX shell")
	}

	executor := newTestExecutor()
	stdout, err := executor.Run(context.Background(), "sh", []string{"-c", "printf partial; printf boom >&2; exit 3"}, DefaultChainTimeout)

	assert.Error(t, err)
	cmdErr, ok := AsCommandError(err)
	assert.True(t, ok)
	assert.Equal(t, ErrorKindCommandFailed, cmdErr.Kind)
	assert.Equal(t, "boom", cmdErr.Stderr)
	assert.Equal(t, "partial", string(stdout))
}

// TestRunTimedOut will test that a command exceeding its timeout is killed and classified as timed out.
func TestRunTimedOut(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test requires a POSIX shell")
	}

	executor := newTestExecutor()
	start := time.Now()
	_, err := executor.Run(context.Background(), "sh", []string{"-c", "sleep 10"}, 100*time.Millisecond)
	elapsed := time.Since(start)

	assert.True(t, IsKind(err, ErrorKindTimedOut))

	// The command must have been killed at the deadline rather than run to completion.
	assert.Less(t, elapsed, 5*time.Second)
}

// TestRunToolNotFound will test that a missing binary is classified as a tool resolution failure rather than a
// command failure.
func TestRunToolNotFound(t *testing.T) {
	executor := newTestExecutor()
	_, err := executor.Run(context.Background(), "definitely-not-a-real-binary-1f2e3d", nil, DefaultChainTimeout)
	assert.True(t, IsKind(err, ErrorKindToolNotFound))
}

// TestRunJSON will test that RunJSON decodes the command's stdout into the provided value, and classifies invalid
// JSON output as a parse failure carrying the raw text.
func TestRunJSON(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test requires a POSIX shell")
	}

	executor := newTestExecutor()

	// Valid JSON output decodes into the target value.
	var decoded struct {
		Status string `json:"status"`
	}
	err := executor.RunJSON(context.Background(), "sh", []string{"-c", `printf '{"status": "ok"}'`}, DefaultChainTimeout, &decoded)
	assert.NoError(t, err)
	assert.Equal(t, "ok", decoded.Status)

	// A successful command with non-JSON output is a parse failure.
	err = executor.RunJSON(context.Background(), "sh", []string{"-c", "printf 'not json'"}, DefaultChainTimeout, &decoded)
	cmdErr, ok := AsCommandError(err)
	assert.True(t, ok)
	assert.Equal(t, ErrorKindOutputParse, cmdErr.Kind)
	assert.Equal(t, "not json", cmdErr.Raw)
}

// TestCommandErrorMessages will test that each error kind renders a distinct message naming the tool.
func TestCommandErrorMessages(t *testing.T) {
	testCases := []struct {
		err      *CommandError
		expected string
	}{
		{NewCommandFailedError("cast", "revert", nil), "cast exited with an error: revert"},
		{NewTimedOutError("cast", 30*time.Second), "cast timed out"},
		{NewOutputParseError("slither", "garbage", nil), "slither produced output that could not be parsed as JSON"},
		{NewToolNotFoundError("anvil", nil), "anvil is not installed or not in PATH"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, tc.err.Error())
	}
}
