package execution

import (
	"context"
	"encoding/json"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/simforge/simforge/logging"
	"github.com/simforge/simforge/utils"
)

// DefaultChainTimeout is the timeout applied to chain-facing tool invocations (deployments and calls).
const DefaultChainTimeout = 30 * time.Second

// DefaultAnalysisTimeout is the timeout applied to static analysis tool invocations.
const DefaultAnalysisTimeout = 60 * time.Second

// Runner describes a narrow capability that invokes an external command-line tool with a bounded timeout and
// captures its output. It is the single surface through which the service touches external processes, which lets
// the layers above it be tested without spawning anything.
type Runner interface {
	// Run executes the given tool with the provided argument vector, enforcing the given timeout. It returns the
	// raw stdout bytes on success, or a *CommandError describing the failure.
	Run(ctx context.Context, tool string, args []string, timeout time.Duration) ([]byte, error)

	// RunJSON executes the given tool like Run and additionally decodes its stdout into the provided value,
	// returning a *CommandError of kind ErrorKindOutputParse if the output is not valid JSON.
	RunJSON(ctx context.Context, tool string, args []string, timeout time.Duration, v any) error
}

// Executor is the default Runner implementation, backed by os/exec. A single attempt is made per invocation;
// retry policy, if any, belongs to the caller and none is applied anywhere in this service.
type Executor struct {
	// logger describes the Executor's log object
	logger *logging.Logger
}

// NewExecutor creates an Executor which logs through a sub-logger of the provided logger.
func NewExecutor(logger *logging.Logger) *Executor {
	return &Executor{
		logger: logger.NewSubLogger("module", "execution"),
	}
}

// Run executes the given tool with the provided argument vector, enforcing the given timeout. It returns the raw
// stdout bytes on success, or a *CommandError describing the failure. For a command which ran and exited non-zero,
// any stdout it produced is returned alongside the error; some tools (notably static analyzers) report findings on
// stdout while signalling their presence through the exit status.
func (e *Executor) Run(ctx context.Context, tool string, args []string, timeout time.Duration) ([]byte, error) {
	// Derive a deadline for this invocation. The command is killed once the deadline passes.
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// Create and run the command, capturing stdout and stderr separately.
	start := time.Now()
	cmd := exec.CommandContext(runCtx, tool, args...)
	stdout, stderr, _, err := utils.RunCommandWithOutputAndError(cmd)
	elapsed := time.Since(start)

	e.logger.Debug("Executed ", tool, logging.StructuredLogInfo{
		"args":    strings.Join(args, " "),
		"elapsed": elapsed.String(),
	})

	// Classify any failure into our typed error surface.
	if err != nil {
		// A deadline on the run context means the process was killed for exceeding the timeout.
		if runCtx.Err() == context.DeadlineExceeded {
			return nil, NewTimedOutError(tool, timeout)
		}

		// A missing binary surfaces as an exec.Error wrapping exec.ErrNotFound.
		var execErr *exec.Error
		if errors.As(err, &execErr) && errors.Is(execErr.Err, exec.ErrNotFound) {
			return nil, NewToolNotFoundError(tool, err)
		}

		// Anything else is a command which ran and failed. Its stdout is passed through for callers which can
		// use partial output.
		return stdout, NewCommandFailedError(tool, strings.TrimSpace(string(stderr)), err)
	}

	return stdout, nil
}

// RunJSON executes the given tool like Run and additionally decodes its stdout into the provided value, returning
// a *CommandError of kind ErrorKindOutputParse if the output is not valid JSON.
func (e *Executor) RunJSON(ctx context.Context, tool string, args []string, timeout time.Duration, v any) error {
	// Run the underlying command first.
	stdout, err := e.Run(ctx, tool, args, timeout)
	if err != nil {
		return err
	}

	// Decode the output into the caller's value.
	if err = json.Unmarshal(stdout, v); err != nil {
		return NewOutputParseError(tool, string(stdout), err)
	}

	return nil
}
