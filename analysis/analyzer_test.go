package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/simforge/simforge/config"
	"github.com/simforge/simforge/execution"
	"github.com/simforge/simforge/logging"
)

// fakeRunner is an execution.Runner test double which records the argument vectors it receives and returns a
// scripted stdout document and error.
type fakeRunner struct {
	invocations [][]string
	stdout      []byte
	err         error
}

func (r *fakeRunner) Run(ctx context.Context, tool string, args []string, timeout time.Duration) ([]byte, error) {
	r.invocations = append(r.invocations, append([]string{tool}, args...))
	return r.stdout, r.err
}

func (r *fakeRunner) RunJSON(ctx context.Context, tool string, args []string, timeout time.Duration, v any) error {
	stdout, err := r.Run(ctx, tool, args, timeout)
	if err != nil {
		return err
	}
	return json.Unmarshal(stdout, v)
}

// newTestAnalyzer creates an Analyzer over the given fake runner, writing request files into a test-scoped
// directory.
func newTestAnalyzer(t *testing.T, runner *fakeRunner) (*Analyzer, string) {
	workDirectory := t.TempDir()
	analysisConfig := config.AnalysisConfig{Binary: "slither", Timeout: 60, WorkDirectory: workDirectory}
	return NewAnalyzer(analysisConfig, runner, logging.NewLogger(0, false)), workDirectory
}

// TestAnalyzeRelaysReport will test that a clean analysis relays the analyzer's JSON report and invokes the tool
// over a source file inside the configured work directory.
func TestAnalyzeRelaysReport(t *testing.T) {
	runner := &fakeRunner{stdout: []byte(`{"success": true, "results": {}}`)}
	analyzer, workDirectory := newTestAnalyzer(t, runner)

	report, err := analyzer.Analyze(context.Background(), "contract A {}")
	assert.NoError(t, err)
	assert.JSONEq(t, `{"success": true, "results": {}}`, string(report))

	// The tool was pointed at a source file inside the work directory, asking for the report on stdout.
	assert.Equal(t, 1, len(runner.invocations))
	argv := runner.invocations[0]
	assert.Equal(t, "slither", argv[0])
	assert.True(t, strings.HasPrefix(argv[1], workDirectory))
	assert.True(t, strings.HasSuffix(argv[1], ".sol"))
	assert.Equal(t, []string{"--json", "-"}, argv[2:])
}

// TestAnalyzeFindingsOnFailure will test that a non-zero analyzer exit with a report on stdout still counts as a
// successful analysis, as the analyzer signals the presence of findings through its exit status.
func TestAnalyzeFindingsOnFailure(t *testing.T) {
	runner := &fakeRunner{
		stdout: []byte(`{"success": true, "results": {"detectors": [{"check": "reentrancy"}]}}`),
		err:    execution.NewCommandFailedError("slither", "", fmt.Errorf("exit status 255")),
	}
	analyzer, _ := newTestAnalyzer(t, runner)

	report, err := analyzer.Analyze(context.Background(), "contract A {}")
	assert.NoError(t, err)
	assert.Contains(t, string(report), "reentrancy")
}

// TestAnalyzeFailureWithoutOutput will test that a failed analysis with no report propagates the command error.
func TestAnalyzeFailureWithoutOutput(t *testing.T) {
	runner := &fakeRunner{
		err: execution.NewCommandFailedError("slither", "crash", fmt.Errorf("exit status 1")),
	}
	analyzer, _ := newTestAnalyzer(t, runner)

	report, err := analyzer.Analyze(context.Background(), "contract A {}")
	assert.Nil(t, report)
	assert.True(t, execution.IsKind(err, execution.ErrorKindCommandFailed))
}

// TestAnalyzeTimeoutPropagates will test that an analysis timeout propagates typed, without being mistaken for
// findings.
func TestAnalyzeTimeoutPropagates(t *testing.T) {
	runner := &fakeRunner{err: execution.NewTimedOutError("slither", 60*time.Second)}
	analyzer, _ := newTestAnalyzer(t, runner)

	report, err := analyzer.Analyze(context.Background(), "contract A {}")
	assert.Nil(t, report)
	assert.True(t, execution.IsKind(err, execution.ErrorKindTimedOut))
}

// TestAnalyzeInvalidOutput will test that analyzer output which is not a valid JSON document is classified as a
// parse failure carrying the raw text.
func TestAnalyzeInvalidOutput(t *testing.T) {
	runner := &fakeRunner{stdout: []byte("Traceback (most recent call last):")}
	analyzer, _ := newTestAnalyzer(t, runner)

	report, err := analyzer.Analyze(context.Background(), "contract A {}")
	assert.Nil(t, report)
	cmdErr, ok := execution.AsCommandError(err)
	assert.True(t, ok)
	assert.Equal(t, execution.ErrorKindOutputParse, cmdErr.Kind)
	assert.Contains(t, cmdErr.Raw, "Traceback")
}

// TestAnalyzeCleansUpSourceFile will test that the request-scoped source file is removed after the request, on both
// the success and failure paths.
func TestAnalyzeCleansUpSourceFile(t *testing.T) {
	testCases := []struct {
		name   string
		runner *fakeRunner
	}{
		{"success", &fakeRunner{stdout: []byte(`{}`)}},
		{"failure", &fakeRunner{err: execution.NewCommandFailedError("slither", "crash", nil)}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			analyzer, workDirectory := newTestAnalyzer(t, tc.runner)

			_, _ = analyzer.Analyze(context.Background(), "contract A {}")

			entries, err := os.ReadDir(workDirectory)
			assert.NoError(t, err)
			assert.Empty(t, entries)
		})
	}
}
