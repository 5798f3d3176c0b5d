package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/simforge/simforge/config"
	"github.com/simforge/simforge/execution"
	"github.com/simforge/simforge/logging"
	"github.com/simforge/simforge/utils"
)

// Analyzer runs a static analyzer binary over submitted contract source and relays its JSON report. It is
// stateless: each analysis writes the source to a request-scoped temporary file which is removed when the request
// completes, on all paths. Nothing is shared across requests.
type Analyzer struct {
	// binary describes the name of the analyzer binary to invoke.
	binary string

	// timeout describes how long each analysis invocation is allowed to run.
	timeout time.Duration

	// workDirectory describes the directory request-scoped source files are written to.
	workDirectory string

	// runner describes the command execution capability used to invoke the analyzer.
	runner execution.Runner

	// logger describes the Analyzer's log object
	logger *logging.Logger
}

// NewAnalyzer creates an Analyzer for the given analysis configuration, invoking the analyzer through the provided
// runner. An empty work directory defaults to the system temporary directory.
func NewAnalyzer(analysisConfig config.AnalysisConfig, runner execution.Runner, logger *logging.Logger) *Analyzer {
	workDirectory := analysisConfig.WorkDirectory
	if workDirectory == "" {
		workDirectory = os.TempDir()
	}
	return &Analyzer{
		binary:        analysisConfig.Binary,
		timeout:       time.Duration(analysisConfig.Timeout) * time.Second,
		workDirectory: workDirectory,
		runner:        runner,
		logger:        logger.NewSubLogger("module", "analysis"),
	}
}

// Analyze writes the given contract source to a temporary file, runs the analyzer over it, and returns the
// analyzer's JSON report. The analyzer exits non-zero when findings are present, so a failed command which still
// produced a report on stdout counts as a successful analysis; a failed command with no output is an error.
func (a *Analyzer) Analyze(ctx context.Context, source string) (json.RawMessage, error) {
	// Write the source to a request-scoped file with a unique name so concurrent requests cannot collide.
	file, err := utils.CreateFile(a.workDirectory, fmt.Sprintf("%s.sol", uuid.New().String()))
	if err != nil {
		return nil, err
	}
	filePath := file.Name()

	// Ensure the temporary file is always removed.
	defer func() {
		_ = utils.DeleteFile(filePath)
	}()

	if _, err = file.WriteString(source); err != nil {
		file.Close()
		return nil, err
	}
	if err = file.Close(); err != nil {
		return nil, err
	}

	// Run the analyzer. The `--json -` flag directs the report to stdout.
	args := []string{filePath, "--json", "-"}
	stdout, err := a.runner.Run(ctx, a.binary, args, a.timeout)
	if err != nil {
		// A non-zero exit with a report on stdout still counts as a successful analysis.
		if !execution.IsKind(err, execution.ErrorKindCommandFailed) || len(stdout) == 0 {
			return nil, err
		}
	}

	// The report must be a valid JSON document to be relayed.
	if !json.Valid(stdout) {
		return nil, execution.NewOutputParseError(a.binary, string(stdout), fmt.Errorf("analyzer output is not valid JSON"))
	}

	a.logger.Info("Analysis successful")
	return json.RawMessage(stdout), nil
}
