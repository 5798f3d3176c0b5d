package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/simforge/simforge/analysis"
	"github.com/simforge/simforge/api"
	"github.com/simforge/simforge/api/handlers"
	"github.com/simforge/simforge/chain"
	"github.com/simforge/simforge/cmd/exitcodes"
	"github.com/simforge/simforge/config"
	"github.com/simforge/simforge/execution"
	"github.com/simforge/simforge/logging"
	"github.com/simforge/simforge/node"
	"github.com/simforge/simforge/simulation"
	"github.com/simforge/simforge/storage"
	"github.com/simforge/simforge/utils"
)

// logBufferCapacity describes how many recent log entries are retained for streaming over the logs websocket.
const logBufferCapacity = 1000

// serveCmd represents the command provider for serving the simulation API
var serveCmd = &cobra.Command{
	Use:               "serve",
	Short:             "Starts the simulation API server",
	Long:              `Starts the simulation API server`,
	Args:              cmdValidateServeArgs,
	ValidArgsFunction: cmdValidServeArgs,
	RunE:              cmdRunServe,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	// Add all the flags allowed for the serve command
	err := addServeFlags()
	if err != nil {
		cmdLogger.Panic("Failed to initialize the serve command", err)
	}

	// Add the serve command and its associated flags to the root command
	rootCmd.AddCommand(serveCmd)
}

// cmdValidServeArgs will return which flags and sub-commands are valid for dynamic completion for the serve command
func cmdValidServeArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	// Gather a list of flags that are available to be used in the current command but have not been used yet
	var unusedFlags []string

	// Examine all the flags, and add any flags that have not been set in the current command line
	// to a list of unused flags
	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		if !flag.Changed {
			// When adding a flag to a command, include the "--" prefix to indicate that it is a flag
			// and not a positional argument.
			unusedFlags = append(unusedFlags, "--"+flag.Name)
		}
	})
	// Provide a list of flags that can be used in the current command (but have not been used yet)
	// for autocompletion suggestions
	return unusedFlags, cobra.ShellCompDirectiveNoFileComp
}

// cmdValidateServeArgs makes sure that there are no positional arguments provided to the serve command
func cmdValidateServeArgs(cmd *cobra.Command, args []string) error {
	// Make sure we have no positional args
	if err := cobra.NoArgs(cmd, args); err != nil {
		err = fmt.Errorf("serve does not accept any positional arguments, only flags and their associated values")
		cmdLogger.Error("Failed to validate args to the serve command", err)
		return err
	}
	return nil
}

// cmdRunServe executes the CLI serve command: it reads the project configuration, launches the supervised node,
// wires the simulation service together, and runs the API server until interrupted.
func cmdRunServe(cmd *cobra.Command, args []string) error {
	var projectConfig *config.ProjectConfig

	// Check to see if --config flag was used and store the value of --config flag
	configFlagUsed := cmd.Flags().Changed("config")
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		cmdLogger.Error("Failed to run the serve command", err)
		return err
	}

	// If --config was not used, look for `simforge.json` in the current work directory
	if !configFlagUsed {
		workingDirectory, err := os.Getwd()
		if err != nil {
			cmdLogger.Error("Failed to run the serve command", err)
			return err
		}
		configPath = filepath.Join(workingDirectory, DefaultProjectConfigFilename)
	}

	// Check to see if the file exists at configPath
	_, existenceError := os.Stat(configPath)

	// Possibility #1: File was found
	if existenceError == nil {
		// Try to read the configuration file and throw an error if something goes wrong
		cmdLogger.Info("Reading the configuration file at: ", configPath)
		projectConfig, err = config.ReadProjectConfigFromFile(configPath)
		if err != nil {
			cmdLogger.Error("Failed to run the serve command", err)
			return err
		}
	}

	// Possibility #2: If the --config flag was used, and we couldn't find the file, we'll throw an error
	if configFlagUsed && existenceError != nil {
		err = fmt.Errorf("the config file at %s could not be found", configPath)
		cmdLogger.Error("Failed to run the serve command", err)
		return err
	}

	// Possibility #3: --config flag was not used and simforge.json was not found, so use the default config
	if !configFlagUsed && existenceError != nil {
		cmdLogger.Warn("Unable to find the config file at ", configPath, ", will use the default project configuration")
		projectConfig = config.GetDefaultProjectConfig()
	}

	// Update the project configuration given whatever flags were set using the CLI
	err = updateProjectConfigWithServeFlags(cmd, projectConfig)
	if err != nil {
		cmdLogger.Error("Failed to run the serve command", err)
		return err
	}

	// Validate the project configuration
	if err = projectConfig.Validate(); err != nil {
		cmdLogger.Error("Failed to run the serve command", err)
		return err
	}

	// Configure the global logger: console output, a circular buffer for the logs websocket, and optionally a
	// log file.
	logBuffer := logging.NewLogBufferWriter(logBufferCapacity)
	logging.GlobalLogger = logging.NewLogger(projectConfig.Logging.Level, true)
	logging.GlobalLogger.AddWriter(logBuffer, logging.STRUCTURED)
	if projectConfig.Logging.LogDirectory != "" {
		logFile, err := utils.CreateFile(projectConfig.Logging.LogDirectory, "simforge.log")
		if err != nil {
			cmdLogger.Error("Failed to run the serve command", err)
			return err
		}
		defer logFile.Close()
		logging.GlobalLogger.AddWriter(logFile, logging.UNSTRUCTURED)
	}

	// Run the server until interrupted; SIGINT/SIGTERM cancel the context and trigger the shutdown path.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Launch the supervised node process. The service must not accept requests without a running node.
	supervisor := node.NewSupervisor(projectConfig.Node, logging.GlobalLogger)
	if err = supervisor.Start(ctx); err != nil {
		cmdLogger.Error("Failed to start the node process", err)
		if errors.Is(err, node.ErrBinaryNotFound) {
			return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeNodeError)
		}
		return err
	}

	// The node is torn down unconditionally when the serve command returns, whatever path got us there.
	defer func() {
		if stopErr := supervisor.Stop(); stopErr != nil {
			cmdLogger.Error("Failed to stop the node process", stopErr)
		}
	}()

	// Wire the service together: one executor, a cast-backed chain client, the simulator, and the analyzer.
	executor := execution.NewExecutor(logging.GlobalLogger)
	privateKey := projectConfig.ResolvePrivateKey()
	castClient := chain.NewCastClient(projectConfig.Chain, privateKey, supervisor.Endpoint(), executor, logging.GlobalLogger)
	simulator := simulation.NewSimulator(privateKey, castClient, logging.GlobalLogger)
	analyzer := analysis.NewAnalyzer(projectConfig.Analysis, executor, logging.GlobalLogger)

	// Open the simulation history store, if one is configured.
	var store *storage.Store
	if projectConfig.Storage.DatabaseDirectory != "" {
		store, err = storage.NewStore(projectConfig.Storage.DatabaseDirectory, logging.GlobalLogger)
		if err != nil {
			cmdLogger.Error("Failed to open the simulation history store", err)
			return err
		}
		defer store.Close()
	}

	// Run the API server until the context is cancelled.
	services := &handlers.Services{
		Simulator:    simulator,
		Analyzer:     analyzer,
		Store:        store,
		Node:         supervisor,
		LogBuffer:    logBuffer,
		ToolVersions: probeToolVersions(projectConfig),
		Logger:       logging.GlobalLogger.NewSubLogger("module", "api"),
	}
	if err = api.Start(ctx, projectConfig.Server, services, logging.GlobalLogger); err != nil {
		cmdLogger.Error("The API server terminated abnormally", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeServerError)
	}

	return nil
}

// probeToolVersions probes the versions of the external tools the service depends on, keyed by binary name. A
// tool whose version cannot be determined is reported as "unknown".
func probeToolVersions(projectConfig *config.ProjectConfig) map[string]string {
	binaries := []string{projectConfig.Node.Binary, projectConfig.Chain.Binary, projectConfig.Analysis.Binary}
	versions := make(map[string]string, len(binaries))
	for _, binary := range binaries {
		toolVersion, err := chain.GetToolVersion(binary)
		if err != nil {
			cmdLogger.Warn("Could not determine the version of ", binary)
			versions[binary] = "unknown"
			continue
		}
		versions[binary] = toolVersion.String()
	}
	return versions
}
