package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simforge/simforge/config"
)

// addServeFlags adds the various flags for the serve command
func addServeFlags() error {
	// Get the default project config
	defaultConfig := config.GetDefaultProjectConfig()

	// Prevent alphabetical sorting of usage message
	serveCmd.Flags().SortFlags = false

	// Config file
	serveCmd.Flags().String("config", "", "path to config file")

	// Server binding
	serveCmd.Flags().String("host", "",
		fmt.Sprintf("interface the API server listens on (unless a config file is provided, default is %q)", defaultConfig.Server.Host))
	serveCmd.Flags().Int("port", 0,
		fmt.Sprintf("port the API server listens on (unless a config file is provided, default is %d)", defaultConfig.Server.Port))

	// Node process
	serveCmd.Flags().Int("node-port", 0,
		fmt.Sprintf("port the supervised node's RPC endpoint binds to (unless a config file is provided, default is %d)", defaultConfig.Node.Port))
	serveCmd.Flags().String("hardfork", "",
		fmt.Sprintf("protocol version the ephemeral chain runs with (unless a config file is provided, default is %q)", defaultConfig.Node.Hardfork))

	// Signing credential
	serveCmd.Flags().String("private-key", "",
		fmt.Sprintf("signing credential used for deployments and calls (overrides the config file and the %s environment variable)", config.PrivateKeyEnvVariable))

	// History database
	serveCmd.Flags().String("database-dir", "",
		fmt.Sprintf("directory path for the simulation history database (unless a config file is provided, default is %q)", defaultConfig.Storage.DatabaseDirectory))

	// Log directory
	serveCmd.Flags().String("log-dir", "",
		fmt.Sprintf("directory path for log files (unless a config file is provided, default is %q)", defaultConfig.Logging.LogDirectory))

	return nil
}

// updateProjectConfigWithServeFlags will update the given projectConfig with any CLI arguments that were provided to
// the serve command
func updateProjectConfigWithServeFlags(cmd *cobra.Command, projectConfig *config.ProjectConfig) error {
	var err error

	// Update the server binding
	if cmd.Flags().Changed("host") {
		projectConfig.Server.Host, err = cmd.Flags().GetString("host")
		if err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("port") {
		projectConfig.Server.Port, err = cmd.Flags().GetInt("port")
		if err != nil {
			return err
		}
	}

	// Update the node process settings
	if cmd.Flags().Changed("node-port") {
		projectConfig.Node.Port, err = cmd.Flags().GetInt("node-port")
		if err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("hardfork") {
		projectConfig.Node.Hardfork, err = cmd.Flags().GetString("hardfork")
		if err != nil {
			return err
		}
	}

	// Update the signing credential
	if cmd.Flags().Changed("private-key") {
		projectConfig.Chain.PrivateKey, err = cmd.Flags().GetString("private-key")
		if err != nil {
			return err
		}
	}

	// Update the history database directory
	if cmd.Flags().Changed("database-dir") {
		projectConfig.Storage.DatabaseDirectory, err = cmd.Flags().GetString("database-dir")
		if err != nil {
			return err
		}
	}

	// Update the log directory
	if cmd.Flags().Changed("log-dir") {
		projectConfig.Logging.LogDirectory, err = cmd.Flags().GetString("log-dir")
		if err != nil {
			return err
		}
	}

	return nil
}
