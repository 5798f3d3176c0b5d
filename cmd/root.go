package cmd

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/simforge/simforge/logging"
)

var rootCmd = &cobra.Command{
	Use:   "simforge",
	Short: "A contract simulation service backed by an ephemeral chain node",
	Long: "simforge exposes an HTTP API that deploys compiled smart-contract bytecode against a supervised " +
		"ephemeral chain node, drives an ordered sequence of transactions against it, and reports the outcome " +
		"of each one. It also relays static analysis results for submitted contract source.",
}

// cmdLogger is the logger instance used to output information, warnings and errors from the command layer. It is
// console-enabled from the start so failures before the global logger is configured still reach the operator.
var cmdLogger = logging.NewLogger(zerolog.InfoLevel, true).NewSubLogger("module", "cmd")

func Execute() error {
	return rootCmd.Execute()
}
