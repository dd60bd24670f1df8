package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	os.Exit(run(newRootCmd()))
}

// run executes root and returns the process exit code. Once a subcommand
// has started, logrus writes to the log file, so errors are also printed to
// the command's stderr for the operator.
func run(root *cobra.Command) int {
	if err := root.Execute(); err != nil {
		logrus.WithError(err).Error("rideconnect exited with an error")
		root.PrintErrln("Error:", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "rideconnect",
		Short:         "PU RideConnect university transport service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newBootstrapAdminCmd(),
		newWhitelistCmd(),
	)
	return root
}
