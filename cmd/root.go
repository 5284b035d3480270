package cmd

import (
	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var (
	configPath string
	verbose    bool
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var rootCmd = &cobra.Command{
	Use:   "requpdate",
	Short: "Requirement-update engine for project dependencies",
	Long: `A CLI tool that parses a project's manifest and lock files,
determines out-of-date dependencies, and computes safe version upgrades
consistent with the declared constraint ranges.

The engine rewrites requirement strings while preserving their shape:
exact pins stay exact, wildcards keep their wildcard segments, and range
bounds are repaired at their original precision. Constraints that cannot
be rewritten without changing their intent are reported as unfixable.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if verbose {
			logger.SetLevel(logger.DebugLevel)
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

//nolint:gochecknoinits // required by cobra CLI pattern
func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: search standard locations)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
}
