// Package commands defines the cashplan CLI.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pwielgus/cashplan/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "cashplan",
		Short:   "Household cash-flow planner and envelope budgeter",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", "", "path to config.toml")

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newSeedCommand())

	return rootCmd
}
