// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gitpulse",
	Short: "A commit timeline and velocity tracker for GitHub repositories.",
	Long: `gitpulse fetches complete commit history for a set of GitHub
repositories within an optional date window and derives a cumulative
commit timeline plus velocity metrics (weekly/monthly rate, growth).
Results can be printed as JSON, exported as an HTML chart, or packed
into a stateless shareable token.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
}
