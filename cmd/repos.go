package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var reposCmd = &cobra.Command{
	Use:   "repos",
	Short: "Lists the authenticated user's repositories as JSON",
	Long: `Lists all repositories of the authenticated user, most recently
updated first, and outputs them in JSON format.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		logger := newLogger(cmd)
		aggregator := newAggregator(logger)

		outcome, err := aggregator.FetchRepositories(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to list repositories: %v\n", err)
			os.Exit(1)
		}
		if !outcome.Ok() {
			exitRateLimited(*outcome.RateLimit)
		}

		jsonData, err := json.MarshalIndent(outcome.Data, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to marshal results to JSON: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(jsonData))
	},
}

func init() {
	rootCmd.AddCommand(reposCmd)
}
