package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gitpulse/gitpulse/internal/share"
)

var shareCmd = &cobra.Command{
	Use:   "share",
	Short: "Creates and resolves stateless share tokens",
}

var shareEncodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Fetches commit history and packs it into a share token",
	Long: `Fetches the commit history of the given repositories, stamps it with
the authenticated user's login, and prints a URL-safe token that
embeds the whole snapshot. The token is the storage; nothing is
persisted anywhere.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		logger := newLogger(cmd)
		repos, _ := cmd.Flags().GetStringSlice("repo")
		window := windowFromFlags(cmd)
		aggregator := newAggregator(logger)

		outcome, err := aggregator.FetchSnapshot(ctx, repos, window)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to build snapshot: %v\n", err)
			os.Exit(1)
		}
		if !outcome.Ok() {
			exitRateLimited(*outcome.RateLimit)
		}

		token, err := share.Encode(outcome.Data)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode share token: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(token)
	},
}

var shareDecodeCmd = &cobra.Command{
	Use:   "decode <token>",
	Short: "Unpacks a share token back into its snapshot JSON",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		snap, err := share.Decode(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to decode share token: %v\n", err)
			os.Exit(1)
		}
		jsonData, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to marshal snapshot to JSON: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(jsonData))
	},
}

func init() {
	rootCmd.AddCommand(shareCmd)
	shareCmd.AddCommand(shareEncodeCmd)
	shareCmd.AddCommand(shareDecodeCmd)
	shareEncodeCmd.Flags().StringSliceP("repo", "r", nil, "Repository full name (owner/name), repeatable (required)")
	shareEncodeCmd.MarkFlagRequired("repo")
	shareEncodeCmd.Flags().String("from", "", "Start date for the window (YYYY/MM/DD)")
	shareEncodeCmd.Flags().String("to", "", "End date for the window (YYYY/MM/DD)")
}
