package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gitpulse/gitpulse/internal/chart"
	"github.com/gitpulse/gitpulse/internal/metrics"
)

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Exports the cumulative commit timeline as an HTML chart",
	Long: `Fetches the commit history of the given repositories and writes the
cumulative timeline as a standalone HTML chart page, the export
equivalent of the dashboard's image download.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		logger := newLogger(cmd)
		repos, _ := cmd.Flags().GetStringSlice("repo")
		window := windowFromFlags(cmd)
		output, _ := cmd.Flags().GetString("output")
		aggregator := newAggregator(logger)

		outcome, err := aggregator.FetchCommits(ctx, repos, window)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to fetch commits: %v\n", err)
			os.Exit(1)
		}
		if !outcome.Ok() {
			exitRateLimited(*outcome.RateLimit)
		}

		f, err := os.Create(output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create %s: %v\n", output, err)
			os.Exit(1)
		}
		defer f.Close()

		title := fmt.Sprintf("Commit timeline: %s", strings.Join(repos, ", "))
		if err := chart.Render(f, metrics.Timeline(outcome.Data), title); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render chart: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Chart written to %s\n", output)
	},
}

func init() {
	rootCmd.AddCommand(chartCmd)
	chartCmd.PersistentFlags().StringSliceP("repo", "r", nil, "Repository full name (owner/name), repeatable (required)")
	chartCmd.MarkPersistentFlagRequired("repo")
	chartCmd.Flags().String("from", "", "Start date for the window (YYYY/MM/DD)")
	chartCmd.Flags().String("to", "", "End date for the window (YYYY/MM/DD)")
	chartCmd.Flags().StringP("output", "o", "timeline.html", "Output HTML file path")
}
