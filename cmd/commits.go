package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/gitpulse/gitpulse/internal/domain"
	"github.com/gitpulse/gitpulse/internal/metrics"
)

// commitsReport is the JSON document the commits command prints: the
// merged commit list plus everything derived from it.
type commitsReport struct {
	Commits  []domain.Commit     `json:"commits"`
	Timeline []domain.ChartPoint `json:"timeline"`
	Velocity domain.Velocity     `json:"velocity"`
}

var commitsCmd = &cobra.Command{
	Use:   "commits",
	Short: "Fetches merged commit history and derived metrics as JSON",
	Long: `Fetches the complete commit history of the given repositories within
an optional date window, merges it newest-first, and outputs the
commits together with the cumulative timeline and velocity metrics in
JSON format.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		logger := newLogger(cmd)
		repos, _ := cmd.Flags().GetStringSlice("repo")
		window := windowFromFlags(cmd)
		aggregator := newAggregator(logger)

		outcome, err := aggregator.FetchCommits(ctx, repos, window)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to fetch commits: %v\n", err)
			os.Exit(1)
		}
		if !outcome.Ok() {
			exitRateLimited(*outcome.RateLimit)
		}

		velocity := metrics.ComputeVelocity(outcome.Data, window, time.Now())
		report := commitsReport{
			Commits:  outcome.Data,
			Timeline: metrics.Timeline(outcome.Data),
			Velocity: velocity,
		}

		if verbose, _ := cmd.InheritedFlags().GetBool("verbose"); verbose {
			printVelocitySummary(velocity)
		}

		jsonData, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to marshal results to JSON: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(jsonData))
	},
}

// printVelocitySummary writes a colorized one-glance summary to
// standard error, keeping stdout pure JSON.
func printVelocitySummary(v domain.Velocity) {
	fmt.Fprintf(os.Stderr, "Total commits: %d\n", v.TotalCommits)
	fmt.Fprintf(os.Stderr, "Weekly rate:   %.1f commits/week\n", v.WeeklyRate)
	fmt.Fprintf(os.Stderr, "Monthly rate:  %.1f commits/month\n", v.MonthlyRate)
	fmt.Fprintf(os.Stderr, "Growth:        %s\n", formatGrowth(v.GrowthPct))
}

func formatGrowth(growth *float64) string {
	if growth == nil {
		return "N/A (no previous data)"
	}
	switch {
	case *growth > 0:
		return color.GreenString("+%.1f%%", *growth)
	case *growth < 0:
		return color.RedString("%.1f%%", *growth)
	default:
		return "0.0% (same as previous period)"
	}
}

func init() {
	rootCmd.AddCommand(commitsCmd)
	commitsCmd.PersistentFlags().StringSliceP("repo", "r", nil, "Repository full name (owner/name), repeatable (required)")
	commitsCmd.MarkPersistentFlagRequired("repo")
	commitsCmd.Flags().String("from", "", "Start date for the window (YYYY/MM/DD)")
	commitsCmd.Flags().String("to", "", "End date for the window (YYYY/MM/DD)")
}
