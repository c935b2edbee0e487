package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/gitpulse/gitpulse/internal/domain"
	"github.com/gitpulse/gitpulse/internal/gateway"
	"github.com/gitpulse/gitpulse/internal/usecase"
)

const inputDateLayout = "2006/01/02"

// newLogger wires the verbose flag into a logger: discarded by
// default, standard error when --verbose is set.
func newLogger(cmd *cobra.Command) *log.Logger {
	verbose, _ := cmd.InheritedFlags().GetBool("verbose")
	logger := log.New(io.Discard, "", log.LstdFlags)
	if verbose {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

// newAggregator builds the gateway and aggregator from the
// GITHUB_TOKEN environment variable, exiting on a missing token.
func newAggregator(logger *log.Logger) *usecase.Aggregator {
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		fmt.Fprintln(os.Stderr, "Error: GITHUB_TOKEN environment variable is not set.")
		os.Exit(1)
	}
	githubGateway, err := gateway.NewGitHubGateway(token, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create GitHub gateway: %v\n", err)
		os.Exit(1)
	}
	return usecase.NewAggregator(githubGateway, logger)
}

// windowFromFlags parses the --from/--to flags (YYYY/MM/DD) into a
// date window, exiting on malformed input.
func windowFromFlags(cmd *cobra.Command) domain.DateRange {
	fromStr, _ := cmd.Flags().GetString("from")
	toStr, _ := cmd.Flags().GetString("to")

	var window domain.DateRange
	if fromStr != "" {
		fromTime, err := time.Parse(inputDateLayout, fromStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid --from date format. Please use YYYY/MM/DD. Error: %v\n", err)
			os.Exit(1)
		}
		window.Since = &fromTime
	}
	if toStr != "" {
		toTime, err := time.Parse(inputDateLayout, toStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid --to date format. Please use YYYY/MM/DD. Error: %v\n", err)
			os.Exit(1)
		}
		window.Until = &toTime
	}
	return window
}

// exitRateLimited reports the rate-limit notice and stops. The notice
// is surfaced verbatim; no retry is attempted.
func exitRateLimited(rl domain.RateLimit) {
	fmt.Fprintln(os.Stderr, rl.Message())
	os.Exit(1)
}
