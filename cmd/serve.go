package cmd

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/gitpulse/gitpulse/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Runs the dashboard HTTP API",
	Long: `Serves the aggregation, metrics, and share operations as a JSON HTTP
API for the dashboard front end, plus an HTML chart page under
/dashboard.`,
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger(cmd)
		addr, _ := cmd.Flags().GetString("addr")
		aggregator := newAggregator(logger)

		srv := &http.Server{
			Addr:              addr,
			Handler:           server.New(aggregator, logger).Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		fmt.Fprintf(os.Stderr, "Listening on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil {
			fmt.Fprintf(os.Stderr, "Server stopped: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Listen address")
}
