package main

import (
	"fmt"
	"time"

	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/loadtest"
	"github.com/spf13/cobra"
)

func loadtestCMD() *cobra.Command {
	var cfg loadtest.Config
	cmd := &cobra.Command{
		Use:   "loadtest",
		Short: "Drive concurrent queries against a running serve instance",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "=== Sonnet Search Load Test ===")
			fmt.Fprintf(out, "Target:      %s\n", cfg.BaseURL)
			fmt.Fprintf(out, "Concurrency: %d\n", cfg.Concurrency)
			fmt.Fprintf(out, "Duration:    %s\n\n", cfg.Duration)

			stats, err := loadtest.Run(cmd.Context(), cfg)
			loadtest.Report(out, stats, cfg.Duration)
			return err
		},
	}
	cmd.Flags().StringVar(&cfg.BaseURL, "url", "http://localhost:8080", "base URL of the search API")
	cmd.Flags().IntVar(&cfg.Concurrency, "concurrency", 10, "number of concurrent workers")
	cmd.Flags().DurationVar(&cfg.Duration, "duration", 30*time.Second, "test duration")
	cmd.Flags().StringSliceVar(&cfg.Queries, "query", nil, "queries to rotate through (repeatable)")
	return cmd
}
