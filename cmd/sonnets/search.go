package main

import (
	"os"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/searcher/highlight"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/searcher/render"
	"github.com/spf13/cobra"
)

func searchCMD(cfgPath *string) *cobra.Command {
	var mode, style string
	search := &cobra.Command{
		Use:   "search [words...]",
		Short: "Run one query and print the results",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgPath, os.Stderr)
			if err != nil {
				return err
			}
			if mode == "" {
				mode = cfg.Search.DefaultMode
			}
			if !cmd.Flags().Changed("highlight") && cfg.Search.Highlight {
				style = cfg.Search.HighlightStyle
			}
			hl, err := highlight.ParseStyle(style)
			if err != nil {
				return err
			}

			a, err := bootstrap(cmd.Context(), cfg, false)
			if err != nil {
				return err
			}
			defer a.Close()

			query := strings.Join(args, " ")
			resp, err := a.svc.Search(cmd.Context(), query, mode, "cli")
			if err != nil {
				return err
			}
			return render.Results(cmd.OutOrStdout(), query, resp.Results, resp.Total, resp.Elapsed, hl)
		},
	}
	search.Flags().StringVarP(&mode, "mode", "m", "", "AND or OR (default from config)")
	search.Flags().StringVar(&style, "highlight", "", "highlight style: OFF, DEFAULT or GREEN")
	return search
}
