package main

import (
	"fmt"
	"os"

	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/repl"
	"github.com/spf13/cobra"
)

func replCMD(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactive search prompt (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL(cmd, *cfgPath)
		},
	}
}

func runREPL(cmd *cobra.Command, cfgPath string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, repl.Banner)

	cfg, err := loadConfig(cfgPath, os.Stderr)
	if err != nil {
		return err
	}
	a, err := bootstrap(cmd.Context(), cfg, false)
	if err != nil {
		return err
	}
	defer a.Close()
	repl.PrintLoaded(out, a.loaded.Elapsed, len(a.loaded.Documents))

	settings, err := repl.LoadSettings(cfg.REPL.SettingsFile, repl.Settings{
		SearchMode: cfg.Search.DefaultMode,
		Highlight:  cfg.Search.Highlight,
		HLMode:     cfg.Search.HighlightStyle,
	})
	if err != nil {
		fmt.Fprintf(out, "Ignoring settings file: %v\n", err)
	}

	r := repl.New(a.svc, settings, out, repl.Options{
		Prompt:       cfg.REPL.Prompt,
		SettingsFile: cfg.REPL.SettingsFile,
		Aggregator:   a.aggregator,
	})
	return r.Run(cmd.Context(), cmd.InOrStdin())
}
