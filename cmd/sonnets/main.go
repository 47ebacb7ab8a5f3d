package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCMD().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCMD() *cobra.Command {
	var cfgPath string
	root := &cobra.Command{
		Use:           "sonnets",
		Short:         "Search Shakespeare's sonnets",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL(cmd, cfgPath)
		},
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (defaults plus SS_* env when empty)")

	root.AddCommand(replCMD(&cfgPath), searchCMD(&cfgPath), serveCMD(&cfgPath), loadtestCMD())
	return root
}
