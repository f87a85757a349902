package main

import (
	"github.com/spf13/cobra"

	"github.com/1broseidon/wlshell/internal/tui"
)

func newTopCmd(g *globalFlags) *cobra.Command {
	var refresh = tui.DefaultRefresh
	cmd := &cobra.Command{
		Use:   "top",
		Short: "Live view of outputs and windows",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return tui.Run(g.client(), refresh)
		},
	}
	cmd.Flags().DurationVar(&refresh, "refresh", tui.DefaultRefresh, "poll interval")
	return cmd
}
