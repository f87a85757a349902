package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/1broseidon/wlshell/internal/ipc"
)

func newHotplugCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hotplug",
		Short: "Add, resize or remove outputs on the running daemon",
	}
	cmd.AddCommand(newHotplugAddCmd(g), newHotplugRemoveCmd(g))
	return cmd
}

func newHotplugAddCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name> <WIDTHxHEIGHT>",
		Short: "Plug in an output, or resize an existing one",
		Long: `Plug in an output. If an output with the same name exists it is resized
instead. Outputs are lined up left to right and windows that no longer
overlap a usable area are re-placed.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			size, err := parseSize(args[1])
			if err != nil {
				return err
			}
			o, err := g.client().AddOutput(ipc.AddOutputPayload{
				Name:   args[0],
				Width:  size.W,
				Height: size.H,
			})
			if err != nil {
				return err
			}
			printOutputs(cmd.OutOrStdout(), []ipc.OutputInfo{*o})
			return nil
		},
	}
}

func newHotplugRemoveCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <name>",
		Aliases: []string{"rm"},
		Short:   "Unplug an output",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := g.client().RemoveOutput(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed output %s\n", args[0])
			return nil
		},
	}
}
