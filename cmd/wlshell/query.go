package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/1broseidon/wlshell/internal/ipc"
)

func newStatusCmd(g *globalFlags) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			status, err := g.client().GetStatus()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, status)
			}
			fmt.Fprintf(out, "daemon_running:   %v\n", status.DaemonRunning)
			fmt.Fprintf(out, "outputs:          %d\n", status.Outputs)
			fmt.Fprintf(out, "windows:          %d\n", status.Windows)
			fmt.Fprintf(out, "fullscreen:       %d\n", status.Fullscreen)
			fmt.Fprintf(out, "placed_windows:   %d\n", status.PlacedWindows)
			fmt.Fprintf(out, "pending_blockers: %d\n", status.PendingBlockers)
			fmt.Fprintf(out, "uptime_seconds:   %d\n", status.UptimeSeconds)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newOutputsCmd(g *globalFlags) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "outputs",
		Short: "List outputs with geometry, usable area and layer surfaces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := g.client().GetOutputs()
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), data)
			}
			printOutputs(cmd.OutOrStdout(), data.Outputs)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newWindowsCmd(g *globalFlags) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "windows",
		Short: "List mapped windows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := g.client().GetWindows()
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), data)
			}
			printWindows(cmd.OutOrStdout(), data.Windows)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newFixupCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "fixup",
		Short: "Re-place windows stranded outside every usable area",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := g.client().Fixup()
			if err != nil {
				return err
			}
			ids := make([]string, len(data.Moved))
			for i, id := range data.Moved {
				ids[i] = strconv.FormatUint(uint64(id), 10)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "moved %d windows", len(ids))
			if len(ids) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), ": %s", strings.Join(ids, ", "))
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}
}

func newMapWindowCmd(g *globalFlags) *cobra.Command {
	var (
		p        ipc.MapWindowPayload
		size     string
		pointerX float64
		pointerY float64
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "map-window",
		Short: "Map a test window and report where it was placed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sz, err := parseSize(size)
			if err != nil {
				return fmt.Errorf("--size: %w", err)
			}
			p.Width, p.Height = sz.W, sz.H
			if cmd.Flags().Changed("pointer-x") {
				p.PointerX = &pointerX
			}
			if cmd.Flags().Changed("pointer-y") {
				p.PointerY = &pointerY
			}

			w, err := g.client().MapWindow(p)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), w)
			}
			printWindows(cmd.OutOrStdout(), []ipc.WindowInfo{*w})
			return nil
		},
	}
	cmd.Flags().StringVar(&p.Title, "title", "", "window title")
	cmd.Flags().StringVar(&size, "size", "800x600", "buffer size as WIDTHxHEIGHT")
	cmd.Flags().Float64Var(&pointerX, "pointer-x", 0, "move the pointer to this x first")
	cmd.Flags().Float64Var(&pointerY, "pointer-y", 0, "move the pointer to this y first")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newCloseWindowCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "close-window <id>",
		Short: "Destroy a window by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid window id %q", args[0])
			}
			if err := g.client().CloseWindow(uint32(id)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "closed window %d\n", id)
			return nil
		},
	}
}

func newReloadCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Ask the daemon to re-read its config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := g.client().Reload(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "config reloaded")
			return nil
		},
	}
}

var headerCell = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var bodyCell = lipgloss.NewStyle().Padding(0, 1)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerCell
			}
			return bodyCell
		})
}

func fmtRect(r ipc.Rect) string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.X, r.Y)
}

func printOutputs(w io.Writer, outputs []ipc.OutputInfo) {
	t := newTable("NAME", "GEOMETRY", "USABLE", "LAYERS")
	for _, o := range outputs {
		layers := make([]string, len(o.Layers))
		for i, l := range o.Layers {
			layers[i] = l.Namespace + "@" + l.Layer
		}
		t.Row(o.Name, fmtRect(o.Geometry), fmtRect(o.Usable), strings.Join(layers, ", "))
	}
	fmt.Fprintln(w, t.Render())
}

func printWindows(w io.Writer, windows []ipc.WindowInfo) {
	t := newTable("ID", "TITLE", "GEOMETRY", "ORDINAL", "ACTIVE", "OUTPUTS")
	for _, win := range windows {
		active := ""
		if win.Activated {
			active = "yes"
		}
		t.Row(
			strconv.FormatUint(uint64(win.ID), 10),
			win.Title,
			fmtRect(win.Geometry),
			strconv.Itoa(win.Ordinal),
			active,
			strings.Join(win.Outputs, ", "),
		)
	}
	fmt.Fprintln(w, t.Render())
}
