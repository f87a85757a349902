package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/1broseidon/wlshell/internal/geom"
	"github.com/1broseidon/wlshell/internal/placement"
)

// parseSize parses WIDTHxHEIGHT.
func parseSize(s string) (geom.Size, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return geom.Size{}, fmt.Errorf("invalid size %q (want WIDTHxHEIGHT)", s)
	}
	width, err := strconv.Atoi(w)
	if err != nil {
		return geom.Size{}, fmt.Errorf("invalid width in %q", s)
	}
	height, err := strconv.Atoi(h)
	if err != nil {
		return geom.Size{}, fmt.Errorf("invalid height in %q", s)
	}
	if width <= 0 || height <= 0 {
		return geom.Size{}, fmt.Errorf("size %q must be positive", s)
	}
	return geom.Sz(width, height), nil
}

// placedWindow is one row of the placement preview.
type placedWindow struct {
	ordinal  int
	cell     placement.Cell
	point    geom.Point
	location geom.Point
}

// previewPlacement runs the spiral for count windows of one size on an
// output whose top and bottom edges are reserved.
func previewPlacement(output, window geom.Size, top, bottom, count int) []placedWindow {
	area := geom.Rect(0, top, output.W, max(output.H-top-bottom, 1))
	bbox := geom.FromSize(window)

	rows := make([]placedWindow, 0, count)
	for ordinal := 1; ordinal <= count; ordinal++ {
		cell := placement.CellFor(ordinal)
		p := placement.GridPoint(area, cell)
		rows = append(rows, placedWindow{
			ordinal:  ordinal,
			cell:     cell,
			point:    p,
			location: placement.Location(p, bbox),
		})
	}
	return rows
}

func newPlaceCmd() *cobra.Command {
	var (
		outputSize string
		windowSize string
		top        int
		bottom     int
		count      int
	)

	cmd := &cobra.Command{
		Use:   "place",
		Short: "Preview spiral placement offline",
		Long: `Print where the daemon would put the first N windows of one size on a
single output, without talking to the daemon. --top and --bottom reserve
edges the way an exclusive panel does.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			output, err := parseSize(outputSize)
			if err != nil {
				return fmt.Errorf("--output: %w", err)
			}
			window, err := parseSize(windowSize)
			if err != nil {
				return fmt.Errorf("--window: %w", err)
			}
			if count < 1 {
				return fmt.Errorf("--count must be at least 1")
			}
			if top < 0 || bottom < 0 {
				return fmt.Errorf("reserved edges must not be negative")
			}
			printPlacement(cmd.OutOrStdout(), previewPlacement(output, window, top, bottom, count))
			return nil
		},
	}

	cmd.Flags().StringVar(&outputSize, "output", "1920x1080", "output mode as WIDTHxHEIGHT")
	cmd.Flags().StringVar(&windowSize, "window", "800x600", "window size as WIDTHxHEIGHT")
	cmd.Flags().IntVar(&top, "top", 0, "pixels reserved at the top edge")
	cmd.Flags().IntVar(&bottom, "bottom", 0, "pixels reserved at the bottom edge")
	cmd.Flags().IntVarP(&count, "count", "n", 9, "number of windows")
	return cmd
}

func printPlacement(w io.Writer, rows []placedWindow) {
	t := newTable("ORDINAL", "GRID", "CELL", "CENTRE", "LOCATION")
	for _, r := range rows {
		t.Row(
			strconv.Itoa(r.ordinal),
			fmt.Sprintf("%dx%d", r.cell.Grid, r.cell.Grid),
			r.cell.Offset.String(),
			r.point.String(),
			r.location.String(),
		)
	}
	fmt.Fprintln(w, t.Render())
}
