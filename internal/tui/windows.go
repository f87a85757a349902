package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/wlshell/internal/ipc"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorText)
	activeRowStyle = lipgloss.NewStyle().Bold(true).Foreground(colorBright)
	rowStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
)

// windowColumns are the table headers of the windows tab.
var windowColumns = []string{"ID", "TITLE", "GEOMETRY", "ORD", "OUTPUTS"}

// windowRows formats windows as table cells.
func windowRows(windows []ipc.WindowInfo) [][]string {
	rows := make([][]string, 0, len(windows))
	for _, w := range windows {
		g := w.Geometry
		id := fmt.Sprint(w.ID)
		if w.Activated {
			id += "*"
		}
		rows = append(rows, []string{
			id,
			w.Title,
			fmt.Sprintf("%dx%d+%d+%d", g.Width, g.Height, g.X, g.Y),
			fmt.Sprint(w.Ordinal),
			strings.Join(w.Outputs, ","),
		})
	}
	return rows
}

// renderWindowTable renders the windows tab. The activated window is
// highlighted.
func renderWindowTable(windows []ipc.WindowInfo, width, height int) string {
	if len(windows) == 0 {
		return lipgloss.NewStyle().
			Width(width).
			Height(height).
			Foreground(colorMuted).
			Align(lipgloss.Center, lipgloss.Center).
			Render("No windows mapped")
	}

	rows := windowRows(windows)
	widths := make([]int, len(windowColumns))
	for i, h := range windowColumns {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	cell := func(text string, col int) string {
		return lipgloss.NewStyle().Width(widths[col] + 2).Render(text)
	}
	line := func(cells []string) string {
		parts := make([]string, len(cells))
		for i, c := range cells {
			parts[i] = cell(c, i)
		}
		return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	}

	lines := []string{headerStyle.Render(line(windowColumns))}
	for i, row := range rows {
		if len(lines) >= height {
			break
		}
		style := rowStyle
		if windows[i].Activated {
			style = activeRowStyle
		}
		lines = append(lines, style.Render(line(row)))
	}

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		PaddingLeft(1).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
