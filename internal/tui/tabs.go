package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/wlshell/internal/ipc"
)

// Tab identifies a TUI tab.
type Tab int

const (
	TabOutputs Tab = iota
	TabWindows
	tabCount
)

func (t Tab) String() string {
	switch t {
	case TabOutputs:
		return "Outputs"
	case TabWindows:
		return "Windows"
	default:
		return "?"
	}
}

// Colours shared by the bars and the window table.
const (
	colorAccent = lipgloss.Color("62")
	colorBright = lipgloss.Color("15")
	colorText   = lipgloss.Color("250")
	colorMuted  = lipgloss.Color("241")
	colorBar    = lipgloss.Color("235")
	colorOK     = lipgloss.Color("42")
	colorNotice = lipgloss.Color("214")
)

var (
	tabStyle    = lipgloss.NewStyle().Padding(0, 2).Foreground(colorText).Background(lipgloss.Color("236"))
	activeTab   = tabStyle.Bold(true).Foreground(colorBright).Background(colorAccent)
	barStyle    = lipgloss.NewStyle().Padding(0, 1).MaxHeight(1)
	statusStyle = barStyle.Foreground(colorText).Background(colorBar)
)

// renderTabBar draws "1:Outputs 2:Windows" with the active tab highlighted,
// followed by a blank line.
func renderTabBar(active Tab, width int) string {
	cells := make([]string, 0, 2*int(tabCount))
	for t := Tab(0); t < tabCount; t++ {
		style := tabStyle
		if t == active {
			style = activeTab
		}
		if t > 0 {
			cells = append(cells, lipgloss.NewStyle().Background(colorBar).Render(" "))
		}
		cells = append(cells, style.Render(fmt.Sprintf("%d:%s", int(t)+1, t)))
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, cells...)
	return lipgloss.NewStyle().Width(width).MarginBottom(1).Render(row)
}

func renderStatusBar(connected bool, status ipc.StatusData, lastError string, width int) string {
	if !connected {
		text := lipgloss.NewStyle().Foreground(colorMuted).Render("●") + " daemon not running"
		if lastError != "" {
			text += "  " + lastError
		}
		return statusStyle.Width(width).Render(text)
	}

	parts := []string{
		lipgloss.NewStyle().Foreground(colorOK).Render("●") + " daemon connected",
		fmt.Sprintf("outputs:%d", status.Outputs),
		fmt.Sprintf("windows:%d", status.Windows),
	}
	if status.Fullscreen > 0 {
		parts = append(parts, fmt.Sprintf("fullscreen:%d", status.Fullscreen))
	}
	if status.PendingBlockers > 0 {
		parts = append(parts, fmt.Sprintf("blocked:%d", status.PendingBlockers))
	}
	parts = append(parts, fmt.Sprintf("up:%ds", status.UptimeSeconds))
	return statusStyle.Width(width).Render(strings.Join(parts, "  "))
}

const helpText = "tab/shift-tab: switch tabs  1-2: jump to tab  r: refresh  f: fixup  q/ctrl-c: quit"

// renderHelpBar shows the key help, or the result of the last action while
// one is pending.
func renderHelpBar(statusText string, width int) string {
	if statusText != "" {
		return barStyle.Width(width).Foreground(colorNotice).Render(statusText)
	}
	return barStyle.Width(width).Foreground(colorMuted).Render(helpText)
}
