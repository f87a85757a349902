// Package tui is the interactive terminal front end: a live view of the
// daemon's outputs and windows, and the config wizard.
package tui

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/1broseidon/wlshell/internal/ipc"
)

// DefaultRefresh is how often the live view polls the daemon.
const DefaultRefresh = time.Second

// Source is what the live view polls.
type Source interface {
	GetStatus() (*ipc.StatusData, error)
	GetOutputs() (*ipc.OutputsData, error)
	GetWindows() (*ipc.WindowsData, error)
	Fixup() (*ipc.FixupData, error)
}

var _ Source = (*ipc.Client)(nil)

// Run shows the live view until the user quits.
func Run(src Source, refresh time.Duration) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tui requires an interactive terminal (stdin/stdout must be TTYs)")
	}
	if refresh <= 0 {
		refresh = DefaultRefresh
	}

	_, err := tea.NewProgram(newModel(src, refresh), tea.WithAltScreen()).Run()
	return err
}
