//go:build linux

package platform

import (
	"fmt"

	"github.com/1broseidon/wlshell/internal/x11"
)

// LinuxHost wraps an X11 connection behind the Host interface.
type LinuxHost struct {
	conn *x11.Connection
}

var _ Host = (*LinuxHost)(nil)

// OpenHost connects to the X server named by display, or $DISPLAY when
// empty.
func OpenHost(display string) (Host, error) {
	conn, err := x11.NewConnection(display)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &LinuxHost{conn: conn}, nil
}

// Close closes the underlying X11 connection.
func (b *LinuxHost) Close() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// Displays returns all active displays, left to right, with the edges
// docks reserve on each.
func (b *LinuxHost) Displays() ([]Display, error) {
	monitors, err := b.conn.GetMonitors()
	if err != nil {
		return nil, err
	}

	displays := make([]Display, 0, len(monitors))
	for _, m := range monitors {
		d := displayFromMonitor(m)
		// Struts are best effort: a host without EWMH has none.
		if struts, err := b.conn.DockStruts(m); err == nil {
			d.Reserved = Insets(struts)
		}
		displays = append(displays, d)
	}
	return displays, nil
}

// Pointer returns the pointer position in root coordinates.
func (b *LinuxHost) Pointer() (int, int, error) {
	return b.conn.Pointer()
}

func displayFromMonitor(m x11.Monitor) Display {
	return Display{ID: m.ID, Name: m.Name, Bounds: m.Bounds}
}
