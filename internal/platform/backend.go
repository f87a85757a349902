// Package platform abstracts the host window system wlshell can mirror its
// outputs from.
package platform

import (
	"errors"

	"github.com/1broseidon/wlshell/internal/geom"
)

// ErrUnsupported is returned by OpenHost on platforms without a host
// backend.
var ErrUnsupported = errors.New("no host display backend on this platform")

// Insets is the space reserved along each edge of a display.
type Insets struct {
	Left   int
	Right  int
	Top    int
	Bottom int
}

// Display is a host monitor in root coordinates and the edges its docks
// reserve.
type Display struct {
	ID       int
	Name     string
	Bounds   geom.Rectangle
	Reserved Insets
}

// Usable returns the bounds minus the reserved edges, never smaller than
// 1x1.
func (d Display) Usable() geom.Rectangle {
	in := d.Reserved
	return geom.Rect(
		d.Bounds.Loc.X+in.Left,
		d.Bounds.Loc.Y+in.Top,
		max(d.Bounds.Size.W-in.Left-in.Right, 1),
		max(d.Bounds.Size.H-in.Top-in.Bottom, 1),
	)
}

// Host reports the displays and pointer of the host window system.
type Host interface {
	Displays() ([]Display, error)
	Pointer() (x, y int, err error)
	Close()
}
