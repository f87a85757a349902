package shell

import (
	"github.com/1broseidon/wlshell/internal/desktop"
	"github.com/1broseidon/wlshell/internal/geom"
)

// CursorKind selects how the pointer cursor is drawn.
type CursorKind int

const (
	CursorHidden CursorKind = iota
	CursorNamed
	CursorSurface
)

func (k CursorKind) String() string {
	switch k {
	case CursorHidden:
		return "hidden"
	case CursorNamed:
		return "named"
	case CursorSurface:
		return "surface"
	default:
		return "unknown"
	}
}

// CursorImageStatus is the image currently used for the pointer cursor.
type CursorImageStatus struct {
	Kind    CursorKind
	Name    string
	Surface desktop.Surface
}

// DefaultCursor is the themed default arrow.
func DefaultCursor() CursorImageStatus {
	return CursorImageStatus{Kind: CursorNamed, Name: "default"}
}

// NamedCursor is a themed cursor image.
func NamedCursor(name string) CursorImageStatus {
	return CursorImageStatus{Kind: CursorNamed, Name: name}
}

// SurfaceCursor is a cursor drawn by a client surface.
func SurfaceCursor(s desktop.Surface) CursorImageStatus {
	return CursorImageStatus{Kind: CursorSurface, Surface: s}
}

// HiddenCursor hides the pointer.
func HiddenCursor() CursorImageStatus {
	return CursorImageStatus{Kind: CursorHidden}
}

func (c CursorImageStatus) is(s desktop.Surface) bool {
	return c.Kind == CursorSurface && c.Surface != nil && c.Surface.ID() == s.ID()
}

// CursorImageAttributes is stored in a cursor surface's data map.
type CursorImageAttributes struct {
	// Hotspot is relative to the buffer origin.
	Hotspot geom.Point
}

// DndIcon is the surface following the pointer during drag and drop.
type DndIcon struct {
	Surface desktop.Surface
	Offset  geom.Point
}

// Cursor returns the current cursor image.
func (sh *Shell) Cursor() CursorImageStatus {
	return sh.cursor
}

// SetCursor changes the cursor image. A surface cursor gets default
// attributes if it has none.
func (sh *Shell) SetCursor(c CursorImageStatus) {
	if c.Kind == CursorSurface && c.Surface != nil {
		desktop.InsertIfMissing(c.Surface.Data(), func() *CursorImageAttributes {
			return &CursorImageAttributes{}
		})
	}
	sh.cursor = c
}

// CursorHotspot returns the hotspot of the current surface cursor.
func (sh *Shell) CursorHotspot() (geom.Point, bool) {
	if sh.cursor.Kind != CursorSurface || sh.cursor.Surface == nil {
		return geom.Point{}, false
	}
	attrs, ok := desktop.Get[CursorImageAttributes](sh.cursor.Surface.Data())
	if !ok {
		return geom.Point{}, false
	}
	return attrs.Hotspot, true
}

// DndIcon returns the active drag icon.
func (sh *Shell) DndIcon() (*DndIcon, bool) {
	return sh.dndIcon, sh.dndIcon != nil
}

// SetDndIcon starts following s as drag icon at the given offset.
func (sh *Shell) SetDndIcon(s desktop.Surface, offset geom.Point) {
	sh.dndIcon = &DndIcon{Surface: s, Offset: offset}
}

// ClearDndIcon ends the drag.
func (sh *Shell) ClearDndIcon() {
	sh.dndIcon = nil
}
