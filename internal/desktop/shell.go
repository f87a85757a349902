package desktop

import "github.com/1broseidon/wlshell/internal/geom"

// Toplevel is the xdg-toplevel role object of a window.
type Toplevel interface {
	InitialConfigureSent() bool
	SendConfigure()
	// SetBounds sets the pending bounds hint sent with the next configure.
	SetBounds(size geom.Size)
	Fullscreen() bool
}

// Window wraps a root toplevel surface mapped into the Space.
type Window interface {
	Surface() Surface
	Alive() bool
	// BBox is the window's bounding box relative to its map location.
	BBox() geom.Rectangle
	OnCommit()
	Toplevel() (Toplevel, bool)
}

// PopupKind distinguishes popups that need a server configure from those
// that do not.
type PopupKind int

const (
	PopupXDG PopupKind = iota
	PopupInputMethod
)

func (k PopupKind) String() string {
	switch k {
	case PopupXDG:
		return "xdg"
	case PopupInputMethod:
		return "input-method"
	default:
		return "unknown"
	}
}

// Popup is a transient surface anchored to a parent surface.
type Popup interface {
	Kind() PopupKind
	Surface() Surface
	Parent() Surface
	InitialConfigureSent() bool
	SendConfigure() error
}

// PopupManager tracks popup bookkeeping for the toolkit.
type PopupManager interface {
	Commit(s Surface)
	FindPopup(s Surface) (Popup, bool)
}

// Layer is a layer-shell stacking layer.
type Layer int

const (
	LayerBackground Layer = iota
	LayerBottom
	LayerTop
	LayerOverlay
)

var layerNames = [...]string{"background", "bottom", "top", "overlay"}

func (l Layer) String() string {
	if l < 0 || int(l) >= len(layerNames) {
		return "unknown"
	}
	return layerNames[l]
}

// ParseLayer maps a layer name back to its value.
func ParseLayer(name string) (Layer, bool) {
	for i, n := range layerNames {
		if n == name {
			return Layer(i), true
		}
	}
	return 0, false
}

// LayerSurface is a surface bound to a layer of one output.
type LayerSurface interface {
	Surface() Surface
	Namespace() string
	Layer() Layer
	InitialConfigureSent() bool
	SendConfigure()
}

// LayerMap is the ordered layer stack of one output.
type LayerMap interface {
	Layers() []LayerSurface
	Map(l LayerSurface) error
	Unmap(l LayerSurface)
	// Arrange recomputes layer geometry and the exclusive zones.
	Arrange()
	// NonExclusiveZone is the output-local area not reserved by layers.
	NonExclusiveZone() geom.Rectangle
	LayerForSurface(s Surface) (LayerSurface, bool)
}

// Output is a display region.
type Output interface {
	Name() string
	LayerMap() LayerMap
}

// Space positions outputs and windows in the global logical coordinate
// space.
type Space interface {
	Outputs() []Output
	OutputUnder(p geom.PointF) []Output
	OutputGeometry(o Output) (geom.Rectangle, bool)
	MapOutput(o Output, loc geom.Point)

	Elements() []Window
	ElementLocation(w Window) (geom.Point, bool)
	MapElement(w Window, loc geom.Point, activate bool)
	OutputsForElement(w Window) []Output
}

// Renderer receives raw buffer and damage updates.
type Renderer interface {
	OnCommitBuffer(s Surface)
}

// Backend performs backend-specific work on commit.
type Backend interface {
	EarlyImport(s Surface)
}
