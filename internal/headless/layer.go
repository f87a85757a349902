package headless

import (
	"errors"
	"slices"
	"sort"

	"github.com/1broseidon/wlshell/internal/desktop"
	"github.com/1broseidon/wlshell/internal/geom"
)

// ErrAlreadyMapped is returned when a layer surface is mapped twice.
var ErrAlreadyMapped = errors.New("layer surface already mapped")

// Anchor is a set of output edges a layer surface is attached to.
type Anchor uint8

const (
	AnchorTop Anchor = 1 << iota
	AnchorBottom
	AnchorLeft
	AnchorRight
)

func (a Anchor) has(b Anchor) bool {
	return a&b != 0
}

// LayerSurface is a wlr-layer-shell surface.
type LayerSurface struct {
	surface       *Surface
	namespace     string
	layer         desktop.Layer
	anchor        Anchor
	exclusiveZone int
	desired       geom.Size

	mapped     *LayerMap
	geometry   geom.Rectangle
	sent       bool
	configures []geom.Size
}

func (l *LayerSurface) Surface() desktop.Surface {
	return l.surface
}

// Headless returns the concrete surface.
func (l *LayerSurface) Headless() *Surface {
	return l.surface
}

func (l *LayerSurface) Namespace() string {
	return l.namespace
}

func (l *LayerSurface) Layer() desktop.Layer {
	return l.layer
}

func (l *LayerSurface) InitialConfigureSent() bool {
	return l.sent
}

func (l *LayerSurface) SendConfigure() {
	l.sent = true
	l.configures = append(l.configures, l.geometry.Size)
}

// Configures returns the sizes sent in each configure.
func (l *LayerSurface) Configures() []geom.Size {
	return l.configures
}

// Geometry is the output-local geometry computed by the last arrange.
func (l *LayerSurface) Geometry() geom.Rectangle {
	return l.geometry
}

// SetAnchor sets the anchored edges.
func (l *LayerSurface) SetAnchor(a Anchor) {
	l.anchor = a
}

// SetExclusiveZone sets how much of the anchored edge the surface reserves.
func (l *LayerSurface) SetExclusiveZone(n int) {
	l.exclusiveZone = n
}

// SetSize sets the client-requested size. Zero on an axis anchored to both
// sides stretches across the output.
func (l *LayerSurface) SetSize(s geom.Size) {
	l.desired = s
}

// exclusiveEdge returns the single edge the exclusive zone applies to.
func (l *LayerSurface) exclusiveEdge() (Anchor, bool) {
	a := l.anchor
	horiz := a.has(AnchorLeft) == a.has(AnchorRight)
	vert := a.has(AnchorTop) == a.has(AnchorBottom)
	switch {
	case a.has(AnchorTop) && !a.has(AnchorBottom) && horiz:
		return AnchorTop, true
	case a.has(AnchorBottom) && !a.has(AnchorTop) && horiz:
		return AnchorBottom, true
	case a.has(AnchorLeft) && !a.has(AnchorRight) && vert:
		return AnchorLeft, true
	case a.has(AnchorRight) && !a.has(AnchorLeft) && vert:
		return AnchorRight, true
	}
	return 0, false
}

// LayerMap is the layer stack of one output.
type LayerMap struct {
	output   *Output
	layers   []*LayerSurface
	zone     geom.Rectangle
	arranged int
}

func (m *LayerMap) Layers() []desktop.LayerSurface {
	out := make([]desktop.LayerSurface, 0, len(m.layers))
	for _, l := range m.layers {
		out = append(out, l)
	}
	return out
}

func (m *LayerMap) Map(ls desktop.LayerSurface) error {
	l, ok := ls.(*LayerSurface)
	if !ok {
		return errors.New("foreign layer surface")
	}
	if l.mapped != nil {
		return ErrAlreadyMapped
	}
	l.mapped = m
	m.layers = append(m.layers, l)
	m.Arrange()
	return nil
}

func (m *LayerMap) Unmap(ls desktop.LayerSurface) {
	l, ok := ls.(*LayerSurface)
	if !ok || l.mapped != m {
		return
	}
	l.mapped = nil
	m.layers = slices.DeleteFunc(m.layers, func(x *LayerSurface) bool { return x == l })
	m.Arrange()
}

// Arranged counts Arrange calls.
func (m *LayerMap) Arranged() int {
	return m.arranged
}

// Arrange lays out every layer surface in layer order, shrinking the usable
// zone by each exclusive zone, and re-configures surfaces whose size
// changed after their initial configure.
func (m *LayerMap) Arrange() {
	m.arranged++
	full := geom.FromSize(m.output.size)
	zone := full

	ordered := slices.Clone(m.layers)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].layer > ordered[j].layer })

	for _, l := range ordered {
		if !l.surface.Alive() {
			continue
		}
		area := full
		if l.exclusiveZone == 0 {
			area = zone
		}
		geo := place(l, area)
		if l.exclusiveZone > 0 {
			if edge, ok := l.exclusiveEdge(); ok {
				zone = shrink(zone, edge, l.exclusiveZone)
			}
		}
		prev := l.geometry
		l.geometry = geo
		if l.sent && prev.Size != geo.Size {
			l.SendConfigure()
		}
	}
	m.zone = zone
}

func (m *LayerMap) NonExclusiveZone() geom.Rectangle {
	if m.arranged == 0 {
		return geom.FromSize(m.output.size)
	}
	return m.zone
}

func (m *LayerMap) LayerForSurface(s desktop.Surface) (desktop.LayerSurface, bool) {
	for _, l := range m.layers {
		if l.surface.ID() == s.ID() {
			return l, true
		}
	}
	return nil, false
}

func place(l *LayerSurface, area geom.Rectangle) geom.Rectangle {
	w, h := l.desired.W, l.desired.H
	if w == 0 && l.anchor.has(AnchorLeft) && l.anchor.has(AnchorRight) {
		w = area.Size.W
	}
	if h == 0 && l.anchor.has(AnchorTop) && l.anchor.has(AnchorBottom) {
		h = area.Size.H
	}

	x := area.Loc.X + (area.Size.W-w)/2
	switch {
	case l.anchor.has(AnchorLeft) && !l.anchor.has(AnchorRight):
		x = area.Loc.X
	case l.anchor.has(AnchorRight) && !l.anchor.has(AnchorLeft):
		x = area.Right() - w
	}
	y := area.Loc.Y + (area.Size.H-h)/2
	switch {
	case l.anchor.has(AnchorTop) && !l.anchor.has(AnchorBottom):
		y = area.Loc.Y
	case l.anchor.has(AnchorBottom) && !l.anchor.has(AnchorTop):
		y = area.Bottom() - h
	}
	return geom.Rect(x, y, w, h)
}

func shrink(zone geom.Rectangle, edge Anchor, n int) geom.Rectangle {
	switch edge {
	case AnchorTop:
		n = min(n, zone.Size.H)
		zone.Loc.Y += n
		zone.Size.H -= n
	case AnchorBottom:
		zone.Size.H -= min(n, zone.Size.H)
	case AnchorLeft:
		n = min(n, zone.Size.W)
		zone.Loc.X += n
		zone.Size.W -= n
	case AnchorRight:
		zone.Size.W -= min(n, zone.Size.W)
	}
	return zone
}

// Output is a headless display.
type Output struct {
	name   string
	size   geom.Size
	layers *LayerMap
}

// NewOutput creates an output of the given logical size.
func NewOutput(name string, size geom.Size) *Output {
	o := &Output{name: name, size: size}
	o.layers = &LayerMap{output: o}
	return o
}

func (o *Output) Name() string {
	return o.name
}

func (o *Output) Size() geom.Size {
	return o.size
}

// SetSize changes the mode, e.g. after a resolution switch.
func (o *Output) SetSize(size geom.Size) {
	o.size = size
}

func (o *Output) LayerMap() desktop.LayerMap {
	return o.layers
}

// HeadlessLayerMap returns the concrete layer map.
func (o *Output) HeadlessLayerMap() *LayerMap {
	return o.layers
}
