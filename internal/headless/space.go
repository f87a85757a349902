package headless

import (
	"slices"

	"github.com/1broseidon/wlshell/internal/desktop"
	"github.com/1broseidon/wlshell/internal/geom"
)

type mappedOutput struct {
	output *Output
	loc    geom.Point
}

type element struct {
	window    desktop.Window
	loc       geom.Point
	activated bool
}

// Space is an in-memory output and window space. Elements are kept in
// stacking order, bottom first.
type Space struct {
	outputs  []*mappedOutput
	elements []*element
}

// NewSpace returns an empty space.
func NewSpace() *Space {
	return &Space{}
}

func (sp *Space) findOutput(o desktop.Output) int {
	return slices.IndexFunc(sp.outputs, func(m *mappedOutput) bool { return desktop.Output(m.output) == o })
}

func (sp *Space) findElement(w desktop.Window) int {
	return slices.IndexFunc(sp.elements, func(e *element) bool { return e.window == w })
}

func (sp *Space) Outputs() []desktop.Output {
	out := make([]desktop.Output, 0, len(sp.outputs))
	for _, m := range sp.outputs {
		out = append(out, m.output)
	}
	return out
}

func (sp *Space) OutputUnder(p geom.PointF) []desktop.Output {
	var out []desktop.Output
	for _, m := range sp.outputs {
		if (geom.Rectangle{Loc: m.loc, Size: m.output.size}).ContainsF(p) {
			out = append(out, m.output)
		}
	}
	return out
}

func (sp *Space) OutputGeometry(o desktop.Output) (geom.Rectangle, bool) {
	i := sp.findOutput(o)
	if i < 0 {
		return geom.Rectangle{}, false
	}
	m := sp.outputs[i]
	return geom.Rectangle{Loc: m.loc, Size: m.output.size}, true
}

// MapOutput maps o at loc, or moves it if already mapped. Outputs from
// other toolkits are ignored.
func (sp *Space) MapOutput(o desktop.Output, loc geom.Point) {
	ho, ok := o.(*Output)
	if !ok {
		return
	}
	if i := sp.findOutput(o); i >= 0 {
		sp.outputs[i].loc = loc
		return
	}
	sp.outputs = append(sp.outputs, &mappedOutput{output: ho, loc: loc})
}

// UnmapOutput removes o from the space.
func (sp *Space) UnmapOutput(o desktop.Output) {
	if i := sp.findOutput(o); i >= 0 {
		sp.outputs = slices.Delete(sp.outputs, i, i+1)
	}
}

// OutputByName finds a mapped output.
func (sp *Space) OutputByName(name string) (*Output, bool) {
	for _, m := range sp.outputs {
		if m.output.name == name {
			return m.output, true
		}
	}
	return nil, false
}

func (sp *Space) Elements() []desktop.Window {
	out := make([]desktop.Window, 0, len(sp.elements))
	for _, e := range sp.elements {
		out = append(out, e.window)
	}
	return out
}

func (sp *Space) ElementLocation(w desktop.Window) (geom.Point, bool) {
	i := sp.findElement(w)
	if i < 0 {
		return geom.Point{}, false
	}
	return sp.elements[i].loc, true
}

// MapElement maps or moves w to loc and raises it. Activating w
// deactivates every other element.
func (sp *Space) MapElement(w desktop.Window, loc geom.Point, activate bool) {
	var e *element
	if i := sp.findElement(w); i >= 0 {
		e = sp.elements[i]
		sp.elements = slices.Delete(sp.elements, i, i+1)
	} else {
		e = &element{window: w}
	}
	e.loc = loc
	sp.elements = append(sp.elements, e)
	if activate {
		for _, other := range sp.elements {
			other.activated = other == e
		}
	}
}

// UnmapElement removes w from the space.
func (sp *Space) UnmapElement(w desktop.Window) {
	if i := sp.findElement(w); i >= 0 {
		sp.elements = slices.Delete(sp.elements, i, i+1)
	}
}

// Activated reports whether w holds keyboard focus.
func (sp *Space) Activated(w desktop.Window) bool {
	i := sp.findElement(w)
	return i >= 0 && sp.elements[i].activated
}

// Refresh drops elements whose windows died.
func (sp *Space) Refresh() {
	sp.elements = slices.DeleteFunc(sp.elements, func(e *element) bool { return !e.window.Alive() })
}

func (sp *Space) OutputsForElement(w desktop.Window) []desktop.Output {
	i := sp.findElement(w)
	if i < 0 {
		return nil
	}
	e := sp.elements[i]
	bbox := w.BBox().Translate(e.loc)
	var out []desktop.Output
	for _, m := range sp.outputs {
		geo := geom.Rectangle{Loc: m.loc, Size: m.output.size}
		if bbox.Empty() {
			if geo.Contains(e.loc) {
				out = append(out, m.output)
			}
			continue
		}
		if geo.Overlaps(bbox) {
			out = append(out, m.output)
		}
	}
	return out
}
