package placement

import (
	"log/slog"

	"github.com/1broseidon/wlshell/internal/desktop"
	"github.com/1broseidon/wlshell/internal/geom"
)

// DefaultFallbackSize is the area used when no output exists.
var DefaultFallbackSize = geom.Sz(800, 800)

// Config holds configuration for the engine.
type Config struct {
	Space        desktop.Space
	Session      *Session
	FallbackSize geom.Size
	Logger       *slog.Logger
}

// Engine places windows into the space.
type Engine struct {
	space    desktop.Space
	session  *Session
	fallback geom.Size
	logger   *slog.Logger
}

// NewEngine creates an engine. A nil session gets a fresh one with the
// default memo limit.
func NewEngine(cfg Config) *Engine {
	session := cfg.Session
	if session == nil {
		session = NewSession(DefaultMemoLimit)
	}
	fallback := cfg.FallbackSize
	if fallback.Empty() {
		fallback = DefaultFallbackSize
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		space:    cfg.Space,
		session:  session,
		fallback: fallback,
		logger:   logger,
	}
}

// Session returns the layout session.
func (e *Engine) Session() *Session {
	return e.session
}

// TargetOutput picks the output under the pointer, else the first output.
func (e *Engine) TargetOutput(pointer geom.PointF) (desktop.Output, bool) {
	if under := e.space.OutputUnder(pointer); len(under) > 0 {
		return under[0], true
	}
	if outputs := e.space.Outputs(); len(outputs) > 0 {
		return outputs[0], true
	}
	return nil, false
}

// UsableArea returns the area of o not reserved by layer surfaces, in
// global coordinates.
func (e *Engine) UsableArea(o desktop.Output) (geom.Rectangle, bool) {
	geo, ok := e.space.OutputGeometry(o)
	if !ok {
		return geom.Rectangle{}, false
	}
	zone := o.LayerMap().NonExclusiveZone().Translate(geo.Loc)
	if usable, ok := geo.Intersection(zone); ok {
		return usable, true
	}
	return geo, true
}

// AreaFor returns the usable area windows are placed into for a pointer
// location.
func (e *Engine) AreaFor(pointer geom.PointF) geom.Rectangle {
	if o, ok := e.TargetOutput(pointer); ok {
		if area, ok := e.UsableArea(o); ok {
			return area
		}
	}
	return geom.FromSize(e.fallback)
}

// PlaceNewWindow maps w at its spiral slot in the usable area of the
// output under the pointer and returns the chosen location.
func (e *Engine) PlaceNewWindow(pointer geom.PointF, w desktop.Window, activate bool) geom.Point {
	area := e.AreaFor(pointer)
	if tl, ok := w.Toplevel(); ok {
		tl.SetBounds(area.Size)
	}

	ordinal := e.session.Ordinal(w.Surface().ID())
	cell := e.session.Cell(ordinal)
	loc := Location(GridPoint(area, cell), w.BBox())

	e.space.MapElement(w, loc, activate)
	e.logger.Debug("placed window",
		"surface", w.Surface().ID(),
		"ordinal", ordinal,
		"offset", cell.Offset,
		"area", area,
		"location", loc)
	return loc
}

// LayoutOutputs lines the outputs up left to right from the origin and
// re-arranges their layer surfaces.
func (e *Engine) LayoutOutputs() {
	x := 0
	for _, o := range e.space.Outputs() {
		geo, ok := e.space.OutputGeometry(o)
		if !ok {
			continue
		}
		e.space.MapOutput(o, geom.Pt(x, 0))
		o.LayerMap().Arrange()
		x += geo.Size.W
	}
}

// FixupPositions re-lays the outputs and re-places every window whose
// bounding box is not contained in a single usable area. It returns the
// windows that ended up at a different location.
func (e *Engine) FixupPositions(pointer geom.PointF) []desktop.Window {
	e.LayoutOutputs()

	var zones []geom.Rectangle
	for _, o := range e.space.Outputs() {
		if area, ok := e.UsableArea(o); ok {
			zones = append(zones, area)
		}
	}

	type orphan struct {
		w   desktop.Window
		loc geom.Point
	}
	var orphans []orphan
	for _, w := range e.space.Elements() {
		if !w.Alive() {
			continue
		}
		loc, ok := e.space.ElementLocation(w)
		if ok && !contained(zones, w.BBox().Translate(loc)) {
			orphans = append(orphans, orphan{w, loc})
		}
	}

	var moved []desktop.Window
	for _, o := range orphans {
		// A window too large for any zone lands on its memoized cell
		// again and is not reported.
		if e.PlaceNewWindow(pointer, o.w, false) != o.loc {
			e.logger.Info("re-placed orphaned window", "surface", o.w.Surface().ID())
			moved = append(moved, o.w)
		}
	}
	return moved
}

// contained reports whether bbox lies inside one of zones. An empty bbox
// counts by its top-left corner.
func contained(zones []geom.Rectangle, bbox geom.Rectangle) bool {
	for _, z := range zones {
		if bbox.Empty() {
			if z.Contains(bbox.Loc) {
				return true
			}
			continue
		}
		if z.ContainsRect(bbox) {
			return true
		}
	}
	return false
}
