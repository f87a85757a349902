// Package placement decides where newly mapped windows go and re-anchors
// windows when the output topology changes.
package placement

import (
	"math"

	"github.com/1broseidon/wlshell/internal/geom"
)

// minGrid is the smallest grid used for the spiral, so that the first ring
// always fits.
const minGrid = 3

// directions is the order in which the spiral visits the cells of a ring.
var directions = [8]geom.Point{
	{X: 1, Y: 0},   // right
	{X: 1, Y: 1},   // bottom-right
	{X: 0, Y: 1},   // bottom
	{X: -1, Y: 1},  // bottom-left
	{X: -1, Y: 0},  // left
	{X: -1, Y: -1}, // top-left
	{X: 0, Y: -1},  // top
	{X: 1, Y: -1},  // top-right
}

// Cell is a memoized spiral slot: the offset from the centre, in cells, and
// the number of cells along each axis of the grid it was computed on.
type Cell struct {
	Offset geom.Point
	Grid   int
}

// GridSize returns the number of cells along each axis for the window with
// the given ordinal.
func GridSize(ordinal int) int {
	if ordinal < 1 {
		return minGrid
	}
	n := int(math.Ceil(math.Sqrt(float64(ordinal))))
	return max(minGrid, n)
}

// SpiralOffset returns the cell offset from the centre for the window with
// the given 1-based ordinal. The first window sits on the centre; the
// following ones walk rings of eight cells outward.
func SpiralOffset(ordinal int) geom.Point {
	if ordinal <= 1 {
		return geom.Point{}
	}
	index := ordinal - 2
	ring := index/len(directions) + 1
	dir := directions[index%len(directions)]
	return geom.Pt(dir.X*ring, dir.Y*ring)
}

// CellFor computes the spiral slot of an ordinal.
func CellFor(ordinal int) Cell {
	return Cell{Offset: SpiralOffset(ordinal), Grid: GridSize(ordinal)}
}

// GridPoint maps a cell onto an area: the centre of the area moved by the
// cell offset times the cell size, clamped into the area.
func GridPoint(area geom.Rectangle, c Cell) geom.Point {
	grid := max(c.Grid, 1)
	cellW := area.Size.W / grid
	cellH := area.Size.H / grid
	p := area.Center().Add(geom.Pt(c.Offset.X*cellW, c.Offset.Y*cellH))
	return area.Clamp(p)
}

// Location returns where a window with the given bounding box has to be
// mapped so that its box is centred on p.
func Location(p geom.Point, bbox geom.Rectangle) geom.Point {
	return p.Sub(geom.Pt(bbox.Size.W/2, bbox.Size.H/2))
}
