// Package geom holds the logical-coordinate primitives shared by the shell,
// the placement engine and the toolkit implementations.
package geom

import "fmt"

// Point is a position in logical coordinates.
type Point struct {
	X int
	Y int
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y int) Point {
	return Point{X: x, Y: y}
}

func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// IsZero reports whether p is the origin.
func (p Point) IsZero() bool {
	return p.X == 0 && p.Y == 0
}

// ToF converts p to a fractional point.
func (p Point) ToF() PointF {
	return PointF{X: float64(p.X), Y: float64(p.Y)}
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// PointF is a fractional position, used for pointer locations.
type PointF struct {
	X float64
	Y float64
}

// Size is a width/height pair in logical units.
type Size struct {
	W int
	H int
}

// Sz is shorthand for Size{W: w, H: h}.
func Sz(w, h int) Size {
	return Size{W: w, H: h}
}

// Empty reports whether the size has no area.
func (s Size) Empty() bool {
	return s.W <= 0 || s.H <= 0
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.W, s.H)
}

// Rectangle is a half-open box: Loc is inclusive, Loc+Size is exclusive.
type Rectangle struct {
	Loc  Point
	Size Size
}

// Rect builds a rectangle from its components.
func Rect(x, y, w, h int) Rectangle {
	return Rectangle{Loc: Point{X: x, Y: y}, Size: Size{W: w, H: h}}
}

// FromSize returns a rectangle of the given size at the origin.
func FromSize(s Size) Rectangle {
	return Rectangle{Size: s}
}

func (r Rectangle) Right() int {
	return r.Loc.X + r.Size.W
}

func (r Rectangle) Bottom() int {
	return r.Loc.Y + r.Size.H
}

// Center returns the integer centre of r, rounding towards the origin of r.
func (r Rectangle) Center() Point {
	return Point{X: r.Loc.X + r.Size.W/2, Y: r.Loc.Y + r.Size.H/2}
}

// Empty reports whether r has no area.
func (r Rectangle) Empty() bool {
	return r.Size.Empty()
}

// Translate returns r moved by d.
func (r Rectangle) Translate(d Point) Rectangle {
	return Rectangle{Loc: r.Loc.Add(d), Size: r.Size}
}

// Contains reports whether p lies inside r.
func (r Rectangle) Contains(p Point) bool {
	return p.X >= r.Loc.X && p.X < r.Right() &&
		p.Y >= r.Loc.Y && p.Y < r.Bottom()
}

// ContainsF reports whether the fractional point p lies inside r.
func (r Rectangle) ContainsF(p PointF) bool {
	return p.X >= float64(r.Loc.X) && p.X < float64(r.Right()) &&
		p.Y >= float64(r.Loc.Y) && p.Y < float64(r.Bottom())
}

// ContainsRect reports whether o lies entirely inside r.
func (r Rectangle) ContainsRect(o Rectangle) bool {
	return o.Loc.X >= r.Loc.X && o.Right() <= r.Right() &&
		o.Loc.Y >= r.Loc.Y && o.Bottom() <= r.Bottom()
}

// Intersection returns the overlap of r and o, and whether it is non-empty.
func (r Rectangle) Intersection(o Rectangle) (Rectangle, bool) {
	x1 := max(r.Loc.X, o.Loc.X)
	y1 := max(r.Loc.Y, o.Loc.Y)
	x2 := min(r.Right(), o.Right())
	y2 := min(r.Bottom(), o.Bottom())
	if x2 <= x1 || y2 <= y1 {
		return Rectangle{}, false
	}
	return Rect(x1, y1, x2-x1, y2-y1), true
}

// Overlaps reports whether r and o share any area.
func (r Rectangle) Overlaps(o Rectangle) bool {
	_, ok := r.Intersection(o)
	return ok
}

// Clamp returns p moved to the nearest point inside r. An empty r yields its
// location.
func (r Rectangle) Clamp(p Point) Point {
	if r.Empty() {
		return r.Loc
	}
	return Point{
		X: min(max(p.X, r.Loc.X), r.Right()-1),
		Y: min(max(p.Y, r.Loc.Y), r.Bottom()-1),
	}
}

func (r Rectangle) String() string {
	return fmt.Sprintf("%s at %s", r.Size, r.Loc)
}
