// Package geom provides the rectangle math and dirty-region accumulation
// used to decide how much of the panel to refresh.
package geom

import "fmt"

// Point is a pixel coordinate.
type Point struct {
	X, Y int
}

// Rect is an axis-aligned pixel rectangle. W and H are never negative; a
// rect with zero area is empty and takes part in no refresh.
type Rect struct {
	X, Y, W, H int
}

// R builds a Rect, treating negative sizes as zero.
func R(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: max(w, 0), H: max(h, 0)}
}

// Empty reports whether r covers no pixels.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Max returns the exclusive bottom-right corner.
func (r Rect) Max() Point {
	return Point{X: r.X + r.W, Y: r.Y + r.H}
}

// Contains reports whether p lies inside r.
func (r Rect) Contains(p Point) bool {
	return !r.Empty() && p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}

// ContainsRect reports whether o lies entirely inside r. Every rect contains
// the empty rect.
func (r Rect) ContainsRect(o Rect) bool {
	if o.Empty() {
		return true
	}
	if r.Empty() {
		return false
	}
	return o.X >= r.X && o.Y >= r.Y && o.X+o.W <= r.X+r.W && o.Y+o.H <= r.Y+r.H
}

// Union returns the smallest rect containing a and b. Empty rects are
// identities, so Union is associative and commutative.
func Union(a, b Rect) Rect {
	if a.Empty() {
		if b.Empty() {
			return Rect{}
		}
		return b
	}
	if b.Empty() {
		return a
	}
	x0 := min(a.X, b.X)
	y0 := min(a.Y, b.Y)
	x1 := max(a.X+a.W, b.X+b.W)
	y1 := max(a.Y+a.H, b.Y+b.H)
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Intersect returns the overlap of a and b, or the zero Rect.
func Intersect(a, b Rect) Rect {
	if a.Empty() || b.Empty() {
		return Rect{}
	}
	x0 := max(a.X, b.X)
	y0 := max(a.Y, b.Y)
	x1 := min(a.X+a.W, b.X+b.W)
	y1 := min(a.Y+a.H, b.Y+b.H)
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Clamp restricts r to bounds. The result never has a negative size.
func (r Rect) Clamp(bounds Rect) Rect {
	return Intersect(r, bounds)
}

// Inset shrinks r by n pixels on every side.
func (r Rect) Inset(n int) Rect {
	return R(r.X+n, r.Y+n, r.W-2*n, r.H-2*n)
}

// Area is W*H, zero for empty rects.
func (r Rect) Area() int {
	if r.Empty() {
		return 0
	}
	return r.W * r.H
}

func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", r.X, r.Y, r.W, r.H)
}
