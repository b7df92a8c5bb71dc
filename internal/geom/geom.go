package geom

import "fmt"

// Rect describes a rectangular region in root-window coordinates.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Point is a position in root-window coordinates.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Inset holds per-side margins.
type Inset struct {
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`
}

// Contains reports whether p lies inside r. The right and bottom edges are
// exclusive, so a point on a shared edge belongs to exactly one of two
// adjacent rectangles.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.Width &&
		p.Y >= r.Y && p.Y < r.Y+r.Height
}

// Center returns the midpoint of r.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

func (r Rect) Area() int {
	if r.Empty() {
		return 0
	}
	return r.Width * r.Height
}

// Empty reports whether r has no positive area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Shrink moves every edge of r inward by n pixels.
func (r Rect) Shrink(n int) Rect {
	return Rect{
		X:      r.X + n,
		Y:      r.Y + n,
		Width:  r.Width - 2*n,
		Height: r.Height - 2*n,
	}
}

// Intersect returns the area shared by r and o, or the zero Rect.
func (r Rect) Intersect(o Rect) Rect {
	x1 := max(r.X, o.X)
	y1 := max(r.Y, o.Y)
	x2 := min(r.X+r.Width, o.X+o.Width)
	y2 := min(r.Y+r.Height, o.Y+o.Height)
	if x2 <= x1 || y2 <= y1 {
		return Rect{}
	}
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// Intersects reports whether r and o share any area.
func (r Rect) Intersects(o Rect) bool {
	return !r.Intersect(o).Empty()
}

// Wide reports whether r is strictly wider than tall.
func (r Rect) Wide() bool {
	return r.Width > r.Height
}

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.X, r.Y)
}

func (p Point) String() string {
	return fmt.Sprintf("%d,%d", p.X, p.Y)
}
