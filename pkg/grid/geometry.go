package grid

import "math"

// CellGeometry is the compiled position of one cell: four edges expressed as
// CSS lengths relative to the container. It is never mutated; a proportion
// change produces a fresh map from [Compile].
type CellGeometry struct {
	Top    Length `json:"top"`
	Left   Length `json:"left"`
	Width  Length `json:"width"`
	Height Length `json:"height"`
}

// place maps a span along the group axis and a span along the cross axis
// onto cell edges.
func place(axis Axis, along, cross Span) CellGeometry {
	if axis == Horizontal {
		return CellGeometry{Left: along.Start, Width: along.Size, Top: cross.Start, Height: cross.Size}
	}
	return CellGeometry{Top: along.Start, Height: along.Size, Left: cross.Start, Width: cross.Size}
}

// Resolve converts the geometry to pixels for a w×h container.
func (g CellGeometry) Resolve(w, h float64) Rect {
	return Rect{
		X: g.Left.Resolve(w),
		Y: g.Top.Resolve(h),
		W: g.Width.Resolve(w),
		H: g.Height.Resolve(h),
	}
}

// Rect is an axis-aligned rectangle in pixels, defined by its top-left corner and size.
type Rect struct {
	X, Y float64
	W, H float64
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Area returns W×H, or 0 for degenerate rectangles.
func (r Rect) Area() float64 {
	if r.W <= 0 || r.H <= 0 {
		return 0
	}
	return r.W * r.H
}

// Contains reports whether (x, y) lies inside r, edges included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && y >= r.Y && x <= r.Right() && y <= r.Bottom()
}

// Intersect returns the overlap of r and o; the result has zero area when
// they do not overlap.
func (r Rect) Intersect(o Rect) Rect {
	x0 := math.Max(r.X, o.X)
	y0 := math.Max(r.Y, o.Y)
	x1 := math.Min(r.Right(), o.Right())
	y1 := math.Min(r.Bottom(), o.Bottom())
	if x1 <= x0 || y1 <= y0 {
		return Rect{X: x0, Y: y0}
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Union returns the smallest rectangle containing both.
func (r Rect) Union(o Rect) Rect {
	x0 := math.Min(r.X, o.X)
	y0 := math.Min(r.Y, o.Y)
	x1 := math.Max(r.Right(), o.Right())
	y1 := math.Max(r.Bottom(), o.Bottom())
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Resolve converts a compiled layout to pixel rectangles.
func Resolve(cells map[string]CellGeometry, w, h float64) map[string]Rect {
	out := make(map[string]Rect, len(cells))
	for id, g := range cells {
		out[id] = g.Resolve(w, h)
	}
	return out
}
