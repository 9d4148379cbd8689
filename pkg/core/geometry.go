// pkg/core/geometry.go
package core

import "math"

// Pt2D is a point in map space (or screen space, depending on context).
type Pt2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Dist returns the euclidean distance between two points.
func (p Pt2D) Dist(o Pt2D) float64 {
	return math.Hypot(p.X-o.X, p.Y-o.Y)
}

// Bounds is an axis-aligned rectangle in map space.
type Bounds struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// EmptyBounds returns bounds that contain nothing; Update grows them.
func EmptyBounds() Bounds {
	return Bounds{
		MinX: math.Inf(1),
		MinY: math.Inf(1),
		MaxX: math.Inf(-1),
		MaxY: math.Inf(-1),
	}
}

// Update grows the bounds to include pt.
func (b *Bounds) Update(pt Pt2D) {
	b.MinX = math.Min(b.MinX, pt.X)
	b.MinY = math.Min(b.MinY, pt.Y)
	b.MaxX = math.Max(b.MaxX, pt.X)
	b.MaxY = math.Max(b.MaxY, pt.Y)
}

// Pad grows the bounds by d on every side.
func (b Bounds) Pad(d float64) Bounds {
	return Bounds{MinX: b.MinX - d, MinY: b.MinY - d, MaxX: b.MaxX + d, MaxY: b.MaxY + d}
}

// Contains reports whether pt lies inside the bounds (edges included).
func (b Bounds) Contains(pt Pt2D) bool {
	return pt.X >= b.MinX && pt.X <= b.MaxX && pt.Y >= b.MinY && pt.Y <= b.MaxY
}

// Intersects reports whether two bounds overlap.
func (b Bounds) Intersects(o Bounds) bool {
	return b.MinX <= o.MaxX && o.MinX <= b.MaxX && b.MinY <= o.MaxY && o.MinY <= b.MaxY
}
