// Package geom defines the coordinate model shared by capture, rendering,
// and the persisted event log.
//
// Committed drawing geometry is always stored in normalized coordinates:
// fractions of the rendering surface's width and height in [0, 1]. Pixel
// coordinates exist only transiently, inside one capture interaction on one
// surface size. Replaying a log on a surface of any size therefore reproduces
// the same relative layout.
package geom

import "math"

// Point is a position in surface pixel space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NormPoint is a position expressed as fractions of the surface size.
// Both coordinates are in [0, 1] for points on the surface.
type NormPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a surface extent in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Min returns the smaller of the two dimensions.
func (s Size) Min() float64 {
	if s.Width < s.Height {
		return float64(s.Width)
	}
	return float64(s.Height)
}

// Valid reports whether both dimensions are positive.
func (s Size) Valid() bool {
	return s.Width > 0 && s.Height > 0
}

// Normalize maps a pixel point onto a surface of size s to fractions of the
// surface extent. It is the exact inverse of Denormalize for the same s.
func Normalize(p Point, s Size) NormPoint {
	return NormPoint{
		X: p.X / float64(s.Width),
		Y: p.Y / float64(s.Height),
	}
}

// Denormalize maps a normalized point back to pixel space on a surface of
// size s. It is the exact inverse of Normalize for the same s.
func Denormalize(n NormPoint, s Size) Point {
	return Point{
		X: n.X * float64(s.Width),
		Y: n.Y * float64(s.Height),
	}
}

// Clamp returns n with both coordinates forced into [0, 1]. Capture clamps
// before committing so pointer positions dragged off the surface edge still
// produce a valid element.
func (n NormPoint) Clamp() NormPoint {
	return NormPoint{
		X: math.Min(1, math.Max(0, n.X)),
		Y: math.Min(1, math.Max(0, n.Y)),
	}
}

// Dist returns the Euclidean distance between two pixel points.
func Dist(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
