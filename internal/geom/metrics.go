package geom

// Visual proportions are derived from the smaller surface dimension, never
// from absolute pixels, so annotations keep the same apparent weight when the
// same log is replayed at a different surface size.
const (
	// lineWidthFrac is the stroke width as a fraction of min(width, height).
	lineWidthFrac = 0.004
	// minLineWidth keeps hairlines visible on very small surfaces.
	minLineWidth = 1.5

	// arrowFrac is the arrow-head side length as a fraction of min(width, height).
	arrowFrac = 0.03
	// minArrowLength keeps arrow heads legible on very small surfaces.
	minArrowLength = 9.0

	// Dash pattern lengths as multiples of the line width.
	dashOnFactor  = 3.0
	dashOffFactor = 2.0
)

// LineWidth returns the stroke width in pixels for a surface of size s.
func LineWidth(s Size) float64 {
	w := s.Min() * lineWidthFrac
	if w < minLineWidth {
		return minLineWidth
	}
	return w
}

// ArrowLength returns the arrow-head side length in pixels for a surface of
// size s.
func ArrowLength(s Size) float64 {
	l := s.Min() * arrowFrac
	if l < minArrowLength {
		return minArrowLength
	}
	return l
}

// DashPattern returns the on/off dash lengths in pixels, scaled to the line
// width for the given surface size.
func DashPattern(s Size) (on, off float64) {
	w := LineWidth(s)
	return w * dashOnFactor, w * dashOffFactor
}
