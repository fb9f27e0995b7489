// Package canvas defines the committed drawing elements and renders them onto
// a resizable 2D surface.
//
// Elements form a sealed union: only Stroke, Rect, and Ellipse implement
// Element. Rendering switches over the union exhaustively, so adding a variant
// is a compile-time-visible change everywhere elements are handled.
//
// Element geometry is stored exclusively in normalized coordinates
// (geom.NormPoint). Pixel positions are derived per render from the current
// surface size. List order is paint order; there is no z-index.
package canvas

import "github.com/filmroom/telestrator/internal/geom"

// LineStyle selects the stroke pattern for an element's outline.
type LineStyle string

const (
	// LineSolid draws a continuous outline.
	LineSolid LineStyle = "solid"
	// LineDashed draws a dash pattern scaled to the line width.
	LineDashed LineStyle = "dashed"
)

// Valid reports whether s is a known line style.
func (s LineStyle) Valid() bool {
	return s == LineSolid || s == LineDashed
}

// FillStyle describes the interior paint of a shape element.
// Fill is painted before the outline stroke.
type FillStyle struct {
	Color   string  `json:"color"`
	Opacity float64 `json:"opacity"`
}

// Element is the sealed drawing-element union.
// Only Stroke, Rect, and Ellipse implement it.
type Element interface {
	element() // sealed
}

// Stroke is a committed freehand path. Points are in capture order and hold
// at least two entries; capture never commits a shorter buffer.
//
// When ArrowHead is set, the renderer synthesizes a head at the final point,
// oriented by the direction from the point at 90% of the path to the final
// point. The head is derived geometry and is never stored.
type Stroke struct {
	Points    []geom.NormPoint `json:"points"`
	Color     string           `json:"color"`
	Style     LineStyle        `json:"line_style"`
	Opacity   float64          `json:"stroke_opacity"`
	ArrowHead bool             `json:"arrow_head,omitempty"`
}

func (Stroke) element() {}

// Rect is a committed axis-aligned rectangle spanning corners A and B.
// The corners carry no ordering guarantee; the renderer normalizes them.
type Rect struct {
	A       geom.NormPoint `json:"a"`
	B       geom.NormPoint `json:"b"`
	Color   string         `json:"color"`
	Style   LineStyle      `json:"line_style"`
	Opacity float64        `json:"stroke_opacity"`
	Fill    *FillStyle     `json:"fill,omitempty"`
}

func (Rect) element() {}

// Ellipse is a committed ellipse inscribed in the rectangle spanning corners
// A and B.
type Ellipse struct {
	A       geom.NormPoint `json:"a"`
	B       geom.NormPoint `json:"b"`
	Color   string         `json:"color"`
	Style   LineStyle      `json:"line_style"`
	Opacity float64        `json:"stroke_opacity"`
	Fill    *FillStyle     `json:"fill,omitempty"`
}

func (Ellipse) element() {}

// Kind names for the JSON envelope. See MarshalElement.
const (
	KindStroke  = "stroke"
	KindRect    = "rect"
	KindEllipse = "ellipse"
)

// Kind returns the envelope kind name for an element.
func Kind(e Element) string {
	switch e.(type) {
	case Stroke:
		return KindStroke
	case Rect:
		return KindRect
	case Ellipse:
		return KindEllipse
	default:
		// Unreachable: the union is sealed.
		return ""
	}
}
