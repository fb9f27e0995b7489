package canvas

import (
	"fmt"
	"image"
	"io"

	"github.com/gogpu/gg"

	"github.com/filmroom/telestrator/internal/geom"
)

// Surface is the transparent raster overlay drawn above the video area.
// It owns a software-rasterized gg context sized to the video surface in
// pixels; all element geometry is converted from normalized coordinates
// at paint time.
//
// A Surface is not safe for concurrent use. Capture and playback both
// funnel paints through a single goroutine.
type Surface struct {
	dc   *gg.Context
	size geom.Size
}

// NewSurface allocates a transparent surface of the given pixel size.
func NewSurface(size geom.Size) (*Surface, error) {
	if !size.Valid() {
		return nil, fmt.Errorf("canvas: new surface: invalid size %dx%d", size.Width, size.Height)
	}
	return &Surface{dc: gg.NewContext(size.Width, size.Height), size: size}, nil
}

// Size returns the current pixel dimensions.
func (s *Surface) Size() geom.Size {
	return s.size
}

// Resize changes the pixel dimensions and leaves the surface blank.
// Callers repaint from their element lists afterwards; nothing rendered
// before the resize survives it.
func (s *Surface) Resize(size geom.Size) error {
	if !size.Valid() {
		return fmt.Errorf("canvas: resize: invalid size %dx%d", size.Width, size.Height)
	}
	if err := s.dc.Resize(size.Width, size.Height); err != nil {
		return fmt.Errorf("canvas: resize: %w", err)
	}
	s.size = size
	// Resize keeps the backing pixels when the dimensions are unchanged.
	s.dc.Clear()
	return nil
}

// Clear resets every pixel to transparent.
func (s *Surface) Clear() {
	s.dc.Clear()
}

// Segment paints one line segment in pixel coordinates with the proportional
// line width for the current size. Freehand capture uses it to extend the
// in-progress path without repainting the whole surface; committed elements
// always go through Render.
func (s *Surface) Segment(a, b geom.Point, color string, opacity float64) error {
	dc := s.dc
	setColor(dc, color, opacity)
	dc.SetLineWidth(geom.LineWidth(s.size))
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)
	dc.ClearDash()
	dc.DrawLine(a.X, a.Y, b.X, b.Y)
	if err := dc.Stroke(); err != nil {
		return fmt.Errorf("canvas: segment: %w", err)
	}
	return nil
}

// Image returns the current raster contents.
func (s *Surface) Image() image.Image {
	return s.dc.Image()
}

// EncodePNG writes the current raster contents as PNG.
func (s *Surface) EncodePNG(w io.Writer) error {
	if err := s.dc.EncodePNG(w); err != nil {
		return fmt.Errorf("canvas: encode png: %w", err)
	}
	return nil
}

// Close releases the underlying context. The surface must not be used
// afterwards.
func (s *Surface) Close() error {
	return s.dc.Close()
}

// setColor applies a hex color with its alpha scaled by opacity.
func setColor(dc *gg.Context, hex string, opacity float64) {
	c := gg.Hex(hex)
	dc.SetRGBA(c.R, c.G, c.B, c.A*clamp01(opacity))
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
