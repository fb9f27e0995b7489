package playback

import (
	"github.com/filmroom/telestrator/internal/canvas"
)

// Renderer receives the committed element list each time it changes during
// forward playback and once per seek. Implementations must not retain or
// mutate the slice.
type Renderer interface {
	Render(elements []canvas.Element) error
}

// RenderFunc adapts a function to the Renderer interface.
type RenderFunc func(elements []canvas.Element) error

// Render calls f.
func (f RenderFunc) Render(elements []canvas.Element) error { return f(elements) }

// Discard is a Renderer that draws nothing. Headless replay uses it when
// only the transport trace matters.
var Discard Renderer = RenderFunc(func([]canvas.Element) error { return nil })

// SurfaceRenderer paints the element list onto a canvas surface.
type SurfaceRenderer struct {
	surface *canvas.Surface
}

// NewSurfaceRenderer wraps s as a Renderer.
func NewSurfaceRenderer(s *canvas.Surface) *SurfaceRenderer {
	return &SurfaceRenderer{surface: s}
}

// Render repaints the surface from scratch with the given elements.
func (r *SurfaceRenderer) Render(elements []canvas.Element) error {
	return canvas.Render(r.surface, elements)
}
