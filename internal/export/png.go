// Package export renders persisted session logs into shareable artifacts: a
// PNG of the canvas at any session time and a PDF annotation sheet of the
// final drawing state.
package export

import (
	"fmt"
	"io"
	"math"

	"github.com/filmroom/telestrator/internal/canvas"
	"github.com/filmroom/telestrator/internal/event"
	"github.com/filmroom/telestrator/internal/geom"
	"github.com/filmroom/telestrator/internal/playback"
	"github.com/filmroom/telestrator/internal/transport"
)

// PNGFrame renders the canvas as it looked atMS into the session and encodes
// it as PNG. The frame comes from a real replay: the log is validated,
// scrubbed to atMS, and the surface painted, so an exported frame cannot
// disagree with what playback shows.
func PNGFrame(events []event.Event, atMS int64, size geom.Size, w io.Writer) error {
	surface, err := canvas.NewSurface(size)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	defer surface.Close()

	eng, err := playback.New(transport.NewFake(VideoSpan(events)), playback.NewSurfaceRenderer(surface))
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := eng.Load(events); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := eng.SeekTo(atMS); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := surface.EncodePNG(w); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

// VideoSpan returns a clip duration long enough that no recorded position
// lies beyond it. Headless replay backs its fake player with this.
func VideoSpan(events []event.Event) float64 {
	var span float64
	for _, e := range events {
		switch p := e.Payload.(type) {
		case event.StartPayload:
			span = math.Max(span, p.InitialVideoTimeSec)
		case event.TransportPayload:
			span = math.Max(span, p.VideoTimeSec)
		case event.SeekPayload:
			span = math.Max(span, math.Max(p.FromSec, p.ToSec))
		}
	}
	return span + 1
}
