package export

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filmroom/telestrator/internal/canvas"
	"github.com/filmroom/telestrator/internal/event"
	"github.com/filmroom/telestrator/internal/geom"
)

// sheetLog is a session with every element kind committed.
func sheetLog() []event.Event {
	stroke := canvas.Stroke{
		Points:  []geom.NormPoint{{X: 0.1, Y: 0.2}, {X: 0.3, Y: 0.4}, {X: 0.5, Y: 0.4}},
		Color:   "#ff3b30",
		Style:   canvas.LineSolid,
		Opacity: 1,
	}
	rect := canvas.Rect{
		A: geom.NormPoint{X: 0.2, Y: 0.2}, B: geom.NormPoint{X: 0.6, Y: 0.5},
		Color: "#00aaff", Style: canvas.LineDashed, Opacity: 1,
		Fill: &canvas.FillStyle{Color: "#00aaff", Opacity: 0.25},
	}
	ellipse := canvas.Ellipse{
		A: geom.NormPoint{X: 0.3, Y: 0.6}, B: geom.NormPoint{X: 0.7, Y: 0.9},
		Color: "#ffcc00", Style: canvas.LineSolid, Opacity: 0.5,
	}
	arrow := canvas.Stroke{
		Points:    []geom.NormPoint{{X: 0.8, Y: 0.8}, {X: 0.9, Y: 0.6}},
		Color:     "#34c759",
		Style:     canvas.LineDashed,
		Opacity:   1,
		ArrowHead: true,
	}
	return []event.Event{
		{ID: "e1", PointID: "p1", Type: event.TypeRecordingStart, Payload: event.StartPayload{InitialRate: 1}},
		{ID: "e2", PointID: "p1", Type: event.TypePlay, Payload: event.TransportPayload{}},
		{ID: "e3", PointID: "p1", Type: event.TypeDraw, TimestampMS: 1000, Payload: event.DrawPayload{Element: stroke}},
		{ID: "e4", PointID: "p1", Type: event.TypeDraw, TimestampMS: 2000, Payload: event.DrawPayload{Element: rect}},
		{ID: "e5", PointID: "p1", Type: event.TypeDraw, TimestampMS: 3000, Payload: event.DrawPayload{Element: ellipse}},
		{ID: "e6", PointID: "p1", Type: event.TypeDraw, TimestampMS: 4000, Payload: event.DrawPayload{Element: arrow}},
		{ID: "e7", PointID: "p1", Type: event.TypePause, TimestampMS: 5000, Payload: event.TransportPayload{VideoTimeSec: 5}},
	}
}

func alphaAt(t *testing.T, data []byte, x, y int) uint32 {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	_, _, _, a := img.At(x, y).RGBA()
	return a
}

func TestPNGFrame_RendersDrawnState(t *testing.T) {
	var buf bytes.Buffer
	size := geom.Size{Width: 320, Height: 180}
	require.NoError(t, PNGFrame(sheetLog(), 5000, size, &buf))

	img, err := png.Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())
	assert.Equal(t, 180, img.Bounds().Dy())

	// The first stroke has a vertex at (0.3, 0.4) -> pixel (96, 72).
	assert.NotZero(t, alphaAt(t, buf.Bytes(), 96, 72))
}

func TestPNGFrame_BeforeFirstDrawIsBlank(t *testing.T) {
	var buf bytes.Buffer
	size := geom.Size{Width: 320, Height: 180}
	require.NoError(t, PNGFrame(sheetLog(), 500, size, &buf))

	assert.Zero(t, alphaAt(t, buf.Bytes(), 96, 72))
}

func TestPNGFrame_RejectsMalformedLog(t *testing.T) {
	var buf bytes.Buffer
	err := PNGFrame(sheetLog()[1:], 0, geom.Size{Width: 100, Height: 100}, &buf)
	require.Error(t, err)
	assert.Zero(t, buf.Len())
}

func TestPNGFrame_RejectsInvalidSize(t *testing.T) {
	var buf bytes.Buffer
	err := PNGFrame(sheetLog(), 0, geom.Size{}, &buf)
	require.Error(t, err)
}

func TestPDFSheet_WritesDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sheet.pdf")
	require.NoError(t, PDFSheet(sheetLog(), geom.Size{Width: 1280, Height: 720}, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")), "not a PDF document")
	assert.Greater(t, len(data), 500)
}

func TestPDFSheet_RejectsMalformedLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sheet.pdf")
	err := PDFSheet(sheetLog()[1:], geom.Size{Width: 1280, Height: 720}, path)
	require.Error(t, err)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "no file should be written for a bad log")
}

func TestPDFSheet_EmptyDrawingList(t *testing.T) {
	log := sheetLog()[:2]
	path := filepath.Join(t.TempDir(), "empty.pdf")
	require.NoError(t, PDFSheet(log, geom.Size{Width: 640, Height: 360}, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestVideoSpan_CoversEveryPosition(t *testing.T) {
	log := []event.Event{
		{ID: "e1", PointID: "p1", Type: event.TypeRecordingStart, Payload: event.StartPayload{InitialVideoTimeSec: 30, InitialRate: 1}},
		{ID: "e2", PointID: "p1", Type: event.TypeSeek, TimestampMS: 100, Payload: event.SeekPayload{FromSec: 30, ToSec: 82.5}},
	}
	assert.Greater(t, VideoSpan(log), 82.5)
}
