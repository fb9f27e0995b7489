package canvas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filmroom/telestrator/internal/geom"
)

func TestMarshalElement_RoundTrip(t *testing.T) {
	elements := []Element{
		Stroke{
			Points:    []geom.NormPoint{{X: 0.1, Y: 0.2}, {X: 0.3, Y: 0.4}, {X: 0.5, Y: 0.5}},
			Color:     "#ff3b30",
			Style:     LineSolid,
			Opacity:   1,
			ArrowHead: true,
		},
		Rect{
			A:       geom.NormPoint{X: 0.25, Y: 0.25},
			B:       geom.NormPoint{X: 0.75, Y: 0.5},
			Color:   "#ffcc00",
			Style:   LineDashed,
			Opacity: 0.8,
			Fill:    &FillStyle{Color: "#ffcc00", Opacity: 0.25},
		},
		Ellipse{
			A:       geom.NormPoint{X: 0.4, Y: 0.1},
			B:       geom.NormPoint{X: 0.6, Y: 0.3},
			Color:   "#34c759",
			Style:   LineSolid,
			Opacity: 1,
		},
	}

	for _, want := range elements {
		data, err := MarshalElement(want)
		require.NoError(t, err)

		got, err := UnmarshalElement(data)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestMarshalElement_KindTag(t *testing.T) {
	data, err := MarshalElement(Rect{A: geom.NormPoint{}, B: geom.NormPoint{X: 1, Y: 1}, Color: "#fff", Style: LineSolid, Opacity: 1})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kind":"rect"`)
}

func TestUnmarshalElement_UnknownKind(t *testing.T) {
	_, err := UnmarshalElement([]byte(`{"kind":"sticker","x":1}`))
	require.Error(t, err)
	assert.True(t, IsUnknownKind(err))
	assert.Contains(t, err.Error(), "sticker")
}

func TestUnmarshalElement_BadJSON(t *testing.T) {
	_, err := UnmarshalElement([]byte(`{"kind":`))
	require.Error(t, err)
	assert.False(t, IsUnknownKind(err))
}

func TestKind(t *testing.T) {
	assert.Equal(t, KindStroke, Kind(Stroke{}))
	assert.Equal(t, KindRect, Kind(Rect{}))
	assert.Equal(t, KindEllipse, Kind(Ellipse{}))
}

func TestLineStyle_Valid(t *testing.T) {
	assert.True(t, LineSolid.Valid())
	assert.True(t, LineDashed.Valid())
	assert.False(t, LineStyle("dotted").Valid())
}
