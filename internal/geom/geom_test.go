package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDenormalize_RoundTrip(t *testing.T) {
	sizes := []Size{
		{Width: 640, Height: 360},
		{Width: 1920, Height: 1080},
		{Width: 333, Height: 777},
		{Width: 1, Height: 1},
	}
	points := []Point{
		{X: 0, Y: 0},
		{X: 100, Y: 50},
		{X: 639.5, Y: 359.25},
		{X: 0.125, Y: 0.5},
	}

	for _, s := range sizes {
		for _, p := range points {
			got := Denormalize(Normalize(p, s), s)
			assert.InDelta(t, p.X, got.X, 1e-9, "x round-trip at %dx%d", s.Width, s.Height)
			assert.InDelta(t, p.Y, got.Y, 1e-9, "y round-trip at %dx%d", s.Width, s.Height)
		}
	}
}

func TestNormalize_FractionsOfSurface(t *testing.T) {
	s := Size{Width: 800, Height: 400}

	n := Normalize(Point{X: 400, Y: 100}, s)
	assert.Equal(t, 0.5, n.X)
	assert.Equal(t, 0.25, n.Y)

	// Same fraction maps to a proportional position on a different surface.
	p := Denormalize(n, Size{Width: 1600, Height: 800})
	assert.Equal(t, 800.0, p.X)
	assert.Equal(t, 200.0, p.Y)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, NormPoint{X: 0, Y: 1}, NormPoint{X: -0.2, Y: 1.8}.Clamp())
	assert.Equal(t, NormPoint{X: 0.5, Y: 0.5}, NormPoint{X: 0.5, Y: 0.5}.Clamp())
	assert.Equal(t, NormPoint{X: 1, Y: 0}, NormPoint{X: 1.0001, Y: -0.0001}.Clamp())
}

func TestDist(t *testing.T) {
	assert.Equal(t, 5.0, Dist(Point{X: 0, Y: 0}, Point{X: 3, Y: 4}))
	assert.Equal(t, 0.0, Dist(Point{X: 7, Y: 7}, Point{X: 7, Y: 7}))
}

func TestLineWidth_ScalesWithMinDimension(t *testing.T) {
	small := LineWidth(Size{Width: 320, Height: 180})
	large := LineWidth(Size{Width: 3200, Height: 1800})

	// Small surfaces hit the floor; large surfaces scale proportionally.
	assert.Equal(t, 1.5, small)
	assert.InDelta(t, 1800*0.004, large, 1e-9)
	assert.Greater(t, large, small)
}

func TestArrowLength_Floor(t *testing.T) {
	assert.Equal(t, 9.0, ArrowLength(Size{Width: 100, Height: 100}))
	assert.InDelta(t, 1080*0.03, ArrowLength(Size{Width: 1920, Height: 1080}), 1e-9)
}

func TestDashPattern_ScaledToLineWidth(t *testing.T) {
	s := Size{Width: 1920, Height: 1080}
	on, off := DashPattern(s)
	w := LineWidth(s)
	assert.InDelta(t, 3*w, on, 1e-9)
	assert.InDelta(t, 2*w, off, 1e-9)
}

func TestSize(t *testing.T) {
	assert.True(t, Size{Width: 1, Height: 1}.Valid())
	assert.False(t, Size{Width: 0, Height: 100}.Valid())
	assert.False(t, Size{Width: 100, Height: -1}.Valid())
	assert.Equal(t, 360.0, Size{Width: 640, Height: 360}.Min())
}
