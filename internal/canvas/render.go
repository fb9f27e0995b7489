package canvas

import (
	"fmt"
	"math"

	"github.com/gogpu/gg"

	"github.com/filmroom/telestrator/internal/geom"
)

// barbAngle is the half-angle of the arrow head's open V.
const barbAngle = math.Pi / 6

// Render clears the surface and repaints the elements in list order.
// Painting the same elements onto surfaces of different sizes yields the
// same picture up to scale: geometry is denormalized per call and the
// line metrics come from the surface size.
func Render(s *Surface, elements []Element) error {
	s.Clear()
	for i, e := range elements {
		if err := paint(s, e); err != nil {
			return fmt.Errorf("canvas: render element %d: %w", i, err)
		}
	}
	return nil
}

func paint(s *Surface, e Element) error {
	switch v := e.(type) {
	case Stroke:
		return paintStroke(s, v)
	case Rect:
		return paintRect(s, v)
	case Ellipse:
		return paintEllipse(s, v)
	default:
		// Unreachable: the union is sealed.
		return fmt.Errorf("unsupported element %T", e)
	}
}

func paintStroke(s *Surface, v Stroke) error {
	if len(v.Points) < 2 {
		// Capture never commits fewer than two points; tolerate anyway.
		return nil
	}
	dc, size := s.dc, s.size
	setColor(dc, v.Color, v.Opacity)
	applyLine(dc, size, v.Style)
	p := geom.Denormalize(v.Points[0], size)
	dc.MoveTo(p.X, p.Y)
	for _, np := range v.Points[1:] {
		p = geom.Denormalize(np, size)
		dc.LineTo(p.X, p.Y)
	}
	if err := dc.Stroke(); err != nil {
		return err
	}
	if v.ArrowHead {
		return paintArrowHead(s, v)
	}
	return nil
}

// paintArrowHead draws an open V at the final point, oriented by the
// direction from the point at 90% of the path to the final point. The head
// is always solid regardless of the stroke's line style.
func paintArrowHead(s *Surface, v Stroke) error {
	dc, size := s.dc, s.size
	n := len(v.Points)
	tip := geom.Denormalize(v.Points[n-1], size)
	idx := (n - 1) * 9 / 10
	anchor := geom.Denormalize(v.Points[idx], size)
	for idx > 0 && anchor == tip {
		idx--
		anchor = geom.Denormalize(v.Points[idx], size)
	}
	if anchor == tip {
		// Every candidate coincides with the tip; no direction to point in.
		return nil
	}
	theta := math.Atan2(tip.Y-anchor.Y, tip.X-anchor.X)
	length := geom.ArrowLength(size)
	left := geom.Point{
		X: tip.X - length*math.Cos(theta-barbAngle),
		Y: tip.Y - length*math.Sin(theta-barbAngle),
	}
	right := geom.Point{
		X: tip.X - length*math.Cos(theta+barbAngle),
		Y: tip.Y - length*math.Sin(theta+barbAngle),
	}
	setColor(dc, v.Color, v.Opacity)
	applyLine(dc, size, LineSolid)
	dc.MoveTo(left.X, left.Y)
	dc.LineTo(tip.X, tip.Y)
	dc.LineTo(right.X, right.Y)
	return dc.Stroke()
}

func paintRect(s *Surface, v Rect) error {
	dc, size := s.dc, s.size
	a := geom.Denormalize(v.A, size)
	b := geom.Denormalize(v.B, size)
	x := math.Min(a.X, b.X)
	y := math.Min(a.Y, b.Y)
	dc.DrawRectangle(x, y, math.Abs(b.X-a.X), math.Abs(b.Y-a.Y))
	return finishShape(dc, size, v.Color, v.Style, v.Opacity, v.Fill)
}

func paintEllipse(s *Surface, v Ellipse) error {
	dc, size := s.dc, s.size
	a := geom.Denormalize(v.A, size)
	b := geom.Denormalize(v.B, size)
	dc.DrawEllipse((a.X+b.X)/2, (a.Y+b.Y)/2, math.Abs(b.X-a.X)/2, math.Abs(b.Y-a.Y)/2)
	return finishShape(dc, size, v.Color, v.Style, v.Opacity, v.Fill)
}

// finishShape paints the pending path: interior first when a fill is set,
// then the outline on top.
func finishShape(dc *gg.Context, size geom.Size, color string, style LineStyle, opacity float64, fill *FillStyle) error {
	if fill != nil {
		setColor(dc, fill.Color, fill.Opacity)
		if err := dc.FillPreserve(); err != nil {
			return err
		}
	}
	setColor(dc, color, opacity)
	applyLine(dc, size, style)
	return dc.Stroke()
}

// applyLine sets the proportional line width, round caps and joins, and the
// dash pattern for the style.
func applyLine(dc *gg.Context, size geom.Size, style LineStyle) {
	dc.SetLineWidth(geom.LineWidth(size))
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)
	if style == LineDashed {
		on, off := geom.DashPattern(size)
		dc.SetDash(on, off)
	} else {
		dc.ClearDash()
	}
}
