package export

import (
	"fmt"
	"math"
	"time"

	"github.com/gogpu/gg"
	"github.com/jung-kurt/gofpdf"

	"github.com/filmroom/telestrator/internal/canvas"
	"github.com/filmroom/telestrator/internal/event"
	"github.com/filmroom/telestrator/internal/geom"
)

// A4 portrait in millimeters.
const (
	pageWidth  = 210.0
	pageHeight = 297.0
	pageMargin = 12.0
)

// Visual proportions relative to the drawing box, matching the raster
// renderer's fractions so the sheet and the canvas agree on weight.
const (
	pdfLineFrac  = 0.004
	pdfArrowFrac = 0.03
	barbAngle    = math.Pi / 6
)

// PDFSheet writes an A4 annotation sheet for a session log: a metadata
// header and the final drawing state rendered as vector geometry. size
// fixes the aspect ratio of the drawing box; it is usually the surface
// size the session was recorded on.
func PDFSheet(events []event.Event, size geom.Size, path string) error {
	if err := event.ValidateLog(events); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if !size.Valid() {
		return fmt.Errorf("export: invalid sheet size %dx%d", size.Width, size.Height)
	}
	els := finalElements(events)

	p := gofpdf.New("P", "mm", "A4", "")
	p.SetTitle("Annotation sheet", true)
	p.AddPage()
	writeHeader(p, events, len(els))

	b := drawingBox(p, size)
	p.SetDrawColor(190, 190, 190)
	p.SetLineWidth(0.2)
	p.SetDashPattern([]float64{}, 0)
	p.Rect(b.x, b.y, b.w, b.h, "D")

	for _, el := range els {
		paintPDF(p, b, el)
	}
	if err := p.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

// finalElements is the drawing state at the end of the session: every draw
// event's element in log order. Undo edits the live working set only and is
// never recorded, so the draw events are the final state.
func finalElements(events []event.Event) []canvas.Element {
	var els []canvas.Element
	for _, e := range events {
		if d, ok := e.Payload.(event.DrawPayload); ok {
			els = append(els, d.Element)
		}
	}
	return els
}

func writeHeader(p *gofpdf.Fpdf, events []event.Event, drawings int) {
	p.SetFont("Helvetica", "B", 16)
	p.SetTextColor(20, 20, 20)
	p.CellFormat(0, 9, "Coaching point annotation sheet", "", 1, "L", false, 0, "")

	session := time.Duration(events[len(events)-1].TimestampMS) * time.Millisecond
	p.SetFont("Helvetica", "", 10)
	p.SetTextColor(90, 90, 90)
	meta := fmt.Sprintf("point %s  |  %d events  |  %s session  |  %d drawings",
		events[0].PointID, len(events), session, drawings)
	p.CellFormat(0, 6, meta, "", 1, "L", false, 0, "")
	p.Ln(4)
}

// box is the drawing area on the page, in page millimeters. Normalized
// element geometry maps onto it exactly as it maps onto a raster surface.
type box struct {
	x, y, w, h float64
}

func (b box) at(n geom.NormPoint) (float64, float64) {
	return b.x + n.X*b.w, b.y + n.Y*b.h
}

func (b box) lineWidth() float64 {
	return math.Min(b.w, b.h) * pdfLineFrac
}

// drawingBox fits a box of the surface's aspect ratio into the space below
// the header, centered horizontally.
func drawingBox(p *gofpdf.Fpdf, size geom.Size) box {
	y0 := p.GetY()
	availW := pageWidth - 2*pageMargin
	availH := pageHeight - pageMargin - y0
	scale := math.Min(availW/float64(size.Width), availH/float64(size.Height))
	w := float64(size.Width) * scale
	h := float64(size.Height) * scale
	return box{x: pageMargin + (availW-w)/2, y: y0, w: w, h: h}
}

func paintPDF(p *gofpdf.Fpdf, b box, el canvas.Element) {
	switch v := el.(type) {
	case canvas.Stroke:
		paintPDFStroke(p, b, v)
	case canvas.Rect:
		ax, ay := b.at(v.A)
		bx, by := b.at(v.B)
		x, y := math.Min(ax, bx), math.Min(ay, by)
		w, h := math.Abs(bx-ax), math.Abs(by-ay)
		if v.Fill != nil {
			setFill(p, v.Fill)
			p.Rect(x, y, w, h, "F")
		}
		setStroke(p, b, v.Color, v.Style, v.Opacity)
		p.Rect(x, y, w, h, "D")
		resetAlpha(p)
	case canvas.Ellipse:
		ax, ay := b.at(v.A)
		bx, by := b.at(v.B)
		cx, cy := (ax+bx)/2, (ay+by)/2
		rx, ry := math.Abs(bx-ax)/2, math.Abs(by-ay)/2
		if v.Fill != nil {
			setFill(p, v.Fill)
			p.Ellipse(cx, cy, rx, ry, 0, "F")
		}
		setStroke(p, b, v.Color, v.Style, v.Opacity)
		p.Ellipse(cx, cy, rx, ry, 0, "D")
		resetAlpha(p)
	}
}

func paintPDFStroke(p *gofpdf.Fpdf, b box, v canvas.Stroke) {
	if len(v.Points) < 2 {
		return
	}
	setStroke(p, b, v.Color, v.Style, v.Opacity)
	x0, y0 := b.at(v.Points[0])
	for _, np := range v.Points[1:] {
		x1, y1 := b.at(np)
		p.Line(x0, y0, x1, y1)
		x0, y0 = x1, y1
	}
	if v.ArrowHead {
		paintPDFArrow(p, b, v)
	}
	resetAlpha(p)
}

// paintPDFArrow draws the open V at the final point, oriented by the
// direction from the point at 90% of the path to the final point, the same
// rule the raster renderer uses. The head is always solid.
func paintPDFArrow(p *gofpdf.Fpdf, b box, v canvas.Stroke) {
	n := len(v.Points)
	tx, ty := b.at(v.Points[n-1])
	idx := (n - 1) * 9 / 10
	ax, ay := b.at(v.Points[idx])
	for idx > 0 && ax == tx && ay == ty {
		idx--
		ax, ay = b.at(v.Points[idx])
	}
	if ax == tx && ay == ty {
		return
	}
	theta := math.Atan2(ty-ay, tx-ax)
	length := math.Min(b.w, b.h) * pdfArrowFrac
	p.SetDashPattern([]float64{}, 0)
	p.Line(tx-length*math.Cos(theta-barbAngle), ty-length*math.Sin(theta-barbAngle), tx, ty)
	p.Line(tx, ty, tx-length*math.Cos(theta+barbAngle), ty-length*math.Sin(theta+barbAngle))
}

func setStroke(p *gofpdf.Fpdf, b box, hex string, style canvas.LineStyle, opacity float64) {
	r, g, bl := rgb(hex)
	p.SetDrawColor(r, g, bl)
	p.SetAlpha(clamp01(opacity), "Normal")
	p.SetLineWidth(b.lineWidth())
	p.SetLineCapStyle("round")
	p.SetLineJoinStyle("round")
	if style == canvas.LineDashed {
		w := b.lineWidth()
		p.SetDashPattern([]float64{w * 3, w * 2}, 0)
	} else {
		p.SetDashPattern([]float64{}, 0)
	}
}

func setFill(p *gofpdf.Fpdf, f *canvas.FillStyle) {
	r, g, b := rgb(f.Color)
	p.SetFillColor(r, g, b)
	p.SetAlpha(clamp01(f.Opacity), "Normal")
}

func resetAlpha(p *gofpdf.Fpdf) {
	p.SetAlpha(1, "Normal")
}

// rgb parses a hex color through the same parser the raster renderer uses.
func rgb(hex string) (int, int, int) {
	c := gg.Hex(hex)
	return int(math.Round(c.R * 255)), int(math.Round(c.G * 255)), int(math.Round(c.B * 255))
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
