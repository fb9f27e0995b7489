package event

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/filmroom/telestrator/internal/canvas"
	"github.com/filmroom/telestrator/internal/geom"
)

// Describe renders an event as a one-line summary, e.g.
// "3000ms change_speed rate=2". Trace output and golden fixtures use it;
// the wire form is MarshalEvent.
func Describe(e Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%dms %s", e.TimestampMS, e.Type)
	switch p := e.Payload.(type) {
	case StartPayload:
		fmt.Fprintf(&b, " video=%s rate=%s", num(p.InitialVideoTimeSec), num(p.InitialRate))
	case TransportPayload:
		fmt.Fprintf(&b, " video=%s", num(p.VideoTimeSec))
	case SeekPayload:
		fmt.Fprintf(&b, " from=%s to=%s", num(p.FromSec), num(p.ToSec))
	case SpeedPayload:
		fmt.Fprintf(&b, " rate=%s", num(p.Rate))
	case DrawPayload:
		b.WriteByte(' ')
		b.WriteString(describeElement(p.Element))
	case RawPayload:
		b.WriteString(" (unknown)")
	}
	return b.String()
}

// DescribeLog renders one Describe line per event, each newline-terminated.
func DescribeLog(events []Event) string {
	var b strings.Builder
	for _, e := range events {
		b.WriteString(Describe(e))
		b.WriteByte('\n')
	}
	return b.String()
}

func describeElement(el canvas.Element) string {
	switch v := el.(type) {
	case canvas.Stroke:
		s := fmt.Sprintf("stroke points=%d color=%s style=%s opacity=%s",
			len(v.Points), v.Color, v.Style, num(v.Opacity))
		if v.ArrowHead {
			s += " arrow"
		}
		return s
	case canvas.Rect:
		return describeShape("rect", v.A, v.B, v.Color, v.Style, v.Opacity, v.Fill)
	case canvas.Ellipse:
		return describeShape("ellipse", v.A, v.B, v.Color, v.Style, v.Opacity, v.Fill)
	}
	return "element"
}

func describeShape(kind string, a, b geom.NormPoint, color string, style canvas.LineStyle, opacity float64, fill *canvas.FillStyle) string {
	s := fmt.Sprintf("%s a=(%s,%s) b=(%s,%s) color=%s style=%s opacity=%s",
		kind, num(a.X), num(a.Y), num(b.X), num(b.Y), color, style, num(opacity))
	if fill != nil {
		s += fmt.Sprintf(" fill=%s/%s", fill.Color, num(fill.Opacity))
	}
	return s
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
