// Package capture implements the interactive drawing board used during a
// live session: pointer gestures become committed drawing elements.
//
// The board is a two-state machine. A pointer-down enters the drawing
// state; pointer movement extends the gesture; pointer-up leaves the
// drawing state and either commits one element or discards the gesture.
// Committed elements are appended to the working set and reported through
// the commit callback, which is where the recorder hooks in.
package capture

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/filmroom/telestrator/internal/canvas"
	"github.com/filmroom/telestrator/internal/geom"
)

// MoveThreshold is the minimum pointer travel in pixels before a freehand
// point is buffered or a dragged shape counts as non-degenerate. Jitter
// below it never changes the gesture.
const MoveThreshold = 4.0

// DefaultResizeDelay is how long a repaint waits after the last resize, so
// a drag-resize repaints once instead of per intermediate size.
const DefaultResizeDelay = 100 * time.Millisecond

// DefaultColor is the stroke color a fresh board draws with.
const DefaultColor = "#ff3b30"

// Mode selects what a pointer gesture produces.
type Mode string

const (
	// ModePen commits freehand strokes.
	ModePen Mode = "pen"
	// ModeArrow commits freehand strokes with an arrow head at the end.
	ModeArrow Mode = "arrow"
	// ModeRect commits a rectangle spanning the drag.
	ModeRect Mode = "rect"
	// ModeEllipse commits an ellipse inscribed in the drag.
	ModeEllipse Mode = "ellipse"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	switch m {
	case ModePen, ModeArrow, ModeRect, ModeEllipse:
		return true
	}
	return false
}

// CommitFunc receives each committed element at the moment of commit.
type CommitFunc func(canvas.Element)

// Option configures a Board.
type Option func(*Board)

// WithMode sets the initial tool mode. Default is ModePen.
func WithMode(m Mode) Option {
	return func(b *Board) { b.mode = m }
}

// WithColor sets the stroke color as a hex string.
func WithColor(hex string) Option {
	return func(b *Board) { b.color = hex }
}

// WithStyle sets the line style. Default is solid.
func WithStyle(s canvas.LineStyle) Option {
	return func(b *Board) { b.style = s }
}

// WithOpacity sets the stroke opacity in [0, 1]. Default is 1.
func WithOpacity(o float64) Option {
	return func(b *Board) { b.opacity = o }
}

// WithFill sets the interior paint for rect and ellipse commits.
func WithFill(f *canvas.FillStyle) Option {
	return func(b *Board) { b.fill = f }
}

// WithResizeDelay sets the repaint debounce after a resize. Zero repaints
// synchronously, which tests rely on.
func WithResizeDelay(d time.Duration) Option {
	return func(b *Board) { b.resizeDelay = d }
}

// WithCommit sets the commit callback.
func WithCommit(fn CommitFunc) Option {
	return func(b *Board) { b.commit = fn }
}

// Board is the interactive drawing surface state machine.
//
// All methods are safe for concurrent use, though pointer events are
// expected from a single UI goroutine in practice.
type Board struct {
	mu          sync.Mutex
	surface     *canvas.Surface
	mode        Mode
	color       string
	style       canvas.LineStyle
	opacity     float64
	fill        *canvas.FillStyle
	commit      CommitFunc
	resizeDelay time.Duration

	committed   []canvas.Element
	drawing     bool
	points      []geom.Point // freehand buffer, pixel space
	anchor      geom.Point
	cursor      geom.Point
	resizeTimer *time.Timer
	closed      bool
}

// New creates a Board drawing onto surface.
func New(surface *canvas.Surface, opts ...Option) (*Board, error) {
	if surface == nil {
		return nil, errors.New("capture: surface is required")
	}
	b := &Board{
		surface:     surface,
		mode:        ModePen,
		color:       DefaultColor,
		style:       canvas.LineSolid,
		opacity:     1,
		resizeDelay: DefaultResizeDelay,
	}
	for _, opt := range opts {
		opt(b)
	}
	if !b.mode.Valid() {
		return nil, fmt.Errorf("capture: unknown mode %q", b.mode)
	}
	if !b.style.Valid() {
		return nil, fmt.Errorf("capture: unknown line style %q", b.style)
	}
	if b.commit == nil {
		b.commit = func(canvas.Element) {}
	}
	return b, nil
}

// BeginAt starts a gesture at a pixel position. A pointer-down while a
// gesture is already in progress is ignored.
func (b *Board) BeginAt(p geom.Point) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed || b.drawing {
		return
	}
	b.drawing = true
	b.points = append(b.points[:0], p)
	b.anchor = p
	b.cursor = p
}

// MoveTo extends the gesture to a new pixel position. Freehand modes buffer
// the point and paint the new segment only when it travels at least
// MoveThreshold from the last buffered point; shape modes update the drag
// corner and repaint the preview.
func (b *Board) MoveTo(p geom.Point) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.drawing {
		return
	}
	switch b.mode {
	case ModePen, ModeArrow:
		last := b.points[len(b.points)-1]
		if geom.Dist(last, p) < MoveThreshold {
			return
		}
		b.points = append(b.points, p)
		if err := b.surface.Segment(last, p, b.color, b.opacity); err != nil {
			slog.Warn("segment paint failed", "error", err)
		}
	case ModeRect, ModeEllipse:
		b.cursor = p
		b.repaintLocked(b.previewLocked())
	}
}

// End finishes the gesture. It returns the committed element, or nil when
// the gesture was discarded: a freehand path with fewer than two buffered
// points, or a shape drag below MoveThreshold. The commit callback runs
// after the board state is settled.
func (b *Board) End() canvas.Element {
	b.mu.Lock()
	if !b.drawing {
		b.mu.Unlock()
		return nil
	}
	b.drawing = false

	var el canvas.Element
	switch b.mode {
	case ModePen, ModeArrow:
		if len(b.points) >= 2 {
			el = b.strokeLocked()
		}
	case ModeRect, ModeEllipse:
		if geom.Dist(b.anchor, b.cursor) >= MoveThreshold {
			el = b.shapeLocked()
		}
	}
	b.points = b.points[:0]
	if el != nil {
		b.committed = append(b.committed, el)
	}
	b.repaintLocked(nil)
	fn := b.commit
	b.mu.Unlock()

	if el != nil {
		fn(el)
	}
	return el
}

// Drawing reports whether a gesture is in progress.
func (b *Board) Drawing() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.drawing
}

// Elements returns a snapshot of the committed elements in commit order.
func (b *Board) Elements() []canvas.Element {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]canvas.Element, len(b.committed))
	copy(out, b.committed)
	return out
}

// SetElements replaces the working set and repaints. Loading a stored point
// for further annotation goes through here.
func (b *Board) SetElements(els []canvas.Element) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.drawing {
		return
	}
	b.committed = append(b.committed[:0], els...)
	b.repaintLocked(nil)
}

// UndoLast removes the most recently committed element and repaints. It
// reports whether anything was removed. Undo edits the live working set
// only; recorded draw events are never rewritten.
func (b *Board) UndoLast() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.drawing || len(b.committed) == 0 {
		return false
	}
	b.committed = b.committed[:len(b.committed)-1]
	b.repaintLocked(nil)
	return true
}

// Clear discards every committed element and blanks the surface.
func (b *Board) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.drawing {
		return
	}
	b.committed = b.committed[:0]
	b.repaintLocked(nil)
}

// SetMode switches the tool for the next gesture. Ignored while drawing.
func (b *Board) SetMode(m Mode) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.drawing || !m.Valid() {
		return
	}
	b.mode = m
}

// SetColor changes the stroke color for the next gesture. Ignored while
// drawing.
func (b *Board) SetColor(hex string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.drawing || hex == "" {
		return
	}
	b.color = hex
}

// SetStyle changes the line style for the next gesture. Ignored while
// drawing.
func (b *Board) SetStyle(s canvas.LineStyle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.drawing || !s.Valid() {
		return
	}
	b.style = s
}

// SetOpacity changes the stroke opacity for the next gesture. Ignored while
// drawing.
func (b *Board) SetOpacity(o float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.drawing || o < 0 || o > 1 {
		return
	}
	b.opacity = o
}

// SetFill changes the shape fill for the next gesture. Ignored while
// drawing.
func (b *Board) SetFill(f *canvas.FillStyle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.drawing {
		return
	}
	b.fill = f
}

// Surface returns the board's drawing surface.
func (b *Board) Surface() *canvas.Surface {
	return b.surface
}

// HandleResize applies a new surface size. An in-progress gesture is
// discarded without committing. The repaint of committed elements is
// debounced by the resize delay; until it fires the surface is blank.
func (b *Board) HandleResize(size geom.Size) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return errors.New("capture: board is closed")
	}
	if b.drawing {
		b.drawing = false
		b.points = b.points[:0]
		slog.Debug("resize discarded in-progress gesture")
	}
	if err := b.surface.Resize(size); err != nil {
		return err
	}
	if b.resizeTimer != nil {
		b.resizeTimer.Stop()
		b.resizeTimer = nil
	}
	if b.resizeDelay <= 0 {
		b.repaintLocked(nil)
		return nil
	}
	b.resizeTimer = time.AfterFunc(b.resizeDelay, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.closed {
			return
		}
		b.repaintLocked(nil)
	})
	return nil
}

// Close stops any pending repaint timer. The board ignores gestures after
// Close; the surface remains usable by its owner.
func (b *Board) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	b.drawing = false
	if b.resizeTimer != nil {
		b.resizeTimer.Stop()
		b.resizeTimer = nil
	}
	return nil
}

func (b *Board) strokeLocked() canvas.Element {
	size := b.surface.Size()
	pts := make([]geom.NormPoint, len(b.points))
	for i, p := range b.points {
		pts[i] = geom.Normalize(p, size).Clamp()
	}
	return canvas.Stroke{
		Points:    pts,
		Color:     b.color,
		Style:     b.style,
		Opacity:   b.opacity,
		ArrowHead: b.mode == ModeArrow,
	}
}

func (b *Board) shapeLocked() canvas.Element {
	size := b.surface.Size()
	a := geom.Normalize(b.anchor, size).Clamp()
	c := geom.Normalize(b.cursor, size).Clamp()
	var fill *canvas.FillStyle
	if b.fill != nil {
		f := *b.fill
		fill = &f
	}
	if b.mode == ModeRect {
		return canvas.Rect{A: a, B: c, Color: b.color, Style: b.style, Opacity: b.opacity, Fill: fill}
	}
	return canvas.Ellipse{A: a, B: c, Color: b.color, Style: b.style, Opacity: b.opacity, Fill: fill}
}

func (b *Board) previewLocked() canvas.Element {
	return b.shapeLocked()
}

func (b *Board) repaintLocked(preview canvas.Element) {
	els := b.committed
	if preview != nil {
		els = append(append(make([]canvas.Element, 0, len(b.committed)+1), b.committed...), preview)
	}
	if err := canvas.Render(b.surface, els); err != nil {
		slog.Warn("repaint failed", "elements", len(els), "error", err)
	}
}
