package script

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/filmroom/telestrator/internal/canvas"
	"github.com/filmroom/telestrator/internal/capture"
	"github.com/filmroom/telestrator/internal/event"
	"github.com/filmroom/telestrator/internal/geom"
	"github.com/filmroom/telestrator/internal/recorder"
	"github.com/filmroom/telestrator/internal/store"
	"github.com/filmroom/telestrator/internal/transport"
)

// Result is what running a script produced.
type Result struct {
	// Events is the recorded log, recording_start first.
	Events []event.Event
	// Elements is the board working set when the session ended.
	Elements []canvas.Element
}

// Option configures a run.
type Option func(*runConfig)

type runConfig struct {
	ids recorder.IDGenerator
}

// WithIDGenerator overrides event ID assignment. Golden tests use it for
// stable IDs.
func WithIDGenerator(ids recorder.IDGenerator) Option {
	return func(c *runConfig) { c.ids = ids }
}

// stepClock is the script's virtual timeline. Run is the only goroutine
// touching it.
type stepClock struct {
	now time.Time
}

func (c *stepClock) Now() time.Time { return c.now }

// Run executes a script and persists the resulting log to st. The session
// runs at virtual time: a step at at_ms 5000 is stamped 5000 no matter how
// long the run takes, and between steps the video advances exactly as a
// playing player would have.
//
// When the store rejects an append the recorded events are still returned
// alongside the error, so a caller can report what was lost.
func Run(ctx context.Context, s *Script, st store.EventStore, opts ...Option) (*Result, error) {
	cfg := runConfig{ids: recorder.UUIDv7Generator{}}
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("invalid script: %w", err)
	}

	surface, err := canvas.NewSurface(geom.Size{Width: s.Surface.Width, Height: s.Surface.Height})
	if err != nil {
		return nil, err
	}
	defer surface.Close()

	clock := &stepClock{now: time.Unix(0, 0).UTC()}
	rec, err := recorder.New(s.PointID, st,
		recorder.WithClock(clock),
		recorder.WithIDGenerator(cfg.ids),
	)
	if err != nil {
		return nil, err
	}

	// The player is positioned before recording begins, the way a live
	// session has a player long before the coach hits record.
	player := transport.NewFake(s.Video.DurationSec)
	player.Seek(s.Video.InitialSec)
	player.SetRate(s.Video.InitialRate)
	ctrl := transport.Observe(player, rec.TransportObserver(ctx, player))

	board, err := capture.New(surface,
		capture.WithCommit(rec.CommitHook(ctx)),
		capture.WithResizeDelay(0),
	)
	if err != nil {
		return nil, err
	}
	defer board.Close()

	if err := rec.Begin(ctx, s.Video.InitialSec, s.Video.InitialRate); err != nil {
		return nil, err
	}

	var prevMS int64
	for i, step := range s.Steps {
		player.Advance(float64(step.AtMS-prevMS) / 1000)
		clock.now = clock.now.Add(time.Duration(step.AtMS-prevMS) * time.Millisecond)
		prevMS = step.AtMS

		if err := apply(ctrl, board, step); err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
	}
	rec.End()

	res := &Result{Events: rec.Events(), Elements: board.Elements()}
	if n := rec.Pending(); n > 0 {
		return res, fmt.Errorf("%d events were not persisted", n)
	}
	slog.Info("script run complete",
		"script", s.Name, "point_id", s.PointID, "events", len(res.Events))
	return res, nil
}

func apply(ctrl transport.Controller, board *capture.Board, step Step) error {
	switch step.Do {
	case DoPlay:
		ctrl.Play()
	case DoPause:
		ctrl.Pause()
	case DoSeek:
		ctrl.Seek(step.ToSec)
	case DoSpeed:
		ctrl.SetRate(step.Rate)
	case DoDraw:
		return draw(board, step)
	case DoResize:
		return board.HandleResize(geom.Size{Width: step.Width, Height: step.Height})
	default:
		return fmt.Errorf("unknown action %q", step.Do)
	}
	return nil
}

// draw replays one pointer gesture. Tool settings named on the step apply
// first; fill is cleared again after the gesture.
func draw(board *capture.Board, step Step) error {
	if step.Mode != "" {
		board.SetMode(capture.Mode(step.Mode))
	}
	if step.Color != "" {
		board.SetColor(step.Color)
	}
	if step.LineStyle != "" {
		board.SetStyle(canvas.LineStyle(step.LineStyle))
	}
	if step.Opacity != nil {
		board.SetOpacity(*step.Opacity)
	}
	if step.Fill != nil {
		board.SetFill(&canvas.FillStyle{Color: step.Fill.Color, Opacity: step.Fill.Opacity})
		defer board.SetFill(nil)
	}

	board.BeginAt(point(step.Points[0]))
	for _, p := range step.Points[1:] {
		board.MoveTo(point(p))
	}
	if board.End() == nil {
		return errors.New("gesture was discarded")
	}
	return nil
}

func point(p [2]float64) geom.Point {
	return geom.Point{X: p[0], Y: p[1]}
}
