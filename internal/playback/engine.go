// Package playback reconstructs a recorded session from its event log.
//
// The engine walks the log behind a virtual elapsed-time clock. Forward
// playback applies each event at most once, in log order, when its
// timestamp is reached: transport events are reissued against the
// controller, draw events extend the committed element list and repaint.
// Seeking is the one operation that rescans: it clears the element list,
// reapplies every event up to the target, and repaints once.
//
// Replaying the same log twice produces the same transport call sequence
// and the same final element list. Ticks only decide when an event is
// applied, never whether or in what order.
package playback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/filmroom/telestrator/internal/canvas"
	"github.com/filmroom/telestrator/internal/event"
	"github.com/filmroom/telestrator/internal/transport"
)

// DefaultTickInterval is the Run loop's tick period, comfortably above
// human event rate.
const DefaultTickInterval = 33 * time.Millisecond

// State is the engine lifecycle state.
type State string

const (
	// StateStopped means no playback position: either nothing is loaded
	// or Stop reset the engine.
	StateStopped State = "stopped"
	// StateLoading means a validated log is loaded and waiting for the
	// first Play.
	StateLoading State = "loading"
	// StatePlaying means the elapsed clock is running and Tick applies
	// due events.
	StatePlaying State = "playing"
	// StatePaused means the elapsed clock is frozen.
	StatePaused State = "paused"
)

// ErrNoLog is returned by Play and SeekTo before a log has been loaded.
var ErrNoLog = errors.New("playback: no log loaded")

// Clock supplies wall time for elapsed tracking. Tests substitute a
// manual clock.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock driving elapsed time. Default is the system
// clock.
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// Engine replays one event log against a transport controller and a
// renderer.
//
// All methods are safe for concurrent use; event applications are totally
// ordered by the mutex.
type Engine struct {
	mu       sync.Mutex
	ctrl     transport.Controller
	renderer Renderer
	clock    Clock

	state    State
	log      []event.Event
	cursor   int
	elements []canvas.Element

	// elapsedBase accumulates elapsed playback time up to the start of
	// the current playing stretch; playStartedAt marks that start.
	elapsedBase   int64
	playStartedAt time.Time
}

// New creates an Engine bound to a controller and a renderer.
func New(ctrl transport.Controller, r Renderer, opts ...Option) (*Engine, error) {
	if ctrl == nil {
		return nil, fmt.Errorf("playback: transport controller is required")
	}
	if r == nil {
		return nil, fmt.Errorf("playback: renderer is required")
	}

	e := &Engine{
		ctrl:     ctrl,
		renderer: r,
		clock:    systemClock{},
		state:    StateStopped,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Load validates and installs a log, resetting any previous playback
// position. A malformed log is rejected with *event.MalformedLogError
// before any transport or renderer call; the engine state is unchanged.
func (e *Engine) Load(events []event.Event) error {
	if err := event.ValidateLog(events); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	log := make([]event.Event, len(events))
	copy(log, events)

	e.log = log
	e.cursor = 0
	e.elements = nil
	e.elapsedBase = 0
	e.state = StateLoading

	slog.Info("log loaded",
		"point_id", log[0].PointID,
		"events", len(log),
		"duration_ms", log[len(log)-1].TimestampMS,
	)
	return nil
}

// Play starts or resumes the elapsed clock.
func (e *Engine) Play() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.log == nil {
		return ErrNoLog
	}
	if e.state == StatePlaying {
		return nil
	}

	e.state = StatePlaying
	e.playStartedAt = e.clock.Now()
	slog.Debug("playback playing", "elapsed_ms", e.elapsedBase, "cursor", e.cursor)
	return nil
}

// Pause freezes the elapsed clock. No events apply until resumed.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StatePlaying {
		return
	}

	e.elapsedBase += e.clock.Now().Sub(e.playStartedAt).Milliseconds()
	e.state = StatePaused
	slog.Debug("playback paused", "elapsed_ms", e.elapsedBase, "cursor", e.cursor)
}

// Stop resets the playback position and clears the committed elements.
// The log stays loaded; Play starts over from elapsed zero.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateStopped {
		return
	}

	e.state = StateStopped
	e.cursor = 0
	e.elements = nil
	e.elapsedBase = 0
	slog.Debug("playback stopped")
}

// Tick applies every not-yet-applied event whose timestamp has been
// reached. It is a no-op unless playing.
func (e *Engine) Tick() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StatePlaying {
		return nil
	}

	elapsed := e.elapsedBase + e.clock.Now().Sub(e.playStartedAt).Milliseconds()
	return e.applyThroughLocked(elapsed, true)
}

// SeekTo rescans the log from the start: the element list is rebuilt from
// scratch, every event at or before targetMs is applied in order, and the
// renderer is invoked exactly once. The elapsed clock continues from
// targetMs.
func (e *Engine) SeekTo(targetMs int64) error {
	if targetMs < 0 {
		return fmt.Errorf("playback: negative seek target %d", targetMs)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.log == nil {
		return ErrNoLog
	}

	e.cursor = 0
	e.elements = nil
	if err := e.applyThroughLocked(targetMs, false); err != nil {
		return err
	}

	e.elapsedBase = targetMs
	if e.state == StatePlaying {
		e.playStartedAt = e.clock.Now()
	}

	slog.Debug("playback seeked",
		"target_ms", targetMs,
		"cursor", e.cursor,
		"elements", len(e.elements),
	)
	return e.renderLocked()
}

// applyThroughLocked applies events up to and including elapsedMs. The
// cursor advances before each application so an event is never applied
// twice, even when a render fails mid-batch. Caller holds e.mu.
func (e *Engine) applyThroughLocked(elapsedMs int64, renderDraws bool) error {
	for e.cursor < len(e.log) && e.log[e.cursor].TimestampMS <= elapsedMs {
		ev := e.log[e.cursor]
		e.cursor++
		if err := e.applyLocked(ev, renderDraws); err != nil {
			return err
		}
	}
	return nil
}

// applyLocked applies a single event. Transport commands go through even
// when the controller is unready: the controller drops them silently and
// the cursor has already moved on, which is accepted drift rather than an
// error. Caller holds e.mu.
func (e *Engine) applyLocked(ev event.Event, renderDraws bool) error {
	switch p := ev.Payload.(type) {
	case event.StartPayload:
		e.ctrl.Seek(p.InitialVideoTimeSec)
		e.ctrl.SetRate(p.InitialRate)

	case event.TransportPayload:
		if ev.Type == event.TypePlay {
			e.ctrl.Play()
		} else {
			e.ctrl.Pause()
		}

	case event.SeekPayload:
		e.ctrl.Seek(p.ToSec)

	case event.SpeedPayload:
		e.ctrl.SetRate(p.Rate)

	case event.DrawPayload:
		e.elements = append(e.elements, p.Element)
		if renderDraws {
			return e.renderLocked()
		}

	case event.RawPayload:
		slog.Warn("skipping unknown event type",
			"event_type", string(ev.Type),
			"id", ev.ID,
			"timestamp_ms", ev.TimestampMS,
		)
	}
	return nil
}

func (e *Engine) renderLocked() error {
	if err := e.renderer.Render(e.elements); err != nil {
		return fmt.Errorf("playback: render: %w", err)
	}
	return nil
}

// Run drives Tick on a ticker until the context is cancelled, the engine
// is stopped, or the whole log has been applied. A non-positive interval
// uses DefaultTickInterval.
func (e *Engine) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("playback loop starting", "interval_ms", interval.Milliseconds())
	for {
		select {
		case <-ctx.Done():
			slog.Info("playback loop stopping", "reason", "context cancelled")
			return ctx.Err()

		case <-ticker.C:
			if err := e.Tick(); err != nil {
				slog.Error("tick failed", "error", err)
				continue
			}
			if e.State() == StateStopped {
				slog.Info("playback loop stopping", "reason", "stopped")
				return nil
			}
			if e.Finished() {
				slog.Info("playback loop stopping", "reason", "log exhausted")
				return nil
			}
		}
	}
}

// State returns the engine lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Elapsed returns the current elapsed playback position in milliseconds.
func (e *Engine) Elapsed() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StatePlaying {
		return e.elapsedBase + e.clock.Now().Sub(e.playStartedAt).Milliseconds()
	}
	return e.elapsedBase
}

// Elements returns a copy of the committed element list.
func (e *Engine) Elements() []canvas.Element {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]canvas.Element, len(e.elements))
	copy(out, e.elements)
	return out
}

// Cursor returns how many events have been applied.
func (e *Engine) Cursor() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cursor
}

// Finished reports whether every event in the loaded log has been applied.
func (e *Engine) Finished() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.log != nil && e.cursor == len(e.log)
}
