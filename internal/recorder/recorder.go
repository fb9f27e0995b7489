// Package recorder turns live session activity into an ordered event log.
//
// A Recorder binds one coaching point to an event store. Begin opens the
// session with a recording_start event at elapsed time zero; every
// subsequent transport change and committed drawing becomes exactly one
// event stamped with the elapsed session time and is appended to the store
// as it occurs. A crash therefore loses at most the events whose append was
// still in flight: everything already appended is a valid replayable
// prefix.
//
// Events that fail to append stay in a pending queue, keep their IDs, and
// are resubmitted in order by Retry. The store's idempotent append makes a
// duplicate submission harmless.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/filmroom/telestrator/internal/canvas"
	"github.com/filmroom/telestrator/internal/event"
	"github.com/filmroom/telestrator/internal/store"
)

// Clock supplies wall time. Production uses SystemClock; tests substitute
// a manual clock to stamp events at exact elapsed offsets.
type Clock interface {
	Now() time.Time
}

// SystemClock reads time.Now.
type SystemClock struct{}

// Now returns the current wall time.
func (SystemClock) Now() time.Time { return time.Now() }

// Publisher receives every emitted event for live fan-out. Implemented by
// the websocket hub.
type Publisher interface {
	Publish(pointID string, ev event.Event)
}

var (
	// ErrNotRecording is returned when emitting before Begin.
	ErrNotRecording = errors.New("recorder: session not started")
	// ErrEnded is returned when emitting after End.
	ErrEnded = errors.New("recorder: session ended")
	// ErrAlreadyStarted is returned by a second Begin.
	ErrAlreadyStarted = errors.New("recorder: session already started")
)

// Option configures a Recorder.
type Option func(*Recorder)

// WithClock sets the clock used to stamp events. Default is SystemClock.
func WithClock(c Clock) Option {
	return func(r *Recorder) { r.clock = c }
}

// WithIDGenerator sets the event ID generator. Default is UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(r *Recorder) { r.ids = g }
}

// WithPublisher sets a publisher that sees each event as it is emitted.
func WithPublisher(p Publisher) Option {
	return func(r *Recorder) { r.pub = p }
}

// Recorder captures one recording session for one coaching point.
//
// All methods are safe for concurrent use. Events are totally ordered by
// the mutex: the timestamp and log position of an event are decided in the
// same critical section.
type Recorder struct {
	mu      sync.Mutex
	pointID string
	store   store.EventStore
	clock   Clock
	ids     IDGenerator
	pub     Publisher

	started bool
	ended   bool
	startAt time.Time
	events  []event.Event
	pending []event.Event
}

// New creates a Recorder for the given coaching point.
func New(pointID string, st store.EventStore, opts ...Option) (*Recorder, error) {
	if pointID == "" {
		return nil, fmt.Errorf("recorder: point id is required")
	}
	if st == nil {
		return nil, fmt.Errorf("recorder: store is required")
	}

	r := &Recorder{
		pointID: pointID,
		store:   st,
		clock:   SystemClock{},
		ids:     UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Begin opens the session. The recording_start event captures the video
// position and rate at the moment recording began and is always stamped
// at elapsed time zero.
func (r *Recorder) Begin(ctx context.Context, initialVideoSec, rate float64) error {
	if rate <= 0 {
		return fmt.Errorf("recorder: initial rate must be positive, got %v", rate)
	}

	r.mu.Lock()
	if r.ended {
		r.mu.Unlock()
		return ErrEnded
	}
	if r.started {
		r.mu.Unlock()
		return ErrAlreadyStarted
	}
	r.started = true
	r.startAt = r.clock.Now()

	ev := event.Event{
		ID:      r.ids.Generate(),
		PointID: r.pointID,
		Type:    event.TypeRecordingStart,
		Payload: event.StartPayload{
			InitialVideoTimeSec: initialVideoSec,
			InitialRate:         rate,
		},
	}
	err := r.deliver(ctx, ev)

	slog.Info("recording started",
		"point_id", r.pointID,
		"initial_video_time_sec", initialVideoSec,
		"initial_rate", rate,
	)
	return err
}

// Play records that the video started playing at videoSec.
func (r *Recorder) Play(ctx context.Context, videoSec float64) error {
	return r.emit(ctx, event.TypePlay, event.TransportPayload{VideoTimeSec: videoSec})
}

// Pause records that the video paused at videoSec.
func (r *Recorder) Pause(ctx context.Context, videoSec float64) error {
	return r.emit(ctx, event.TypePause, event.TransportPayload{VideoTimeSec: videoSec})
}

// Seek records a jump from fromSec to toSec.
func (r *Recorder) Seek(ctx context.Context, fromSec, toSec float64) error {
	return r.emit(ctx, event.TypeSeek, event.SeekPayload{FromSec: fromSec, ToSec: toSec})
}

// RateChange records a playback rate change. Non-positive rates are
// rejected: a log containing one could never replay.
func (r *Recorder) RateChange(ctx context.Context, rate float64) error {
	if rate <= 0 {
		return fmt.Errorf("recorder: rate must be positive, got %v", rate)
	}
	return r.emit(ctx, event.TypeChangeSpeed, event.SpeedPayload{Rate: rate})
}

// DrawCommitted records a committed drawing element.
func (r *Recorder) DrawCommitted(ctx context.Context, el canvas.Element) error {
	if el == nil {
		return fmt.Errorf("recorder: element is required")
	}
	return r.emit(ctx, event.TypeDraw, event.DrawPayload{Element: el})
}

// emit stamps one event with the current elapsed session time and records
// it.
func (r *Recorder) emit(ctx context.Context, t event.Type, p event.Payload) error {
	r.mu.Lock()
	if r.ended {
		r.mu.Unlock()
		return ErrEnded
	}
	if !r.started {
		r.mu.Unlock()
		return ErrNotRecording
	}

	ev := event.Event{
		ID:          r.ids.Generate(),
		PointID:     r.pointID,
		Type:        t,
		TimestampMS: r.clock.Now().Sub(r.startAt).Milliseconds(),
		Payload:     p,
	}
	return r.deliver(ctx, ev)
}

// deliver appends ev to the session log, flushes the pending queue to the
// store, and publishes. Called with r.mu held; releases it. The publisher
// runs outside the lock so it may call back into the recorder.
func (r *Recorder) deliver(ctx context.Context, ev event.Event) error {
	r.events = append(r.events, ev)
	r.pending = append(r.pending, ev)
	err := r.flushLocked(ctx)
	pub := r.pub
	r.mu.Unlock()

	slog.Debug("event recorded",
		"point_id", ev.PointID,
		"event_type", string(ev.Type),
		"timestamp_ms", ev.TimestampMS,
		"id", ev.ID,
	)
	if pub != nil {
		pub.Publish(r.pointID, ev)
	}
	return err
}

// flushLocked appends all pending events to the store in one call. On
// failure the queue is kept intact for a later Retry. Caller holds r.mu.
func (r *Recorder) flushLocked(ctx context.Context) error {
	if len(r.pending) == 0 {
		return nil
	}
	if err := r.store.Append(ctx, r.pending); err != nil {
		slog.Warn("event append failed, queued for retry",
			"point_id", r.pointID,
			"pending", len(r.pending),
			"error", err,
		)
		return fmt.Errorf("recorder: append events: %w", err)
	}
	r.pending = nil
	return nil
}

// Retry resubmits events whose store append previously failed, in their
// original order. Valid after End: retrying is persistence, not emission.
func (r *Recorder) Retry(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flushLocked(ctx)
}

// End seals the session. Emission after End fails with ErrEnded; pending
// store appends can still be retried.
func (r *Recorder) End() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ended {
		return
	}
	r.ended = true
	slog.Info("recording ended",
		"point_id", r.pointID,
		"events", len(r.events),
		"pending", len(r.pending),
	)
}

// Events returns a copy of the session log so far, including events not
// yet durably appended.
func (r *Recorder) Events() []event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]event.Event, len(r.events))
	copy(out, r.events)
	return out
}

// Pending reports how many events still await a successful store append.
func (r *Recorder) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// Recording reports whether the session is open for emission.
func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.started && !r.ended
}
