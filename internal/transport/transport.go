// Package transport defines the video player port. The engine never talks
// to a player directly; it issues transport commands through a Controller
// and reads position and rate back through State.
package transport

import "strconv"

// State is a snapshot of the video transport.
type State struct {
	Playing    bool
	CurrentSec float64
	Rate       float64
}

// Controller is the boundary to the video player. Implementations wrap a
// real player; Fake stands in for tests and headless replay.
//
// Commands issued before the player is ready are silently ignored. Seek
// targets are clamped into [0, duration]. SetRate ignores non-positive
// rates. None of the commands report errors: a transport command is an
// instruction to a live player, not a request with an outcome.
type Controller interface {
	Ready() bool
	State() State
	Play()
	Pause()
	Seek(toSec float64)
	SetRate(rate float64)
}

// Op names an observed transport command.
type Op string

const (
	OpPlay  Op = "play"
	OpPause Op = "pause"
	OpSeek  Op = "seek"
	OpRate  Op = "rate"
)

// Call is one issued transport command. Arg holds the seek target or the
// rate; it is zero for play and pause.
type Call struct {
	Op  Op
	Arg float64
}

// String renders the call as a trace line fragment, e.g. "seek 13.4".
func (c Call) String() string {
	switch c.Op {
	case OpSeek, OpRate:
		return string(c.Op) + " " + strconv.FormatFloat(c.Arg, 'g', -1, 64)
	}
	return string(c.Op)
}

// Observer receives every command issued through an observed controller.
type Observer func(Call)

// Observe wraps c so that fn sees each command in issue order, before it
// reaches c. Observation covers what the caller issued, not what the player
// accepted: replay traces must be a function of the log alone, not of
// player readiness.
func Observe(c Controller, fn Observer) Controller {
	return &observed{inner: c, fn: fn}
}

type observed struct {
	inner Controller
	fn    Observer
}

func (o *observed) Ready() bool  { return o.inner.Ready() }
func (o *observed) State() State { return o.inner.State() }

func (o *observed) Play() {
	o.fn(Call{Op: OpPlay})
	o.inner.Play()
}

func (o *observed) Pause() {
	o.fn(Call{Op: OpPause})
	o.inner.Pause()
}

func (o *observed) Seek(toSec float64) {
	o.fn(Call{Op: OpSeek, Arg: toSec})
	o.inner.Seek(toSec)
}

func (o *observed) SetRate(rate float64) {
	o.fn(Call{Op: OpRate, Arg: rate})
	o.inner.SetRate(rate)
}
