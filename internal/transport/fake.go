package transport

import "sync"

// Fake is an in-memory Controller for tests and headless replay. Video time
// never advances on its own; Advance moves it the way a playing player
// would. Only commands the player accepts are recorded, so a test can
// assert both "nothing changed" and "nothing was applied" for an unready
// player.
type Fake struct {
	mu       sync.Mutex
	ready    bool
	duration float64
	state    State
	calls    []Call
}

// NewFake returns a ready, paused player at position 0 with rate 1.
func NewFake(durationSec float64) *Fake {
	return &Fake{
		ready:    true,
		duration: durationSec,
		state:    State{Rate: 1},
	}
}

// SetReady flips player readiness. An unready player ignores all commands.
func (f *Fake) SetReady(ready bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ready = ready
}

func (f *Fake) Ready() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ready
}

func (f *Fake) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Duration returns the video length in seconds.
func (f *Fake) Duration() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.duration
}

func (f *Fake) Play() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.ready {
		return
	}
	f.state.Playing = true
	f.calls = append(f.calls, Call{Op: OpPlay})
}

func (f *Fake) Pause() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.ready {
		return
	}
	f.state.Playing = false
	f.calls = append(f.calls, Call{Op: OpPause})
}

func (f *Fake) Seek(toSec float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.ready {
		return
	}
	f.state.CurrentSec = clamp(toSec, 0, f.duration)
	f.calls = append(f.calls, Call{Op: OpSeek, Arg: toSec})
}

func (f *Fake) SetRate(rate float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.ready || rate <= 0 {
		return
	}
	f.state.Rate = rate
	f.calls = append(f.calls, Call{Op: OpRate, Arg: rate})
}

// Advance moves video time forward by dt seconds of wall time, scaled by
// the rate, while playing. Reaching the end pauses the player.
func (f *Fake) Advance(dt float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.state.Playing {
		return
	}
	f.state.CurrentSec += dt * f.state.Rate
	if f.state.CurrentSec >= f.duration {
		f.state.CurrentSec = f.duration
		f.state.Playing = false
	}
}

// Calls returns the accepted commands in application order.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// Reset clears the recorded calls, keeping the player state.
func (f *Fake) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

func clamp(v, lo, hi float64) float64 {
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	}
	return v
}
