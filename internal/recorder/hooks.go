package recorder

import (
	"context"
	"errors"
	"log/slog"

	"github.com/filmroom/telestrator/internal/canvas"
	"github.com/filmroom/telestrator/internal/transport"
)

// TransportObserver returns an observer that records every transport
// command issued against c. Observers fire before the command reaches the
// player, so c.State() still reports the pre-command position; that is
// where a seek's from-position comes from.
//
// The returned observer has no caller to hand errors to, so append
// failures are logged and stay in the pending queue.
func (r *Recorder) TransportObserver(ctx context.Context, c transport.Controller) transport.Observer {
	return func(call transport.Call) {
		at := c.State().CurrentSec

		var err error
		switch call.Op {
		case transport.OpPlay:
			err = r.Play(ctx, at)
		case transport.OpPause:
			err = r.Pause(ctx, at)
		case transport.OpSeek:
			err = r.Seek(ctx, at, call.Arg)
		case transport.OpRate:
			err = r.RateChange(ctx, call.Arg)
		}
		warnSkipped(err, "transport event not recorded", "op", string(call.Op))
	}
}

// CommitHook returns a board commit callback that records each committed
// element as a draw event.
func (r *Recorder) CommitHook(ctx context.Context) func(canvas.Element) {
	return func(el canvas.Element) {
		err := r.DrawCommitted(ctx, el)
		warnSkipped(err, "draw event not recorded")
	}
}

// warnSkipped logs an emission failure unless the session is simply not
// open, which is a normal state for a hook to observe.
func warnSkipped(err error, msg string, args ...any) {
	if err == nil || errors.Is(err, ErrNotRecording) || errors.Is(err, ErrEnded) {
		return
	}
	slog.Warn(msg, append(args, "error", err)...)
}
