package harness

import (
	"context"
	"fmt"

	"github.com/filmroom/telestrator/internal/event"
	"github.com/filmroom/telestrator/internal/export"
	"github.com/filmroom/telestrator/internal/playback"
	"github.com/filmroom/telestrator/internal/script"
	"github.com/filmroom/telestrator/internal/store"
	"github.com/filmroom/telestrator/internal/transport"
)

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh in-memory database for isolation.
// The session script runs at virtual time, so the recorded log is a
// function of the script alone.
//
// Execution flow:
// 1. Record the session script into a fresh in-memory store
// 2. Read the persisted log back
// 3. Replay it against a fake player, collecting the transport trace
// 4. Evaluate assertions against trace and final state
func Run(scenario *Scenario) (*Result, error) {
	events, err := record(scenario.Script)
	if err != nil {
		return nil, err
	}

	target := events[len(events)-1].TimestampMS
	if scenario.SeekMS != nil {
		target = *scenario.SeekMS
	}

	trace, elements, final, err := replay(events, target)
	if err != nil {
		return nil, fmt.Errorf("replay failed: %w", err)
	}

	result := NewResult()
	result.Trace = trace
	result.Events = len(events)
	result.Elements = elements
	result.Final = final
	result.Digest = event.TraceDigest(trace)

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}

// record runs a session script into a fresh in-memory store and returns
// the persisted log. Reading the log back through the store exercises the
// same ordering contract replay depends on.
func record(scriptPath string) ([]event.Event, error) {
	sc, err := script.Load(scriptPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load script: %w", err)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()
	if _, err := script.Run(ctx, sc, st); err != nil {
		return nil, fmt.Errorf("session failed: %w", err)
	}

	events, err := st.ListEvents(ctx, sc.PointID)
	if err != nil {
		return nil, fmt.Errorf("failed to read log back: %w", err)
	}
	return events, nil
}

// replay scrubs a log to targetMS against a fake player and returns the
// issued transport calls, the committed element count, and the player
// state.
func replay(events []event.Event, targetMS int64) ([]string, int, transport.State, error) {
	player := transport.NewFake(export.VideoSpan(events))
	trace := []string{}
	ctrl := transport.Observe(player, func(c transport.Call) {
		trace = append(trace, c.String())
	})

	eng, err := playback.New(ctrl, playback.Discard)
	if err != nil {
		return nil, 0, transport.State{}, err
	}
	if err := eng.Load(events); err != nil {
		return nil, 0, transport.State{}, err
	}
	if err := eng.SeekTo(targetMS); err != nil {
		return nil, 0, transport.State{}, err
	}
	return trace, len(eng.Elements()), player.State(), nil
}
