package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/filmroom/telestrator/internal/canvas"
	"github.com/filmroom/telestrator/internal/event"
	"github.com/filmroom/telestrator/internal/geom"
	"github.com/filmroom/telestrator/internal/store"
)

// coachingLog is a small valid session: start, play, one stroke, pause.
func coachingLog(pointID string) []event.Event {
	return []event.Event{
		{ID: pointID + "-1", PointID: pointID, Type: event.TypeRecordingStart, TimestampMS: 0,
			Payload: event.StartPayload{InitialVideoTimeSec: 10, InitialRate: 1}},
		{ID: pointID + "-2", PointID: pointID, Type: event.TypePlay, TimestampMS: 0,
			Payload: event.TransportPayload{VideoTimeSec: 10}},
		{ID: pointID + "-3", PointID: pointID, Type: event.TypeDraw, TimestampMS: 1500,
			Payload: event.DrawPayload{Element: canvas.Stroke{
				Points:  []geom.NormPoint{{X: 0.1, Y: 0.1}, {X: 0.4, Y: 0.3}, {X: 0.6, Y: 0.5}},
				Color:   "#ff3b30",
				Style:   canvas.LineSolid,
				Opacity: 1,
			}}},
		{ID: pointID + "-4", PointID: pointID, Type: event.TypePause, TimestampMS: 4000,
			Payload: event.TransportPayload{VideoTimeSec: 14}},
	}
}

// seedPoint writes a log straight into a SQLite store, bypassing the
// recorder, and returns what was written.
func seedPoint(t *testing.T, dbPath, pointID string) []event.Event {
	t.Helper()
	return seedEvents(t, dbPath, coachingLog(pointID))
}

// seedEvents appends arbitrary events, valid or not. The store does not
// validate, which lets tests plant malformed logs.
func seedEvents(t *testing.T, dbPath string, events []event.Event) []event.Event {
	t.Helper()
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()
	require.NoError(t, st.Append(context.Background(), events))
	return events
}
