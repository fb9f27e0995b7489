package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filmroom/telestrator/internal/event"
	"github.com/filmroom/telestrator/internal/store"
)

func TestReplayMissingDatabaseFlag(t *testing.T) {
	cmd := NewReplayCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestReplayEmptyDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "empty.db")
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	st.Close()

	buf := &bytes.Buffer{}
	cmd := NewReplayCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "No points found")
}

func TestReplayAllPoints(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "points.db")
	seedPoint(t, dbPath, "p1")
	seedPoint(t, dbPath, "p2")

	buf := &bytes.Buffer{}
	cmd := NewReplayCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	assert.Contains(t, output, "2 point(s)")
	assert.Contains(t, output, "Point: p1")
	assert.Contains(t, output, "Point: p2")
	assert.Contains(t, output, "Events: 4, drawings: 1, duration: 4000ms")
}

func TestReplayVerify(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "points.db")
	seedPoint(t, dbPath, "p1")

	buf := &bytes.Buffer{}
	cmd := NewReplayCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath, "--point", "p1", "--verify"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "All replays verified deterministic")
}

func TestReplayVerifyJSON(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "points.db")
	seedPoint(t, dbPath, "p1")

	buf := &bytes.Buffer{}
	cmd := NewReplayCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath, "--verify"})

	require.NoError(t, cmd.Execute())

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, data["all_deterministic"])
	assert.Equal(t, true, data["verified"])
	assert.Equal(t, float64(1), data["total_points"])
}

func TestReplayVerboseTrace(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "points.db")
	seedPoint(t, dbPath, "p1")

	buf := &bytes.Buffer{}
	cmd := NewReplayCommand(&RootOptions{Format: "text", Verbose: true})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath, "--point", "p1"})

	require.NoError(t, cmd.Execute())

	// recording_start replays as a seek plus a rate change.
	output := buf.String()
	assert.Contains(t, output, "> seek 10")
	assert.Contains(t, output, "> rate 1")
	assert.Contains(t, output, "> play")
	assert.Contains(t, output, "> pause")
	assert.Contains(t, output, "Trace digest: ")
}

func TestReplayUnknownPoint(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "points.db")
	seedPoint(t, dbPath, "p1")

	cmd := NewReplayCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--db", dbPath, "--point", "ghost"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "not found")
}

func TestReplayMalformedLog(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "points.db")
	// A log that never opened with recording_start.
	seedEvents(t, dbPath, []event.Event{
		{ID: "x-1", PointID: "broken", Type: event.TypePlay, TimestampMS: 0,
			Payload: event.TransportPayload{VideoTimeSec: 0}},
	})

	cmd := NewReplayCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--db", dbPath, "--point", "broken"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "malformed")
}

func TestReplayNonExistentDatabase(t *testing.T) {
	cmd := NewReplayCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--db", "/nonexistent/path/points.db"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open database")
}

func TestReplayHelpText(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewReplayCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--help"})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	assert.Contains(t, output, "--db")
	assert.Contains(t, output, "--point")
	assert.Contains(t, output, "--verify")
	assert.Contains(t, output, "trace digests")
}
