package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filmroom/telestrator/internal/event"
	"github.com/filmroom/telestrator/internal/store"
)

const recordScriptYAML = `name: cli session
point_id: cli-p1
video:
  duration_sec: 60
surface:
  width: 640
  height: 360
steps:
  - at_ms: 0
    do: play
  - at_ms: 1000
    do: draw
    color: "#ff3b30"
    points: [[64, 36], [320, 180], [448, 288]]
  - at_ms: 2000
    do: pause
`

func writeScript(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestRecordMissingFlags(t *testing.T) {
	cmd := NewRecordCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestRecordSession(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "points.db")
	scriptPath := writeScript(t, recordScriptYAML)

	buf := &bytes.Buffer{}
	cmd := NewRecordCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath, "--script", scriptPath})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), `Recorded 4 events to point "cli-p1"`)
	assert.Contains(t, buf.String(), "1 drawings")

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()
	events, err := st.ListEvents(context.Background(), "cli-p1")
	require.NoError(t, err)
	require.Len(t, events, 4)
	require.NoError(t, event.ValidateLog(events))
	assert.Equal(t, event.TypeDraw, events[2].Type)
}

func TestRecordSessionJSON(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "points.db")
	scriptPath := writeScript(t, recordScriptYAML)

	buf := &bytes.Buffer{}
	cmd := NewRecordCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath, "--script", scriptPath})

	require.NoError(t, cmd.Execute())

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "cli-p1", data["point"])
	assert.Equal(t, float64(4), data["events"])
	assert.Equal(t, float64(1), data["drawings"])
	assert.Equal(t, float64(2000), data["duration_ms"])
}

func TestRecordVerboseTrace(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "points.db")
	scriptPath := writeScript(t, recordScriptYAML)

	buf := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}
	cmd := NewRecordCommand(&RootOptions{Format: "text", Verbose: true})
	cmd.SetOut(buf)
	cmd.SetErr(errBuf)
	cmd.SetArgs([]string{"--db", dbPath, "--script", scriptPath})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, errBuf.String(), "recording_start")
	assert.Contains(t, errBuf.String(), "draw stroke points=3")
}

func TestRecordMissingScript(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "points.db")

	cmd := NewRecordCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--db", dbPath, "--script", filepath.Join(t.TempDir(), "absent.yaml")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load script")
}

func TestRecordInvalidScript(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "points.db")
	scriptPath := writeScript(t, "name: bad\npoint_id: p\nvideo:\n  duration_sec: -1\nsurface:\n  width: 10\n  height: 10\n")

	cmd := NewRecordCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--db", dbPath, "--script", scriptPath})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRecordUnknownDriver(t *testing.T) {
	scriptPath := writeScript(t, recordScriptYAML)

	cmd := NewRecordCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--db", "x.db", "--script", scriptPath, "--driver", "oracle"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "unknown driver")
}
