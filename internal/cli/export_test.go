package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportMissingFlags(t *testing.T) {
	cmd := NewExportCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--db", "x.db"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestExportPNG(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "points.db")
	outPath := filepath.Join(dir, "frame.png")
	seedPoint(t, dbPath, "p1")

	buf := &bytes.Buffer{}
	cmd := NewExportCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath, "--point", "p1", "--out", outPath})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), `Exported point "p1"`)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	require.Greater(t, len(data), 8)
	assert.Equal(t, "\x89PNG\r\n\x1a\n", string(data[:8]))
}

func TestExportPNGAtTimestamp(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "points.db")
	seedPoint(t, dbPath, "p1")

	// Before the stroke committed: blank canvas, still a valid frame.
	outPath := filepath.Join(dir, "early.png")
	cmd := NewExportCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--db", dbPath, "--point", "p1", "--out", outPath, "--at", "500"})

	require.NoError(t, cmd.Execute())
	_, err := os.Stat(outPath)
	require.NoError(t, err)
}

func TestExportPDF(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "points.db")
	outPath := filepath.Join(dir, "sheet.pdf")
	seedPoint(t, dbPath, "p1")

	buf := &bytes.Buffer{}
	cmd := NewExportCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath, "--point", "p1", "--out", outPath})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "Exported point")

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	require.Greater(t, len(data), 4)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestExportUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "points.db")
	seedPoint(t, dbPath, "p1")

	cmd := NewExportCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--db", dbPath, "--point", "p1", "--out", filepath.Join(dir, "frame.gif")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "unsupported output extension")
}

func TestExportUnknownPoint(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "points.db")
	seedPoint(t, dbPath, "p1")

	cmd := NewExportCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--db", dbPath, "--point", "ghost", "--out", filepath.Join(dir, "x.png")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), `point "ghost" not found`)
}

func TestExportJSON(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "points.db")
	outPath := filepath.Join(dir, "frame.png")
	seedPoint(t, dbPath, "p1")

	buf := &bytes.Buffer{}
	cmd := NewExportCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath, "--point", "p1", "--out", outPath})

	require.NoError(t, cmd.Execute())

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "p1", data["point"])
	assert.Equal(t, "png", data["kind"])
	// --at defaults to the session end.
	assert.Equal(t, float64(4000), data["at_ms"])
	assert.Equal(t, float64(1280), data["width"])
	assert.Equal(t, float64(720), data["height"])
}
