package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filmroom/telestrator/internal/event"
)

func TestPrinciples_Coverage(t *testing.T) {
	principles := Principles()
	require.Len(t, principles, 3)

	names := make([]string, 0, len(principles))
	for _, p := range principles {
		names = append(names, p.Name)
		assert.NotEmpty(t, p.Description)
		assert.NotNil(t, p.Check)
	}
	assert.Contains(t, names, "replay-determinism")
	assert.Contains(t, names, "prefix-playable")
	assert.Contains(t, names, "wire-schema")
}

func TestPrinciples_HoldForRecordedSession(t *testing.T) {
	events, err := record(createTestScript(t, t.TempDir()))
	require.NoError(t, err)
	require.NotEmpty(t, events)

	for _, p := range Principles() {
		assert.NoError(t, p.Check(events), "principle %s", p.Name)
	}
}

func TestPrinciples_RejectHeadlessLog(t *testing.T) {
	// A log that never opened with recording_start.
	events := []event.Event{{
		ID:          "h-1",
		PointID:     "broken",
		Type:        event.TypePlay,
		TimestampMS: 0,
		Payload:     event.TransportPayload{VideoTimeSec: 3},
	}}

	for _, p := range Principles() {
		switch p.Name {
		case "wire-schema", "prefix-playable":
			assert.Error(t, p.Check(events), "principle %s", p.Name)
		}
	}
}

// writePrincipleScenario writes a scenario plus its script into dir.
func writePrincipleScenario(t *testing.T, dir string) string {
	t.Helper()
	createTestScript(t, dir)
	content := `
name: principle_case
description: "Session for principle checks"
script: session.yaml
assertions:
  - type: trace_count
    call: play
    count: 1
`
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestValidatePrinciples_AllPass(t *testing.T) {
	path := writePrincipleScenario(t, t.TempDir())

	result, err := ValidatePrinciples([]string{path})
	require.NoError(t, err)

	assert.Equal(t, 1, result.TotalScenarios)
	assert.Equal(t, 3, result.TotalChecks)
	assert.Equal(t, 3, result.Passed)
	assert.Equal(t, 0, result.Failed)
	assert.Empty(t, result.Failures)
}

func TestValidatePrinciples_MissingScenario(t *testing.T) {
	result, err := ValidatePrinciples([]string{"/nonexistent/scenario.yaml"})
	require.NoError(t, err)

	assert.Equal(t, 1, result.TotalScenarios)
	assert.Equal(t, 0, result.TotalChecks)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "scenario-load", result.Failures[0].Principle)
	assert.Contains(t, result.Failures[0].Error, "failed to read scenario file")
}

func TestValidatePrinciples_FixtureScenarios(t *testing.T) {
	paths := []string{
		filepath.Join("testdata", "scenarios", "paused_review.yaml"),
		filepath.Join("testdata", "scenarios", "slow_motion_review.yaml"),
	}

	result, err := ValidatePrinciples(paths)
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalScenarios)
	assert.Equal(t, 6, result.Passed)
	assert.Equal(t, 0, result.Failed)
}
