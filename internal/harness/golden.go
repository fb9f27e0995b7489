package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/filmroom/telestrator/internal/event"
)

// TraceSnapshot pins a scenario's replay trace for golden comparison.
// Serialized in canonical JSON so the fixture bytes are deterministic.
type TraceSnapshot struct {
	ScenarioName string   `json:"scenario_name"`
	Trace        []string `json:"trace"`
}

// RunWithGolden executes a scenario and compares the replay trace against
// a golden file. The golden file is stored in
// testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Golden files are the source of truth for expected replay behavior: a
// diff means either the pipeline's semantics changed or determinism broke.
//
// Returns error if scenario execution fails. Test failure (via goldie)
// occurs if the trace doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}

	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares the given result's trace against a golden file.
// This is useful when you've already run a scenario and want to compare
// the result without re-running.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := TraceSnapshot{
		ScenarioName: scenarioName,
		Trace:        result.Trace,
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	canonical, err := event.CanonicalJSON(data)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, canonical)

	return nil
}
