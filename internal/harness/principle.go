package harness

import (
	"fmt"

	"github.com/filmroom/telestrator/internal/event"
	"github.com/filmroom/telestrator/internal/logschema"
)

// Principle is a named invariant every recorded session must satisfy,
// regardless of what the scenario asserts about its own outcome.
type Principle struct {
	// Name identifies the principle in failure reports.
	Name string

	// Description explains what the principle guarantees.
	Description string

	// Check validates a recorded log against the principle.
	Check func(events []event.Event) error
}

// Principles returns the invariants checked across every scenario.
func Principles() []Principle {
	return []Principle{
		{
			Name:        "replay-determinism",
			Description: "replaying a log twice produces identical transport traces",
			Check:       checkDeterminism,
		},
		{
			Name:        "prefix-playable",
			Description: "every prefix of a log loads and replays cleanly",
			Check:       checkPrefixes,
		},
		{
			Name:        "wire-schema",
			Description: "every recorded event conforms to the persisted payload schema",
			Check:       checkWireSchema,
		},
	}
}

// checkDeterminism replays the log twice and compares trace digests.
func checkDeterminism(events []event.Event) error {
	target := events[len(events)-1].TimestampMS

	first, _, _, err := replay(events, target)
	if err != nil {
		return err
	}
	second, _, _, err := replay(events, target)
	if err != nil {
		return fmt.Errorf("second replay: %w", err)
	}

	a, b := event.TraceDigest(first), event.TraceDigest(second)
	if a != b {
		return fmt.Errorf("trace digests differ: %s vs %s", a, b)
	}
	return nil
}

// checkPrefixes replays every prefix of the log. The recorder appends each
// event as it occurs, so a crashed session leaves some prefix behind and
// every prefix must replay.
func checkPrefixes(events []event.Event) error {
	for n := 1; n <= len(events); n++ {
		prefix := events[:n]
		if _, _, _, err := replay(prefix, prefix[n-1].TimestampMS); err != nil {
			return fmt.Errorf("prefix of %d events: %w", n, err)
		}
	}
	return nil
}

// checkWireSchema validates the log structure and every event's wire form.
func checkWireSchema(events []event.Event) error {
	if err := event.ValidateLog(events); err != nil {
		return err
	}
	for i, ev := range events {
		wire, err := event.MarshalEvent(ev)
		if err != nil {
			return fmt.Errorf("events[%d]: %w", i, err)
		}
		if err := logschema.Validate(wire); err != nil {
			return fmt.Errorf("events[%d]: %w", i, err)
		}
	}
	return nil
}

// PrincipleFailure represents a failed principle check.
type PrincipleFailure struct {
	Scenario  string `json:"scenario"`
	Principle string `json:"principle"`
	Error     string `json:"error"`
}

// ValidationResult contains results from validating principles across a
// set of scenarios.
type ValidationResult struct {
	TotalScenarios int                `json:"total_scenarios"`
	TotalChecks    int                `json:"total_checks"`
	Passed         int                `json:"passed"`
	Failed         int                `json:"failed"`
	Failures       []PrincipleFailure `json:"failures,omitempty"`
}

// ValidatePrinciples records each scenario's session and checks every
// principle against the recorded log. Returns a summary of results.
//
// A scenario that fails to load or record counts as one failure; its
// principles are not checked.
func ValidatePrinciples(scenarioPaths []string) (*ValidationResult, error) {
	principles := Principles()
	result := &ValidationResult{}

	for _, path := range scenarioPaths {
		result.TotalScenarios++

		scenario, err := LoadScenario(path)
		if err != nil {
			result.Failed++
			result.Failures = append(result.Failures, PrincipleFailure{
				Scenario:  path,
				Principle: "scenario-load",
				Error:     err.Error(),
			})
			continue
		}

		events, err := record(scenario.Script)
		if err != nil {
			result.Failed++
			result.Failures = append(result.Failures, PrincipleFailure{
				Scenario:  scenario.Name,
				Principle: "session-record",
				Error:     err.Error(),
			})
			continue
		}

		for _, p := range principles {
			result.TotalChecks++
			if err := p.Check(events); err != nil {
				result.Failed++
				result.Failures = append(result.Failures, PrincipleFailure{
					Scenario:  scenario.Name,
					Principle: p.Name,
					Error:     err.Error(),
				})
				continue
			}
			result.Passed++
		}
	}

	return result, nil
}
