package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines one conformance test: record the referenced session
// script into a fresh store, replay the persisted log, and check the
// assertions against the replay outcome.
type Scenario struct {
	// Name uniquely identifies this scenario; golden fixtures key off it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Script is the path to the session script to record, resolved
	// relative to the scenario file location.
	Script string `yaml:"script"`

	// SeekMS is the replay target in session milliseconds. Nil replays to
	// the session end.
	SeekMS *int64 `yaml:"seek_ms,omitempty"`

	// Assertions validate the replay trace and final state.
	// Supported types: trace_contains, trace_order, trace_count, final_state
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion validates the replay trace or the final replay state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "trace_contains": Check a transport call appears in the trace
	// - "trace_order": Check calls appear in the given relative order
	// - "trace_count": Check a call appears exactly N times
	// - "final_state": Check element count and transport state after replay
	Type string `yaml:"type"`

	// Call is the transport call line, e.g. "seek 12" or "play"
	// (used by trace_contains and trace_count).
	Call string `yaml:"call,omitempty"`

	// Calls is the expected relative call order (used by trace_order).
	// Other calls may appear between them.
	Calls []string `yaml:"calls,omitempty"`

	// Count is the expected number of occurrences (used by trace_count).
	Count int `yaml:"count,omitempty"`

	// final_state fields. Unset fields are not checked.
	Elements *int     `yaml:"elements,omitempty"`
	Playing  *bool    `yaml:"playing,omitempty"`
	Rate     *float64 `yaml:"rate,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalState    = "final_state"
)

// ScriptNotFoundError is returned when a scenario references a session
// script that doesn't exist.
type ScriptNotFoundError struct {
	Scenario     string
	ScriptPath   string
	ResolvedPath string
}

func (e *ScriptNotFoundError) Error() string {
	return fmt.Sprintf(
		"scenario %q references script file %q which does not exist (resolved to: %s)",
		e.Scenario,
		e.ScriptPath,
		e.ResolvedPath,
	)
}

// LoadScenario reads and parses a scenario YAML file. The script path is
// resolved relative to the scenario file's directory. Returns an error if
// the file doesn't exist, is malformed, contains unknown fields (typos),
// or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Script != "" && !filepath.IsAbs(scenario.Script) {
		scenario.Script = filepath.Join(filepath.Dir(path), scenario.Script)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Script == "" {
		return fmt.Errorf("script is required")
	}

	if _, err := os.Stat(s.Script); os.IsNotExist(err) {
		return &ScriptNotFoundError{
			Scenario:     s.Name,
			ScriptPath:   filepath.Base(s.Script),
			ResolvedPath: s.Script,
		}
	}

	if s.SeekMS != nil && *s.SeekMS < 0 {
		return fmt.Errorf("seek_ms must not be negative")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Call == "" {
			return fmt.Errorf("assertions[%d]: call is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Calls) == 0 {
			return fmt.Errorf("assertions[%d]: calls list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Call == "" {
			return fmt.Errorf("assertions[%d]: call is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertFinalState:
		if a.Elements == nil && a.Playing == nil && a.Rate == nil {
			return fmt.Errorf("assertions[%d]: final_state needs at least one of elements, playing, rate", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
