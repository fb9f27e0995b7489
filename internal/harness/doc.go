// Package harness provides scenario-based conformance testing for the whole
// recording pipeline: a scenario records a scripted session into a fresh
// store, replays the persisted log, and validates the replay outcome.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	script: relative/path/to/session.yaml
//	seek_ms: 2500            # optional replay target, default session end
//	assertions:
//	  - type: trace_contains
//	    call: "seek 12"
//	  - type: trace_order
//	    calls: ["play", "pause"]
//	  - type: trace_count
//	    call: play
//	    count: 1
//	  - type: final_state
//	    elements: 1
//	    playing: false
//
// The script path is resolved relative to the scenario file.
//
// # Assertion Types
//
// The following assertion types are supported:
//
//   - trace_contains: Verifies a transport call appears in the replay trace
//   - trace_order: Verifies calls appear in the given relative order
//   - trace_count: Verifies a call appears exactly N times
//   - final_state: Verifies element count and transport state after replay
//
// # Deterministic Testing
//
// Each scenario runs against a fresh in-memory SQLite store at virtual time,
// so the recorded log and the replay trace are functions of the script alone.
// Identical traces across runs make golden file comparison possible; see
// RunWithGolden.
//
// # Principles
//
// Beyond per-scenario assertions, Principles names the invariants every
// recorded session must satisfy (replay determinism, prefix playability,
// wire-schema conformance). ValidatePrinciples checks them across a set of
// scenario files.
package harness
