package harness

import (
	"fmt"
	"slices"
)

// EvaluateAssertions checks every assertion against a scenario result and
// returns the failure messages. An empty slice means all assertions hold.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var failures []string
	for i, a := range assertions {
		if msg := evaluateAssertion(result, i, &a); msg != "" {
			failures = append(failures, msg)
		}
	}
	return failures
}

func evaluateAssertion(result *Result, index int, a *Assertion) string {
	switch a.Type {
	case AssertTraceContains:
		if !slices.Contains(result.Trace, a.Call) {
			return fmt.Sprintf("assertions[%d]: trace does not contain %q (trace: %v)", index, a.Call, result.Trace)
		}

	case AssertTraceOrder:
		if !inOrder(result.Trace, a.Calls) {
			return fmt.Sprintf("assertions[%d]: calls %v do not appear in order (trace: %v)", index, a.Calls, result.Trace)
		}

	case AssertTraceCount:
		n := 0
		for _, line := range result.Trace {
			if line == a.Call {
				n++
			}
		}
		if n != a.Count {
			return fmt.Sprintf("assertions[%d]: %q appears %d times, want %d", index, a.Call, n, a.Count)
		}

	case AssertFinalState:
		if a.Elements != nil && result.Elements != *a.Elements {
			return fmt.Sprintf("assertions[%d]: %d elements after replay, want %d", index, result.Elements, *a.Elements)
		}
		if a.Playing != nil && result.Final.Playing != *a.Playing {
			return fmt.Sprintf("assertions[%d]: playing=%v after replay, want %v", index, result.Final.Playing, *a.Playing)
		}
		if a.Rate != nil && result.Final.Rate != *a.Rate {
			return fmt.Sprintf("assertions[%d]: rate=%v after replay, want %v", index, result.Final.Rate, *a.Rate)
		}

	default:
		// Scenario validation rejects unknown types before execution.
		return fmt.Sprintf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return ""
}

// inOrder reports whether want appears as a subsequence of trace. Other
// calls may appear between the wanted ones.
func inOrder(trace, want []string) bool {
	next := 0
	for _, line := range trace {
		if next < len(want) && line == want[next] {
			next++
		}
	}
	return next == len(want)
}
