package harness

import "github.com/filmroom/telestrator/internal/transport"

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall scenario success.
	// True if all assertions hold.
	Pass bool `json:"pass"`

	// Trace contains the transport calls the replay issued, in order.
	// Used by trace assertions and golden comparison.
	Trace []string `json:"trace"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Events is the number of events the session recorded.
	Events int `json:"events"`

	// Elements is the number of committed drawings after replay.
	Elements int `json:"elements"`

	// Final is the player state after replay.
	Final transport.State `json:"final"`

	// Digest is the trace digest; identical logs replay to identical digests.
	Digest string `json:"digest"`
}

// NewResult creates a new passing result.
// Used as the starting point for scenario execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []string{},
		Errors: []string{},
	}
}

// AddError adds an assertion failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
