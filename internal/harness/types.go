package harness

import (
	"github.com/roach88/inboxsim/internal/event"
	"github.com/roach88/inboxsim/internal/world"
)

// TraceEvent is one journaled event of a scenario run.
type TraceEvent struct {
	Seq      uint64         `json:"seq"`
	Tick     uint64         `json:"tick"`
	SimNowMs int64          `json:"sim_now_ms"`
	Kind     event.Kind     `json:"kind"`
	Payload  map[string]any `json:"payload,omitempty"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true if every assertion held.
	Pass bool `json:"pass"`

	// Trace contains every event in publish order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains assertion failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Snapshot is the final world state.
	Snapshot world.Snapshot `json:"snapshot"`

	// StepErrors are system failures reported by ticks. They do not fail
	// the scenario on their own.
	StepErrors []string `json:"step_errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
