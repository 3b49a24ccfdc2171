package harness

import "github.com/roach88/cooksync/internal/engine"

// TraceEvent records one executed step.
type TraceEvent struct {
	Step   int    `json:"step"`
	Action string `json:"action"`
	RunID  string `json:"run_id,omitempty"`

	// Stats is set for sync steps that completed.
	Stats       *engine.Stats `json:"stats,omitempty"`
	NeedsResync bool          `json:"needs_resync,omitempty"`

	// Aborted is set for sync steps the host rejected. The scene was left
	// as it was before the step.
	Aborted bool   `json:"aborted,omitempty"`
	Error   string `json:"-"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every expect clause and assertion matched.
	Pass bool `json:"pass"`

	// Trace contains one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Scenes holds the scene dump before any step (index 0) and after
	// every step.
	Scenes []string `json:"-"`

	// Resyncs counts empty-cook resync requests raised by the passes.
	Resyncs int `json:"resyncs"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
		Scenes: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// FinalScene returns the dump of the scene after the last step.
func (r *Result) FinalScene() string {
	if len(r.Scenes) == 0 {
		return ""
	}
	return r.Scenes[len(r.Scenes)-1]
}
