package harness

import "github.com/roach88/introspect/internal/ir"

// TraceEvent records one executed step. Exactly one of Value and Error is
// meaningful: Error holds the error code when the step failed.
type TraceEvent struct {
	Seq    int64    `json:"seq"`
	Op     string   `json:"op"`
	Target string   `json:"target,omitempty"`
	Value  ir.Value `json:"value,omitempty"`
	Error  string   `json:"error,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expect clause and assertion matched.
	Pass bool `json:"pass"`

	// Trace holds one event per step, in execution order.
	Trace []TraceEvent `json:"trace"`

	// Errors holds expectation and assertion failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Final holds the subject's field values after the last step.
	Final ir.Object `json:"final,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddValue appends a successful step to the trace.
func (r *Result) AddValue(seq int64, op, target string, v ir.Value) {
	r.Trace = append(r.Trace, TraceEvent{Seq: seq, Op: op, Target: target, Value: v})
}

// AddFailure appends a failed step to the trace.
func (r *Result) AddFailure(seq int64, op, target, code string) {
	r.Trace = append(r.Trace, TraceEvent{Seq: seq, Op: op, Target: target, Error: code})
}
