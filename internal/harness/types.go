package harness

// TraceEvent records one executed step.
type TraceEvent struct {
	Seq     int64          `json:"seq"` // 1-based step index
	Owner   string         `json:"owner"`
	Op      string         `json:"op"`
	Args    map[string]any `json:"args,omitempty"`
	Outcome string         `json:"outcome"` // OK or a program error code
	Records int            `json:"records"` // 0 unless the step succeeded
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass is true if every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace contains one event per flow step.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
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

// AddTrace appends a step's event.
func (r *Result) AddTrace(ev TraceEvent) {
	r.Trace = append(r.Trace, ev)
}
