package harness

// Trace outcomes for reads, deletes and clears. Writes record the
// store.Outcome name (inserted, updated, rejected).
const (
	OutcomeFound   = "found"
	OutcomeAbsent  = "absent"
	OutcomeDeleted = "deleted"
	OutcomeCleared = "cleared"
)

// TraceEvent records one executed step.
type TraceEvent struct {
	Seq     int64  `json:"seq"`
	Op      string `json:"op"`
	Key     string `json:"key,omitempty"`
	Value   string `json:"value,omitempty"`
	Outcome string `json:"outcome,omitempty"`

	// Result is the step's payload: the value for get, the entries for
	// searches, the number for count and delete.
	Result any `json:"result,omitempty"`

	// Error is the store.ErrorCode of a failed step.
	Error string `json:"error,omitempty"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every expectation and assertion held.
	Pass bool `json:"pass"`

	RunID string `json:"run_id"`

	// Trace contains every step in execution order.
	Trace []TraceEvent `json:"trace"`

	// Errors lists expectation and assertion failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a passing result with an empty trace.
func NewResult(runID string) *Result {
	return &Result{
		Pass:   true,
		RunID:  runID,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a trace event.
func (r *Result) AddTrace(ev TraceEvent) {
	r.Trace = append(r.Trace, ev)
}
