package harness

// StepOutcome records what one step did.
type StepOutcome struct {
	Index       int    `json:"index"`
	Kind        string `json:"kind"` // "edge" or "position"
	Key         string `json:"key"`
	Applied     bool   `json:"applied"`
	Saved       bool   `json:"saved"`
	Fingerprint string `json:"fingerprint,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every step expectation and assertion held.
	Pass bool `json:"pass"`

	Steps []StepOutcome `json:"steps"`

	// Errors contains validation error messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Snapshots holds the canonical JSON of each golden view, keyed by
	// golden file name.
	Snapshots map[string][]byte `json:"-"`

	// Fingerprint of the canonical graph after the last step.
	Fingerprint string `json:"fingerprint"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:      true,
		Steps:     []StepOutcome{},
		Errors:    []string{},
		Snapshots: make(map[string][]byte),
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
