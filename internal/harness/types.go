package harness

import (
	"github.com/roach88/bfi/internal/trace"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all assertions hold.
	Pass bool `json:"pass"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Output is the accumulated output of every segment.
	Output string `json:"output"`

	// Cursor, TapeLen and Tape describe the final machine state.
	Cursor  int    `json:"cursor"`
	TapeLen int    `json:"tape_len"`
	Tape    []byte `json:"-"`

	// Steps is the number of instructions executed over all segments.
	Steps int64 `json:"steps"`

	// ErrorCode is the runtime error code of the failing run, if any.
	ErrorCode string `json:"error_code,omitempty"`

	// Snapshot is the canonical form of the run, used for golden files.
	Snapshot trace.Snapshot `json:"-"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Cell returns cell i of the final tape, zero beyond its end.
func (r *Result) Cell(i int) int {
	if i < 0 || i >= len(r.Tape) {
		return 0
	}
	return int(r.Tape[i])
}
