package engine

import (
	"fmt"
)

// QuotaEnforcer counts executed instructions for one Run and enforces a
// maximum.
//
// A limit of 0 disables enforcement. Without a limit a program that never
// leaves a loop runs until its context is cancelled.
type QuotaEnforcer struct {
	maxSteps int
	current  int
}

// NewQuotaEnforcer creates a new quota enforcer with the given limit.
func NewQuotaEnforcer(maxSteps int) *QuotaEnforcer {
	return &QuotaEnforcer{maxSteps: maxSteps}
}

// Check increments the step counter and validates against the limit.
//
// Returns StepsExceededError if the quota is exceeded.
// Called before every executed instruction.
func (q *QuotaEnforcer) Check(pc int) error {
	q.current++
	if q.maxSteps > 0 && q.current > q.maxSteps {
		return &StepsExceededError{
			PC:    pc,
			Steps: q.current,
			Limit: q.maxSteps,
		}
	}
	return nil
}

// Current returns the current step count.
func (q *QuotaEnforcer) Current() int {
	return q.current
}

// StepsExceededError is returned when a run exceeds its step quota.
//
// The engine stops with the program counter on the instruction that would
// have exceeded the quota, so a later Run resumes there.
type StepsExceededError struct {
	PC    int // Instruction that was not executed
	Steps int // Number of steps attempted
	Limit int // Maximum allowed steps
}

// Error implements the error interface.
func (e *StepsExceededError) Error() string {
	return fmt.Sprintf("%s: run exceeded max steps quota: %d steps > %d limit (pc=%d)",
		ErrCodeStepsExceeded, e.Steps, e.Limit, e.PC)
}

// RuntimeError converts the quota error into the engine's RuntimeError form.
func (e *StepsExceededError) RuntimeError() *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeStepsExceeded,
		Message: fmt.Sprintf("run exceeded max steps (%d > %d)", e.Steps, e.Limit),
		PC:      e.PC,
		Err:     e,
	}
}
