package engine

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Load when the program file does not exist.
var ErrNotFound = errors.New("program not found")

// RuntimeError represents an error detected while executing a program.
//
// Runtime errors include:
//   - Unmatched loop end: ']' executed with an empty loop stack
//   - No input: ',' executed without an input source
//   - Input exhausted: the input source reported end of input
//   - Steps exceeded: the run exceeded its step quota
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// PC is the program counter of the instruction that failed.
	PC int

	// Err is the underlying cause, if any.
	Err error
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeUnmatchedLoopEnd indicates ']' ran with no open '['.
	ErrCodeUnmatchedLoopEnd RuntimeErrorCode = "UNMATCHED_LOOP_END"

	// ErrCodeNoInput indicates ',' ran on an engine without an input source.
	ErrCodeNoInput RuntimeErrorCode = "NO_INPUT"

	// ErrCodeInputExhausted indicates the input source has no more lines.
	ErrCodeInputExhausted RuntimeErrorCode = "INPUT_EXHAUSTED"

	// ErrCodeStepsExceeded indicates the run exceeded its step quota.
	ErrCodeStepsExceeded RuntimeErrorCode = "STEPS_EXCEEDED"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (pc=%d): %v", e.Code, e.Message, e.PC, e.Err)
	}
	return fmt.Sprintf("%s: %s (pc=%d)", e.Code, e.Message, e.PC)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// CodeOf returns the RuntimeErrorCode carried by err, or "" if err is not
// a RuntimeError.
func CodeOf(err error) RuntimeErrorCode {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}

// IsUnmatchedLoopError returns true if the error is an unmatched ']' error.
// Uses errors.As to handle wrapped errors.
func IsUnmatchedLoopError(err error) bool {
	return CodeOf(err) == ErrCodeUnmatchedLoopEnd
}

// IsStepsExceededError returns true if the run hit its step quota.
// Matches both RuntimeError with ErrCodeStepsExceeded and StepsExceededError.
func IsStepsExceededError(err error) bool {
	if CodeOf(err) == ErrCodeStepsExceeded {
		return true
	}
	var se *StepsExceededError
	return errors.As(err, &se)
}

func newUnmatchedLoopError(pc int) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeUnmatchedLoopEnd,
		Message: "']' without matching '['",
		PC:      pc,
	}
}

func newInputError(pc int, err error) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeInputExhausted,
		Message: "input source has no more lines",
		PC:      pc,
		Err:     err,
	}
}
