package engine

import (
	"cmp"
	"fmt"
	"slices"
)

// LoopErrorKind distinguishes the two ways brackets can be unbalanced.
type LoopErrorKind string

const (
	// LoopUnmatchedEnd is a ']' with no '[' before it.
	LoopUnmatchedEnd LoopErrorKind = "unmatched_end"

	// LoopUnclosedStart is a '[' never closed by a ']'.
	LoopUnclosedStart LoopErrorKind = "unclosed_start"
)

// LoopError locates one unbalanced bracket in a program.
type LoopError struct {
	Kind   LoopErrorKind `json:"kind"`
	Offset int           `json:"offset"` // byte offset, as used by the program counter
	Line   int           `json:"line"`   // 1-based
	Column int           `json:"column"` // 1-based, in bytes
}

func (e LoopError) Error() string {
	switch e.Kind {
	case LoopUnmatchedEnd:
		return fmt.Sprintf("%d:%d: ']' without matching '['", e.Line, e.Column)
	default:
		return fmt.Sprintf("%d:%d: '[' is never closed", e.Line, e.Column)
	}
}

// CheckLoops scans program for unbalanced brackets without running it.
//
// An unmatched ']' makes Run fail with ErrCodeUnmatchedLoopEnd once it is
// reached. An unclosed '[' is tolerated by Run but usually indicates a bug.
// Errors are returned in program order.
func CheckLoops(program string) []LoopError {
	type open struct {
		offset, line, col int
	}

	var (
		errs  []LoopError
		stack []open
		line  = 1
		col   = 0
	)

	for i := 0; i < len(program); i++ {
		col++
		switch program[i] {
		case '\n':
			line++
			col = 0
		case '[':
			stack = append(stack, open{offset: i, line: line, col: col})
		case ']':
			if len(stack) == 0 {
				errs = append(errs, LoopError{Kind: LoopUnmatchedEnd, Offset: i, Line: line, Column: col})
				continue
			}
			stack = stack[:len(stack)-1]
		}
	}

	for _, o := range stack {
		errs = append(errs, LoopError{Kind: LoopUnclosedStart, Offset: o.offset, Line: o.line, Column: o.col})
	}

	// Unclosed starts are appended after the scan; restore program order.
	slices.SortStableFunc(errs, func(a, b LoopError) int {
		return cmp.Compare(a.Offset, b.Offset)
	})
	return errs
}
