package harness

import (
	"fmt"
	"strconv"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes the run output to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	Output   string // Full output for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	fmt.Fprintf(&buf, "\nOutput: %s\n", strconv.Quote(e.Output))

	return buf.String()
}

// EvaluateAssertions checks every assertion against the result and returns
// the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluateAssertion(result, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluateAssertion(result *Result, a Assertion) error {
	switch a.Type {
	case AssertOutputEquals:
		return assertOutputEquals(result, a)
	case AssertOutputContains:
		return assertOutputContains(result, a)
	case AssertCell:
		return assertInt(result, a.Type, fmt.Sprintf("cell %d", a.Index), result.Cell(a.Index), a.Value)
	case AssertCursor:
		return assertInt(result, a.Type, "cursor", result.Cursor, a.Value)
	case AssertTapeLen:
		return assertInt(result, a.Type, "tape length", result.TapeLen, a.Value)
	case AssertErrorCode:
		return assertErrorCode(result, a)
	default:
		return fmt.Errorf("unknown assertion type: %s", a.Type)
	}
}

func assertOutputEquals(result *Result, a Assertion) error {
	want, _ := a.Value.(string)
	if result.Output == want {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: strconv.Quote(want),
		Actual:   strconv.Quote(result.Output),
		Output:   result.Output,
	}
}

func assertOutputContains(result *Result, a Assertion) error {
	want, _ := a.Value.(string)
	if strings.Contains(result.Output, want) {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("output containing %s", strconv.Quote(want)),
		Actual:   "not found in output",
		Output:   result.Output,
	}
}

func assertInt(result *Result, typ, what string, got int, value any) error {
	want, ok := value.(int)
	if !ok {
		return fmt.Errorf("%s: value must be an integer, got %T", typ, value)
	}
	if got == want {
		return nil
	}
	return &AssertionError{
		Type:     typ,
		Expected: fmt.Sprintf("%s = %d", what, want),
		Actual:   fmt.Sprintf("%s = %d", what, got),
		Output:   result.Output,
	}
}

func assertErrorCode(result *Result, a Assertion) error {
	want, _ := a.Value.(string)
	if result.ErrorCode == want {
		return nil
	}
	actual := "no error"
	if result.ErrorCode != "" {
		actual = result.ErrorCode
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("error code %q", want),
		Actual:   actual,
		Output:   result.Output,
	}
}
