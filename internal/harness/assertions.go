package harness

import (
	"fmt"
	"slices"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string   // Assertion type for categorization
	Expected string   // Human-readable expected outcome
	Actual   string   // Human-readable actual outcome
	Trace    []string // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for i, line := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s\n", i+1, line)
	}

	return buf.String()
}

// assertTraceContains checks that the line appears in the trace.
func assertTraceContains(trace []string, assertion Assertion) error {
	if slices.Contains(trace, assertion.Line) {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: fmt.Sprintf("line %q", assertion.Line),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks that lines appear in the specified order.
// Lines don't need to be consecutive (intervening lines are allowed).
func assertTraceOrder(trace []string, assertion Assertion) error {
	pos := 0
	for _, want := range assertion.Lines {
		i := slices.Index(trace[pos:], want)
		if i < 0 {
			actual := fmt.Sprintf("missing line: %q", want)
			if slices.Contains(trace, want) {
				actual = fmt.Sprintf("%q appears only before its predecessor", want)
			}
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("lines in order: %q", assertion.Lines),
				Actual:   actual,
				Trace:    trace,
			}
		}
		pos += i + 1
	}
	return nil
}

// assertTraceCount checks that exactly Count lines start with Prefix.
func assertTraceCount(trace []string, assertion Assertion) error {
	count := 0
	for _, line := range trace {
		if strings.HasPrefix(line, assertion.Prefix) {
			count++
		}
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d lines starting with %q", assertion.Count, assertion.Prefix),
			Actual:   fmt.Sprintf("%d lines", count),
			Trace:    trace,
		}
	}
	return nil
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, assertion)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, assertion)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	return errs
}
