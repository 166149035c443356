package harness

import (
	"errors"

	"github.com/roach88/bouttime/internal/round"
	"github.com/roach88/bouttime/internal/sampler"
	"github.com/roach88/bouttime/internal/session"
	"github.com/roach88/bouttime/internal/testutil"
)

// Result is the outcome of a scenario run.
type Result struct {
	// Name is the scenario name.
	Name string `json:"name"`

	// Pass is true when every step expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace is every step marker and session notification in order:
	//
	//	> submit
	//	round_complete correct=true score=1 remaining=2
	Trace []string `json:"trace"`

	// Errors contains validation error messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Final is the session state after the last step.
	Final session.Snapshot `json:"-"`
}

// NewResult creates a new passing result.
func NewResult(name string) *Result {
	return &Result{
		Name:   name,
		Pass:   true,
		Trace:  []string{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Error codes used in traces and step expectations.
const (
	CodeInvalidState     = "invalid_state"
	CodeInvalidConfig    = "invalid_config"
	CodeIndexOutOfRange  = "index_out_of_range"
	CodeInsufficientData = "insufficient_data"
	CodeDrawsExhausted   = "draws_exhausted"
	CodeOther            = "error"
)

func knownErrorCode(code string) bool {
	switch code {
	case CodeInvalidState, CodeInvalidConfig, CodeIndexOutOfRange,
		CodeInsufficientData, CodeDrawsExhausted, CodeOther:
		return true
	}
	return false
}

// ErrorCode classifies a session error. Nil maps to "".
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case session.IsInvalidState(err):
		return CodeInvalidState
	case errors.Is(err, session.ErrInvalidConfig):
		return CodeInvalidConfig
	case round.IsIndexOutOfRange(err):
		return CodeIndexOutOfRange
	case sampler.IsInsufficientData(err):
		return CodeInsufficientData
	case errors.Is(err, testutil.ErrScriptExhausted):
		return CodeDrawsExhausted
	default:
		return CodeOther
	}
}
