package harness

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bouttime/internal/catalog"
	"github.com/roach88/bouttime/internal/round"
	"github.com/roach88/bouttime/internal/sampler"
	"github.com/roach88/bouttime/internal/session"
	"github.com/roach88/bouttime/internal/testutil"
)

func intp(v int) *int    { return &v }
func boolp(v bool) *bool { return &v }

func letterEvents() []catalog.Event {
	return []catalog.Event{
		{Name: "A", Detail: "https://example.org/a", Order: 1},
		{Name: "B", Detail: "https://example.org/b", Order: 2},
		{Name: "C", Detail: "https://example.org/c", Order: 3},
		{Name: "D", Detail: "https://example.org/d", Order: 4},
	}
}

func TestRun_ScenarioFiles(t *testing.T) {
	files, err := Discover("testdata/scenarios", "")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		t.Run(file, func(t *testing.T) {
			scenario, err := LoadScenario(file)
			require.NoError(t, err)

			result, err := Run(scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v\ntrace:\n%s", result.Errors, FormatTrace(result.Trace))
		})
	}
}

func TestRun_Deterministic(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/expired_round.yaml")
	require.NoError(t, err)

	first, err := Run(scenario)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Run(scenario)
		require.NoError(t, err)
		require.Equal(t, first.Trace, again.Trace, "run %d", i+2)
	}
}

func TestRun_SeededDrawsRepeat(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/seeded_default.yaml")
	require.NoError(t, err)

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)
	assert.Equal(t, first.Trace, second.Trace)
}

func TestRun_FinalSnapshot(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/solved_rounds.yaml")
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.Equal(t, "solved-rounds", result.Final.ID)
	assert.Equal(t, session.SessionComplete, result.Final.Phase)
	assert.Equal(t, 2, result.Final.Score)
	assert.Equal(t, 2, result.Final.RoundNumber)
	assert.Nil(t, result.Final.Events)
}

func TestRun_FailedExpectations(t *testing.T) {
	scenario := &Scenario{
		Name:        "failing",
		Description: "Every check is wrong",
		Rounds:      1,
		Seconds:     5,
		Events:      letterEvents(),
		Draws:       [][]int{{1, 0, 2, 3}},
		Steps: []Step{
			{Start: true, Expect: &Expect{Phase: "round_complete"}},
			{Submit: true, Expect: &Expect{Correct: boolp(true), Score: intp(1)}},
			{Submit: true},
			{Detail: intp(0), Expect: &Expect{Detail: "https://example.org/a"}},
		},
		Final: &Expect{Phase: "session_complete"},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)

	require.Len(t, result.Errors, 6)
	assert.Equal(t, "steps[0] start rounds=1 seconds=5: expected phase round_complete, got in_round", result.Errors[0])
	assert.Equal(t, "steps[1] submit: expected correct=true, got false", result.Errors[1])
	assert.Equal(t, "steps[1] submit: expected score 1, got 0", result.Errors[2])
	assert.Contains(t, result.Errors[3], "steps[2] submit: unexpected error: submit: not allowed in phase round_complete")
	assert.Equal(t, `steps[3] detail 0: expected detail "https://example.org/a", got "https://example.org/b"`, result.Errors[4])
	assert.Equal(t, "final: expected phase session_complete, got round_complete", result.Errors[5])
}

func TestRun_TraceAssertionFailure(t *testing.T) {
	scenario := &Scenario{
		Name:        "assertion",
		Description: "Trace assertion does not hold",
		Rounds:      1,
		Seconds:     5,
		Events:      letterEvents(),
		Draws:       [][]int{{0, 1, 2, 3}},
		Steps:       []Step{{Start: true}},
		Assertions:  []Assertion{{Type: AssertTraceContains, Line: "tick 5"}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Assertion failed: trace_contains")
}

func TestRun_ExpectedErrorMissing(t *testing.T) {
	scenario := &Scenario{
		Name:        "no_error",
		Description: "Start succeeds where an error was expected",
		Rounds:      1,
		Seconds:     5,
		Events:      letterEvents(),
		Draws:       [][]int{{0, 1, 2, 3}},
		Steps:       []Step{{Start: true, Expect: &Expect{Error: CodeInvalidState}}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, `steps[0] start rounds=1 seconds=5: expected error "invalid_state", got ""`, result.Errors[0])
}

func TestRun_CatalogErrors(t *testing.T) {
	_, err := Run(&Scenario{
		Name:    "bad",
		Catalog: "testdata/catalogs/missing.yaml",
		Steps:   []Step{{Start: true}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load catalog")

	var resErr *catalog.ResourceError
	assert.ErrorAs(t, err, &resErr)

	_, err = Run(&Scenario{
		Name:   "dup",
		Events: []catalog.Event{{Name: "A", Order: 1}, {Name: "B", Order: 1}},
		Steps:  []Step{{Start: true}},
	})
	var fmtErr *catalog.FormatError
	require.ErrorAs(t, err, &fmtErr)
	assert.Equal(t, "order", fmtErr.Field)
}

func TestRun_InsufficientCatalog(t *testing.T) {
	result, err := Run(&Scenario{
		Name:    "small",
		Rounds:  1,
		Seconds: 5,
		Events:  letterEvents()[:3],
		Steps:   []Step{{Start: true, Expect: &Expect{Error: CodeInsufficientData, Phase: "idle"}}},
	})
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, []string{"> start rounds=1 seconds=5", "! insufficient_data"}, result.Trace)
}

func TestRun_WaitOutsideRoundIsSilent(t *testing.T) {
	result, err := Run(&Scenario{
		Name:    "idle_wait",
		Rounds:  1,
		Seconds: 5,
		Events:  letterEvents(),
		Steps:   []Step{{Wait: 10, Expect: &Expect{Phase: "idle"}}},
	})
	require.NoError(t, err)
	assert.True(t, result.Pass)
	assert.Equal(t, []string{"> wait 10"}, result.Trace)
}

func TestRun_SolveOutsideRound(t *testing.T) {
	result, err := Run(&Scenario{
		Name:    "early_solve",
		Rounds:  1,
		Seconds: 5,
		Events:  letterEvents(),
		Steps:   []Step{{Solve: true, Expect: &Expect{Error: CodeInvalidState}}},
	})
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_DetailLockedUntilSubmit(t *testing.T) {
	result, err := Run(&Scenario{
		Name:    "locked_detail",
		Rounds:  1,
		Seconds: 5,
		Events:  letterEvents(),
		Draws:   [][]int{{1, 0, 2, 3}},
		Steps: []Step{
			{Start: true},
			{Detail: intp(0), Expect: &Expect{Error: CodeInvalidState, Phase: "in_round"}},
			{Submit: true},
			{Detail: intp(0), Expect: &Expect{Detail: "https://example.org/b"}},
		},
	})
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, []string{
		"> start rounds=1 seconds=5",
		"round_start B | A | C | D",
		"> detail 0",
		"! invalid_state",
		"> submit",
		"round_complete correct=false score=0 remaining=0",
		"> detail 0",
		"= https://example.org/b",
	}, result.Trace)
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{&session.InvalidStateError{Op: "submit", Phase: session.Idle}, CodeInvalidState},
		{fmt.Errorf("%w: rounds=0", session.ErrInvalidConfig), CodeInvalidConfig},
		{fmt.Errorf("swap: %w", &round.IndexOutOfRangeError{Op: "swap", Index: 4}), CodeIndexOutOfRange},
		{&sampler.InsufficientDataError{Need: 4, Available: 3}, CodeInsufficientData},
		{testutil.ErrScriptExhausted, CodeDrawsExhausted},
		{errors.New("disk on fire"), CodeOther},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorCode(tt.err))
		})
	}
}

func TestResult_AddError(t *testing.T) {
	result := NewResult("x")
	assert.True(t, result.Pass)

	result.AddError("boom")
	assert.False(t, result.Pass)
	assert.Equal(t, []string{"boom"}, result.Errors)
}
