package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/bouttime/internal/catalog"
)

// Scenario is a scripted game session.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// SessionID is the fixed session id. Defaults to "test-session-default".
	SessionID string `yaml:"session_id,omitempty"`

	// Rounds and Seconds are passed to every start step.
	Rounds  int `yaml:"rounds"`
	Seconds int `yaml:"seconds"`

	// Events is an inline catalog. When empty, Catalog names a catalog
	// file relative to the scenario; when both are empty the built-in
	// catalog is used.
	Events  []catalog.Event `yaml:"events,omitempty"`
	Catalog string          `yaml:"catalog,omitempty"`

	// Draws scripts each round as catalog indices in starting order.
	// Without draws the session samples with Seed.
	Draws [][]int `yaml:"draws,omitempty"`
	Seed  uint64  `yaml:"seed,omitempty"`

	// Steps drive the session in order.
	Steps []Step `yaml:"steps"`

	// Final is checked against the session after the last step.
	Final *Expect `yaml:"final,omitempty"`

	// Assertions validate the finished trace.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one player action. Exactly one action field is set.
type Step struct {
	Start   bool  `yaml:"start,omitempty"`
	Swap    []int `yaml:"swap,omitempty"`
	Up      *int  `yaml:"up,omitempty"`
	Down    *int  `yaml:"down,omitempty"`
	Submit  bool  `yaml:"submit,omitempty"`
	Advance bool  `yaml:"advance,omitempty"`
	// Solve swaps the round in play into chronological order.
	Solve bool `yaml:"solve,omitempty"`
	// Wait lets the given number of seconds pass on the fake clock.
	Wait   int  `yaml:"wait,omitempty"`
	Detail *int `yaml:"detail,omitempty"`

	// Expect checks the outcome of this step. Without it any error fails
	// the scenario.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect is a subset match on a step outcome and the session state after
// it. Unset fields are not checked.
type Expect struct {
	// Error is the expected error code (see ErrorCode).
	Error           string   `yaml:"error,omitempty"`
	Correct         *bool    `yaml:"correct,omitempty"`
	Detail          string   `yaml:"detail,omitempty"`
	Phase           string   `yaml:"phase,omitempty"`
	Score           *int     `yaml:"score,omitempty"`
	RoundsRemaining *int     `yaml:"rounds_remaining,omitempty"`
	Remaining       *int     `yaml:"remaining,omitempty"`
	Order           []string `yaml:"order,omitempty"`
}

// Assertion validates the trace.
type Assertion struct {
	// Type specifies the assertion type:
	// - "trace_contains": Line appears in the trace
	// - "trace_order": Lines appear in this order, not necessarily adjacent
	// - "trace_count": lines starting with Prefix appear exactly Count times
	Type string `yaml:"type"`

	Line   string   `yaml:"line,omitempty"`
	Lines  []string `yaml:"lines,omitempty"`
	Prefix string   `yaml:"prefix,omitempty"`
	Count  int      `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
)

// LoadScenario reads and parses a scenario YAML file. A relative Catalog
// path is resolved against the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving a relative Catalog path against basePath.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Catalog != "" && !filepath.IsAbs(scenario.Catalog) && basePath != "" {
		scenario.Catalog = filepath.Join(basePath, scenario.Catalog)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Events) > 0 && s.Catalog != "" {
		return fmt.Errorf("events and catalog are mutually exclusive")
	}

	for i, draw := range s.Draws {
		if len(draw) != 4 {
			return fmt.Errorf("draws[%d]: need 4 catalog indices, got %d", i, len(draw))
		}
	}

	for i, step := range s.Steps {
		if err := validateStep(i, step); err != nil {
			return err
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, st Step) error {
	actions := 0
	for _, set := range []bool{
		st.Start, st.Swap != nil, st.Up != nil, st.Down != nil,
		st.Submit, st.Advance, st.Solve, st.Wait != 0, st.Detail != nil,
	} {
		if set {
			actions++
		}
	}
	if actions != 1 {
		return fmt.Errorf("steps[%d]: exactly one action is required, got %d", index, actions)
	}
	if st.Swap != nil && len(st.Swap) != 2 {
		return fmt.Errorf("steps[%d]: swap takes two slots, got %d", index, len(st.Swap))
	}
	if st.Wait < 0 {
		return fmt.Errorf("steps[%d]: wait must be positive", index)
	}
	if st.Expect != nil && st.Expect.Error != "" && !knownErrorCode(st.Expect.Error) {
		return fmt.Errorf("steps[%d].expect: unknown error code %q", index, st.Expect.Error)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertTraceContains:
		if a.Line == "" {
			return fmt.Errorf("assertions[%d]: line is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Lines) == 0 {
			return fmt.Errorf("assertions[%d]: lines list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Prefix == "" {
			return fmt.Errorf("assertions[%d]: prefix is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
