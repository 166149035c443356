// Package harness runs scripted game sessions and checks their traces.
//
// A scenario drives one session on a fake clock, so countdowns are stepped a
// second at a time and every run of a scenario produces the same trace.
//
// # Scenario Format
//
//	name: solved_round
//	description: "Solving a round scores a point"
//	rounds: 1
//	seconds: 5
//	events:
//	  - { name: "First", detail: "https://example.org/1", order: 1 }
//	  - ...
//	draws:
//	  - [3, 2, 1, 0]
//	steps:
//	  - start: true
//	  - swap: [0, 3]
//	  - wait: 2
//	  - solve: true
//	  - submit: true
//	    expect: { correct: true, score: 1 }
//	  - advance: true
//	    expect: { phase: session_complete }
//	assertions:
//	  - type: trace_count
//	    prefix: tick
//	    count: 2
//
// Without events a scenario uses the catalog file named by catalog, or the
// built-in catalog. Without draws rounds are sampled from seed.
//
// # Trace
//
// Each step adds a marker line ("> swap 0 3") followed by the notifications
// it caused, in delivery order. A failed step adds "! <code>" and a detail
// step adds "= <detail>".
//
// # Assertion Types
//
//   - trace_contains: a line appears in the trace
//   - trace_order: lines appear in order, not necessarily adjacent
//   - trace_count: exactly count lines start with prefix
package harness
