package session

import (
	"errors"
	"fmt"
)

// Phase is the session lifecycle state.
type Phase int

const (
	// Idle is a constructed session that has not been started, or whose
	// start failed.
	Idle Phase = iota
	// AwaitingRound is the transient phase while the next round is drawn.
	AwaitingRound
	// InRound accepts reordering and submission; the countdown is running.
	InRound
	// RoundComplete holds the result of the last round until Advance.
	RoundComplete
	// SessionComplete exposes the final score. Start plays again.
	SessionComplete
	// Closed is terminal.
	Closed
)

var phaseNames = map[Phase]string{
	Idle:            "idle",
	AwaitingRound:   "awaiting_round",
	InRound:         "in_round",
	RoundComplete:   "round_complete",
	SessionComplete: "session_complete",
	Closed:          "closed",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// ErrInvalidConfig is returned by Start for a non-positive round count or
// round duration.
var ErrInvalidConfig = errors.New("invalid session config")

// InvalidStateError reports an operation attempted in the wrong phase.
type InvalidStateError struct {
	Op    string
	Phase Phase
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s: not allowed in phase %s", e.Op, e.Phase)
}

// IsInvalidState reports whether err wraps an *InvalidStateError.
func IsInvalidState(err error) bool {
	var se *InvalidStateError
	return errors.As(err, &se)
}
