package session

import (
	"github.com/roach88/bouttime/internal/catalog"
	"github.com/roach88/bouttime/internal/round"
)

// Observer receives session notifications.
//
// Notifications arrive one at a time in the order the session produced
// them, never while the session lock is held, so an Observer may call back
// into the session (for example Advance from OnRoundComplete). They may be
// delivered on the countdown goroutine.
type Observer interface {
	// OnTick reports the seconds shown for the running round.
	OnTick(remaining int)
	// OnExpired reports that the countdown ran out. OnRoundComplete follows.
	OnExpired()
	OnRoundStart(events [round.Size]catalog.Event)
	OnRoundComplete(correct bool, score, roundsRemaining int)
	OnSessionComplete(finalScore, totalRounds int)
}

// NopObserver ignores every notification. Embed it to implement only some
// methods.
type NopObserver struct{}

func (NopObserver) OnTick(int)                             {}
func (NopObserver) OnExpired()                             {}
func (NopObserver) OnRoundStart([round.Size]catalog.Event) {}
func (NopObserver) OnRoundComplete(bool, int, int)         {}
func (NopObserver) OnSessionComplete(int, int)             {}
