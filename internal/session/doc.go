// Package session implements the game session engine.
//
// PHASES:
//
//	Idle ──Start──▶ AwaitingRound ──draw──▶ InRound ──Submit/expiry──▶ RoundComplete
//	                      ▲                                                  │
//	                      └────────────Advance (rounds left)─────────────────┤
//	                                                                         ▼
//	              Start (play again) ◀──────────────────────────── SessionComplete
//
// AwaitingRound is transient: it lasts only while the next round is drawn
// and is never observable from outside. Close ends the session from any
// phase.
//
// A round ends either when the player submits or when its countdown
// expires; both paths stop the countdown, verify the arrangement, score it
// and decrement the rounds remaining. Every countdown run is tagged, and a
// tick or expiry that does not belong to the round in play is dropped.
//
// Notifications are queued while the session lock is held and delivered in
// order after it is released; see Observer.
package session
