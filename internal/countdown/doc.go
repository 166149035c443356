// Package countdown implements the per-round countdown timer.
//
// STATE MACHINE:
//
//	Idle ──Start──▶ Running ──tick D+1──▶ Expired
//	  ▲               │
//	  └─────Stop──────┘
//
// Start on a Running countdown stops it first, so there is never more than
// one live ticker. Every Start opens a new Run; the run id travels with
// each notification so that the owner can tell a stale tick from a live one.
//
// TICKS:
//
// A run started with D seconds notifies OnTick(run, D), OnTick(run, D-1),
// ..., OnTick(run, 1) on ticks 1..D and OnExpired(run) on tick D+1. No
// further ticks follow an expiry.
//
// CONCURRENCY:
//
// Ticks are read by one goroutine per run from a clockwork ticker, so
// tests drive time with clockwork.FakeClock. Listener callbacks run on that
// goroutine without the countdown lock held; calling Stop or Start from
// inside a callback is safe. A tick that loses the race with Stop is
// dropped under the lock and never reaches the listener once Stop has
// returned, except for a callback that was already in flight. Such a
// callback can tell it is stale with Live(run).
package countdown
