package testutil

import (
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
)

// Epoch is the start time of every fake clock built here.
var Epoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// NewFakeClock returns a fake clock set to Epoch.
func NewFakeClock() *clockwork.FakeClock {
	return clockwork.NewFakeClockAt(Epoch)
}

// Step advances fc by one second and returns the notification the
// countdown tick produced.
//
// The fake ticker holds at most one pending tick, so time must move one
// second at a time with the tick consumed in between; Step does both.
func Step(fc *clockwork.FakeClock, r *Recorder, timeout time.Duration) (string, error) {
	fc.Advance(time.Second)
	line, err := r.Next(timeout)
	if err != nil {
		return "", fmt.Errorf("step to %s: %w", fc.Now().Sub(Epoch), err)
	}
	return line, nil
}
