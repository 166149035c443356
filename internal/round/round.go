// Package round holds the player-manipulable arrangement of one round.
package round

import (
	"errors"
	"fmt"

	"github.com/roach88/bouttime/internal/catalog"
)

// Size is the number of events in every round.
const Size = 4

// IndexOutOfRangeError reports a slot index outside [0, Size-1].
type IndexOutOfRangeError struct {
	Op    string
	Index int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("%s: index %d out of range [0,%d]", e.Op, e.Index, Size-1)
}

// IsIndexOutOfRange reports whether err wraps an *IndexOutOfRangeError.
func IsIndexOutOfRange(err error) bool {
	var ie *IndexOutOfRangeError
	return errors.As(err, &ie)
}

// Round is the shuffled arrangement of Size distinct events.
//
// It is not safe for concurrent use; the owning session serializes access.
type Round struct {
	events [Size]catalog.Event
}

// New builds a Round from exactly Size events with distinct chronology keys.
// The given order is the starting arrangement.
func New(events []catalog.Event) (*Round, error) {
	if len(events) != Size {
		return nil, fmt.Errorf("round: need %d events, got %d", Size, len(events))
	}
	r := &Round{}
	seen := make(map[int]struct{}, Size)
	for i, ev := range events {
		if _, dup := seen[ev.Order]; dup {
			return nil, fmt.Errorf("round: duplicate chronology key %d at slot %d", ev.Order, i)
		}
		seen[ev.Order] = struct{}{}
		r.events[i] = ev
	}
	return r, nil
}

// Swap exchanges slots a and b. Swapping a slot with itself is a no-op.
func (r *Round) Swap(a, b int) error {
	if err := check("swap", a); err != nil {
		return err
	}
	if err := check("swap", b); err != nil {
		return err
	}
	r.events[a], r.events[b] = r.events[b], r.events[a]
	return nil
}

// MoveUp swaps slot i with the slot above it (i-1).
func (r *Round) MoveUp(i int) error {
	if err := check("move up", i); err != nil {
		return err
	}
	if err := check("move up", i-1); err != nil {
		return err
	}
	return r.Swap(i, i-1)
}

// MoveDown swaps slot i with the slot below it (i+1).
func (r *Round) MoveDown(i int) error {
	if err := check("move down", i); err != nil {
		return err
	}
	if err := check("move down", i+1); err != nil {
		return err
	}
	return r.Swap(i, i+1)
}

// Verify reports whether the chronology keys strictly increase from slot 0
// to slot Size-1.
func (r *Round) Verify() bool {
	for i := 1; i < Size; i++ {
		if r.events[i-1].Order >= r.events[i].Order {
			return false
		}
	}
	return true
}

// EventAt returns the event in slot i.
func (r *Round) EventAt(i int) (catalog.Event, error) {
	if err := check("event at", i); err != nil {
		return catalog.Event{}, err
	}
	return r.events[i], nil
}

// Events returns a copy of the current arrangement.
func (r *Round) Events() [Size]catalog.Event {
	return r.events
}

func check(op string, i int) error {
	if i < 0 || i >= Size {
		return &IndexOutOfRangeError{Op: op, Index: i}
	}
	return nil
}
