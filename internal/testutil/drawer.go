package testutil

import (
	"errors"
	"fmt"
	"sync"

	"github.com/roach88/bouttime/internal/catalog"
	"github.com/roach88/bouttime/internal/round"
)

// ErrScriptExhausted is returned once every scripted draw has been dealt.
var ErrScriptExhausted = errors.New("scripted draws exhausted")

// ScriptedDrawer deals predetermined rounds in order. Each draw lists the
// catalog indices of the round's events in their starting arrangement.
//
// Safe for concurrent use.
type ScriptedDrawer struct {
	mu    sync.Mutex
	draws [][]int
	next  int
}

// NewScriptedDrawer creates a drawer dealing draws in order.
func NewScriptedDrawer(draws ...[]int) *ScriptedDrawer {
	return &ScriptedDrawer{draws: draws}
}

// Draw returns the next scripted round.
func (d *ScriptedDrawer) Draw(cat *catalog.Catalog) (*round.Round, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.next >= len(d.draws) {
		return nil, ErrScriptExhausted
	}
	n := d.next
	indices := d.draws[n]
	d.next++

	events := make([]catalog.Event, 0, len(indices))
	for _, i := range indices {
		if i < 0 || i >= cat.Len() {
			return nil, fmt.Errorf("scripted draw %d: index %d outside catalog of %d", n+1, i, cat.Len())
		}
		events = append(events, cat.At(i))
	}

	r, err := round.New(events)
	if err != nil {
		return nil, fmt.Errorf("scripted draw %d: %w", n+1, err)
	}
	return r, nil
}

// Dealt returns how many draws have been consumed.
func (d *ScriptedDrawer) Dealt() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.next
}
