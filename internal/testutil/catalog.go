package testutil

import (
	"fmt"
	"testing"

	"github.com/roach88/bouttime/internal/catalog"
)

// NewEvents returns n events whose chronology keys increase with their
// index, so catalog indices 0,1,2,3 are already in chronological order.
//
//	Event 01 -> order 1910, detail https://example.org/events/1
func NewEvents(n int) []catalog.Event {
	events := make([]catalog.Event, n)
	for i := range events {
		events[i] = catalog.Event{
			Name:   fmt.Sprintf("Event %02d", i+1),
			Detail: fmt.Sprintf("https://example.org/events/%d", i+1),
			Order:  1900 + (i+1)*10,
		}
	}
	return events
}

// NewCatalog builds a catalog from NewEvents(n).
func NewCatalog(t testing.TB, n int) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New(NewEvents(n))
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}
	return cat
}
