package catalog

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Event is a single historical event.
type Event struct {
	Name   string `json:"name" yaml:"name"`
	Detail string `json:"detail" yaml:"detail"`
	Order  int    `json:"order" yaml:"order"`
}

// Catalog is an ordered, read-only collection of events with unique
// chronology keys. The zero value is an empty catalog.
type Catalog struct {
	events []Event
	byKey  map[int]int
}

// New validates events and returns a Catalog holding a copy of them.
//
// Names are trimmed and NFC-normalized so that visually identical names
// compare equal regardless of how the source encoded them. An empty name or
// a repeated Order yields a *FormatError naming the offending entry.
func New(events []Event) (*Catalog, error) {
	c := &Catalog{
		events: make([]Event, 0, len(events)),
		byKey:  make(map[int]int, len(events)),
	}
	for i, ev := range events {
		ev.Name = normalizeText(ev.Name)
		ev.Detail = strings.TrimSpace(ev.Detail)
		if ev.Name == "" {
			return nil, entryError(i, "name", "must not be empty")
		}
		if prev, dup := c.byKey[ev.Order]; dup {
			return nil, entryError(i, "order", "duplicates chronology key of entry "+strconv.Itoa(prev))
		}
		c.byKey[ev.Order] = len(c.events)
		c.events = append(c.events, ev)
	}
	return c, nil
}

// MustNew is New for fixed, known-good data. It panics on error.
func MustNew(events []Event) *Catalog {
	c, err := New(events)
	if err != nil {
		panic(err)
	}
	return c
}

// Len returns the number of events.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.events)
}

// At returns the event at position i. It panics if i is out of range,
// matching slice indexing.
func (c *Catalog) At(i int) Event {
	return c.events[i]
}

// Events returns a copy of all events in catalog order.
func (c *Catalog) Events() []Event {
	if c == nil {
		return nil
	}
	return slices.Clone(c.events)
}

// Lookup finds the event with the given chronology key.
func (c *Catalog) Lookup(order int) (Event, bool) {
	if c == nil {
		return Event{}, false
	}
	i, ok := c.byKey[order]
	if !ok {
		return Event{}, false
	}
	return c.events[i], true
}

// Chronological returns a copy of the events sorted by chronology key.
func (c *Catalog) Chronological() []Event {
	out := c.Events()
	slices.SortFunc(out, func(a, b Event) int { return cmp.Compare(a.Order, b.Order) })
	return out
}

func normalizeText(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}
