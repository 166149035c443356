// Package sampler draws the events for a round.
//
// Sampling is a bounded partial Fisher-Yates shuffle over catalog indices:
// every draw terminates after at most Len() steps, and a catalog that
// cannot supply enough distinct chronology keys fails immediately with
// InsufficientDataError instead of retrying.
package sampler

import (
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/roach88/bouttime/internal/catalog"
	"github.com/roach88/bouttime/internal/round"
)

// InsufficientDataError reports a catalog too small for the requested draw.
type InsufficientDataError struct {
	Need      int
	Available int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("catalog has %d distinct events, need %d", e.Available, e.Need)
}

// IsInsufficientData reports whether err wraps an *InsufficientDataError.
func IsInsufficientData(err error) bool {
	var ie *InsufficientDataError
	return errors.As(err, &ie)
}

// Sampler selects events uniformly at random without replacement.
//
// A Sampler is not safe for concurrent use because *rand.Rand is not; give
// each session its own.
type Sampler struct {
	rng *rand.Rand
}

// New returns a Sampler drawing from rng.
func New(rng *rand.Rand) *Sampler {
	return &Sampler{rng: rng}
}

// NewSeeded returns a Sampler with a deterministic PCG source.
func NewSeeded(seed uint64) *Sampler {
	return New(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// NewRandom returns a Sampler seeded from crypto/rand.
func NewRandom() (*Sampler, error) {
	seed, err := NewSeed()
	if err != nil {
		return nil, err
	}
	return NewSeeded(seed), nil
}

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (uint64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

// Sample returns count events with pairwise-distinct chronology keys, in
// random order.
//
// Entries whose key was already drawn are skipped, so a hand-built catalog
// with repeated keys still yields a valid draw as long as it has count
// distinct keys.
func (s *Sampler) Sample(cat *catalog.Catalog, count int) ([]catalog.Event, error) {
	if count < 0 {
		return nil, fmt.Errorf("sample: negative count %d", count)
	}
	n := cat.Len()
	if n < count {
		return nil, &InsufficientDataError{Need: count, Available: n}
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}

	picked := make([]catalog.Event, 0, count)
	seen := make(map[int]struct{}, count)
	for i := 0; i < n && len(picked) < count; i++ {
		j := i + s.rng.IntN(n-i)
		idx[i], idx[j] = idx[j], idx[i]

		ev := cat.At(idx[i])
		if _, dup := seen[ev.Order]; dup {
			continue
		}
		seen[ev.Order] = struct{}{}
		picked = append(picked, ev)
	}

	if len(picked) < count {
		return nil, &InsufficientDataError{Need: count, Available: len(seen)}
	}
	return picked, nil
}

// Draw samples a full round.
func (s *Sampler) Draw(cat *catalog.Catalog) (*round.Round, error) {
	events, err := s.Sample(cat, round.Size)
	if err != nil {
		return nil, err
	}
	return round.New(events)
}
