package testutil

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/roach88/bouttime/internal/catalog"
	"github.com/roach88/bouttime/internal/round"
)

// DefaultWait bounds how long Recorder waits for a notification.
const DefaultWait = 2 * time.Second

// Recorder is a session observer that renders every notification as one
// trace line:
//
//	round_start Event 04 | Event 01 | Event 03 | Event 02
//	tick 5
//	expired
//	round_complete correct=false score=0 remaining=2
//	session_complete score=1/3
//
// Lines are kept in arrival order. A read cursor lets callers wait for the
// notifications caused by their last action.
type Recorder struct {
	mu     sync.Mutex
	lines  []string
	cursor int
	signal chan struct{}
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{signal: make(chan struct{}, 1)}
}

func (r *Recorder) OnTick(remaining int) {
	r.add(fmt.Sprintf("tick %d", remaining))
}

func (r *Recorder) OnExpired() {
	r.add("expired")
}

func (r *Recorder) OnRoundStart(events [round.Size]catalog.Event) {
	names := make([]string, 0, len(events))
	for _, ev := range events {
		names = append(names, ev.Name)
	}
	r.add("round_start " + strings.Join(names, " | "))
}

func (r *Recorder) OnRoundComplete(correct bool, score, roundsRemaining int) {
	r.add(fmt.Sprintf("round_complete correct=%t score=%d remaining=%d", correct, score, roundsRemaining))
}

func (r *Recorder) OnSessionComplete(finalScore, totalRounds int) {
	r.add(fmt.Sprintf("session_complete score=%d/%d", finalScore, totalRounds))
}

// Note appends a line that did not come from the session, such as a
// harness step marker.
func (r *Recorder) Note(line string) {
	r.add(line)
}

func (r *Recorder) add(line string) {
	r.mu.Lock()
	r.lines = append(r.lines, line)
	r.mu.Unlock()

	select {
	case r.signal <- struct{}{}:
	default:
	}
}

// Next returns the first unread line, waiting up to timeout for one.
func (r *Recorder) Next(timeout time.Duration) (string, error) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		r.mu.Lock()
		if r.cursor < len(r.lines) {
			line := r.lines[r.cursor]
			r.cursor++
			r.mu.Unlock()
			return line, nil
		}
		r.mu.Unlock()

		select {
		case <-r.signal:
		case <-deadline.C:
			return "", fmt.Errorf("no notification within %s", timeout)
		}
	}
}

// WaitFor reads lines until one starts with prefix and returns it.
func (r *Recorder) WaitFor(prefix string, timeout time.Duration) (string, error) {
	deadline := time.Now().Add(timeout)
	for {
		left := time.Until(deadline)
		if left <= 0 {
			return "", fmt.Errorf("no %q notification within %s", prefix, timeout)
		}
		line, err := r.Next(left)
		if err != nil {
			return "", fmt.Errorf("waiting for %q: %w", prefix, err)
		}
		if strings.HasPrefix(line, prefix) {
			return line, nil
		}
	}
}

// Unread returns lines not yet consumed by Next and advances the cursor
// past them.
func (r *Recorder) Unread() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := append([]string(nil), r.lines[r.cursor:]...)
	r.cursor = len(r.lines)
	return out
}

// Lines returns every recorded line.
func (r *Recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}

// MustNext is Next with DefaultWait that fails the test on timeout.
func (r *Recorder) MustNext(t testing.TB) string {
	t.Helper()
	line, err := r.Next(DefaultWait)
	if err != nil {
		t.Fatalf("recorder: %v", err)
	}
	return line
}

// MustWaitFor is WaitFor with DefaultWait that fails the test on timeout.
func (r *Recorder) MustWaitFor(t testing.TB, prefix string) string {
	t.Helper()
	line, err := r.WaitFor(prefix, DefaultWait)
	if err != nil {
		t.Fatalf("recorder: %v", err)
	}
	return line
}
