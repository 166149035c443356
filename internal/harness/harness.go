package harness

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/roach88/bouttime/internal/catalog"
	"github.com/roach88/bouttime/internal/sampler"
	"github.com/roach88/bouttime/internal/session"
	"github.com/roach88/bouttime/internal/testutil"
)

// Harness drives one session through a scenario's steps.
//
// Every step runs to quiescence before the next: the harness knows how many
// notifications each action produces and waits for exactly those, so the
// trace is identical on every run even though ticks arrive on the
// countdown goroutine.
type Harness struct {
	session *session.Session
	clock   *clockwork.FakeClock
	rec     *testutil.Recorder
	logger  *slog.Logger
	rounds  int
	seconds int
	wait    time.Duration
}

// outcome is what a single step produced.
type outcome struct {
	err     error
	correct *bool
	detail  string
}

// Run executes a scenario and returns the result.
//
// Execution flow:
// 1. Build the catalog (inline events, catalog file or built-in)
// 2. Create a session on a fake clock with scripted or seeded draws
// 3. Execute steps, checking each step's expect clause
// 4. Check the final expectation and trace assertions
//
// A non-nil error means the scenario could not be run at all; failed
// expectations are reported through Result.
func Run(scenario *Scenario) (*Result, error) {
	cat, err := scenarioCatalog(scenario)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	var drawer session.Drawer
	if len(scenario.Draws) > 0 {
		drawer = testutil.NewScriptedDrawer(scenario.Draws...)
	} else {
		drawer = sampler.NewSeeded(scenario.Seed)
	}

	fc := testutil.NewFakeClock()
	rec := testutil.NewRecorder()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s, err := session.New(cat,
		session.WithClock(fc),
		session.WithDrawer(drawer),
		session.WithObserver(rec),
		session.WithLogger(logger),
		session.WithIDGenerator(testutil.NewFixedIDGenerator(scenario.SessionID)),
	)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	defer s.Close()

	h := &Harness{
		session: s,
		clock:   fc,
		rec:     rec,
		logger:  logger,
		rounds:  scenario.Rounds,
		seconds: scenario.Seconds,
		wait:    testutil.DefaultWait,
	}

	result := NewResult(scenario.Name)
	for i, step := range scenario.Steps {
		marker := stepMarker(step, h.rounds, h.seconds)
		h.mark("> " + marker)

		out, err := h.execute(step)
		if err != nil {
			return nil, fmt.Errorf("steps[%d] %s: %w", i, marker, err)
		}

		if out.err != nil {
			h.mark("! " + ErrorCode(out.err))
		} else if step.Detail != nil {
			h.mark("= " + out.detail)
		}

		label := fmt.Sprintf("steps[%d] %s", i, marker)
		if step.Expect == nil {
			if out.err != nil {
				result.AddError(fmt.Sprintf("%s: unexpected error: %v", label, out.err))
			}
			continue
		}
		for _, msg := range checkExpect(label, step.Expect, out, s.Snapshot()) {
			result.AddError(msg)
		}
	}

	result.Trace = rec.Lines()
	result.Final = s.Snapshot()

	if scenario.Final != nil {
		for _, msg := range checkExpect("final", scenario.Final, outcome{}, result.Final) {
			result.AddError(msg)
		}
	}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	h.logger.Info("scenario finished", "scenario", scenario.Name, "pass", result.Pass)
	return result, nil
}

func scenarioCatalog(sc *Scenario) (*catalog.Catalog, error) {
	switch {
	case len(sc.Events) > 0:
		return catalog.New(sc.Events)
	case sc.Catalog != "":
		return catalog.LoadFile(sc.Catalog)
	default:
		return catalog.Default(), nil
	}
}

// mark records a line of harness output in the trace.
func (h *Harness) mark(line string) {
	h.rec.Note(line)
	h.rec.Unread()
}

// execute performs one step and waits for the notifications it causes.
// The returned error is a harness failure, not a session error.
func (h *Harness) execute(st Step) (outcome, error) {
	s := h.session
	switch {
	case st.Start:
		err := s.Start(h.rounds, h.seconds)
		if err == nil {
			return outcome{}, h.await(1)
		}
		return outcome{err: err}, nil

	case st.Swap != nil:
		return outcome{err: s.Swap(st.Swap[0], st.Swap[1])}, nil

	case st.Up != nil:
		return outcome{err: s.MoveUp(*st.Up)}, nil

	case st.Down != nil:
		return outcome{err: s.MoveDown(*st.Down)}, nil

	case st.Submit:
		correct, err := s.Submit()
		if err != nil {
			return outcome{err: err}, nil
		}
		return outcome{correct: &correct}, h.await(1)

	case st.Advance:
		if err := s.Advance(); err != nil {
			return outcome{err: err}, nil
		}
		return outcome{}, h.await(1)

	case st.Solve:
		return outcome{err: h.solve()}, nil

	case st.Wait > 0:
		for sec := 0; sec < st.Wait; sec++ {
			if err := h.tick(); err != nil {
				return outcome{}, err
			}
		}
		return outcome{}, nil

	case st.Detail != nil:
		detail, err := s.Detail(*st.Detail)
		return outcome{err: err, detail: detail}, nil
	}
	return outcome{}, fmt.Errorf("step has no action")
}

// tick lets one second pass. While a round is in play that produces one
// tick, or an expiry followed by the round result.
func (h *Harness) tick() error {
	inRound := h.session.Phase() == session.InRound
	h.clock.Advance(time.Second)
	if !inRound {
		return nil
	}

	line, err := h.rec.Next(h.wait)
	if err != nil {
		return err
	}
	if line == "expired" {
		_, err = h.rec.WaitFor("round_complete", h.wait)
	}
	return err
}

// await waits for n notifications.
func (h *Harness) await(n int) error {
	for i := 0; i < n; i++ {
		if _, err := h.rec.Next(h.wait); err != nil {
			return err
		}
	}
	return nil
}

// solve selection-sorts the round in play using session swaps.
func (h *Harness) solve() error {
	events := h.session.Snapshot().Events
	if events == nil {
		return h.session.Swap(0, 0)
	}
	for i := range events {
		lo := i
		for j := i + 1; j < len(events); j++ {
			if events[j].Order < events[lo].Order {
				lo = j
			}
		}
		if lo == i {
			continue
		}
		if err := h.session.Swap(i, lo); err != nil {
			return err
		}
		events[i], events[lo] = events[lo], events[i]
	}
	return nil
}

func stepMarker(st Step, rounds, seconds int) string {
	switch {
	case st.Start:
		return fmt.Sprintf("start rounds=%d seconds=%d", rounds, seconds)
	case st.Swap != nil:
		return fmt.Sprintf("swap %d %d", st.Swap[0], st.Swap[1])
	case st.Up != nil:
		return fmt.Sprintf("up %d", *st.Up)
	case st.Down != nil:
		return fmt.Sprintf("down %d", *st.Down)
	case st.Submit:
		return "submit"
	case st.Advance:
		return "advance"
	case st.Solve:
		return "solve"
	case st.Wait > 0:
		return fmt.Sprintf("wait %d", st.Wait)
	case st.Detail != nil:
		return fmt.Sprintf("detail %d", *st.Detail)
	}
	return "?"
}

// checkExpect compares an outcome and snapshot against exp.
func checkExpect(label string, exp *Expect, out outcome, snap session.Snapshot) []string {
	var errs []string
	fail := func(format string, args ...any) {
		errs = append(errs, label+": "+fmt.Sprintf(format, args...))
	}

	if code := ErrorCode(out.err); code != exp.Error {
		if exp.Error == "" {
			fail("unexpected error: %v", out.err)
		} else {
			fail("expected error %q, got %q", exp.Error, code)
		}
	}
	if exp.Correct != nil {
		switch {
		case out.correct == nil:
			fail("expected correct=%t, step produced no result", *exp.Correct)
		case *out.correct != *exp.Correct:
			fail("expected correct=%t, got %t", *exp.Correct, *out.correct)
		}
	}
	if exp.Detail != "" && exp.Detail != out.detail {
		fail("expected detail %q, got %q", exp.Detail, out.detail)
	}
	if exp.Phase != "" && exp.Phase != snap.Phase.String() {
		fail("expected phase %s, got %s", exp.Phase, snap.Phase)
	}
	if exp.Score != nil && *exp.Score != snap.Score {
		fail("expected score %d, got %d", *exp.Score, snap.Score)
	}
	if exp.RoundsRemaining != nil && *exp.RoundsRemaining != snap.RoundsRemaining {
		fail("expected rounds_remaining %d, got %d", *exp.RoundsRemaining, snap.RoundsRemaining)
	}
	if exp.Remaining != nil && *exp.Remaining != snap.Remaining {
		fail("expected remaining %d, got %d", *exp.Remaining, snap.Remaining)
	}
	if exp.Order != nil {
		names := make([]string, 0, len(snap.Events))
		for _, ev := range snap.Events {
			names = append(names, ev.Name)
		}
		if strings.Join(names, "|") != strings.Join(exp.Order, "|") {
			fail("expected order %v, got %v", exp.Order, names)
		}
	}
	return errs
}
