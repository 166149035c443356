package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/roach88/bouttime/internal/catalog"
	"github.com/roach88/bouttime/internal/harness"
	"github.com/roach88/bouttime/internal/round"
	"github.com/roach88/bouttime/internal/session"
)

// console writes game output for a human or, with --format json, one JSON
// object per line. Writes come from the input loop and the countdown
// goroutine, so they are serialized.
type console struct {
	mu     sync.Mutex
	w      io.Writer
	json   bool
	logger *slog.Logger
}

func newConsole(w io.Writer, jsonLines bool, logger *slog.Logger) *console {
	if logger == nil {
		logger = slog.Default()
	}
	return &console{w: w, json: jsonLines, logger: logger}
}

// gameEvent is one line of JSON play output.
type gameEvent struct {
	Event     string   `json:"event"`
	Events    []string `json:"events,omitempty"`
	Remaining *int     `json:"remaining,omitempty"`
	Correct   *bool    `json:"correct,omitempty"`
	Score     *int     `json:"score,omitempty"`
	Rounds    *int     `json:"rounds,omitempty"`
	Slot      *int     `json:"slot,omitempty"`
	Detail    string   `json:"detail,omitempty"`
	Code      string   `json:"code,omitempty"`
	Message   string   `json:"message,omitempty"`
}

// write emits ev in JSON mode, otherwise the text from render. Output
// errors are logged and do not stop the game.
func (c *console) write(ev gameEvent, render func(w io.Writer)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.json {
		if err := json.NewEncoder(c.w).Encode(ev); err != nil {
			c.logger.Debug("console write failed", "event", ev.Event, "error", err)
		}
		return
	}
	ew := &errWriter{w: c.w}
	render(ew)
	if ew.err != nil {
		c.logger.Debug("console write failed", "event", ev.Event, "error", ew.err)
	}
}

// errWriter keeps the first write error and drops later writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

func eventNames(events []catalog.Event) []string {
	names := make([]string, len(events))
	for i, ev := range events {
		names[i] = ev.Name
	}
	return names
}

func (c *console) board(events []catalog.Event) {
	if events == nil {
		c.failure(fmt.Errorf("no round in play"))
		return
	}
	c.write(gameEvent{Event: "board", Events: eventNames(events)}, func(w io.Writer) {
		for i, ev := range events {
			fmt.Fprintf(w, "  %d. %s\n", i+1, ev.Name)
		}
	})
}

func (c *console) detail(i int, detail string) {
	n := i + 1
	c.write(gameEvent{Event: "detail", Slot: &n, Detail: detail}, func(w io.Writer) {
		fmt.Fprintf(w, "  %d: %s\n", n, detail)
	})
}

func (c *console) failure(err error) {
	msg := err.Error()
	if round.IsIndexOutOfRange(err) {
		msg = fmt.Sprintf("no such slot, slots are 1-%d", round.Size)
	}
	if session.IsInvalidState(err) {
		msg = "not now: " + msg
	}
	c.write(gameEvent{Event: "error", Code: harness.ErrorCode(err), Message: msg}, func(w io.Writer) {
		fmt.Fprintf(w, "! %s\n", msg)
	})
}

func (c *console) help() {
	c.write(gameEvent{Event: "help"}, func(w io.Writer) {
		fmt.Fprintln(w, "  swap A B | up N | down N | submit | info N | next | again | board | quit")
	})
}

func (c *console) farewell(score, rounds int) {
	c.write(gameEvent{Event: "bye", Score: &score, Rounds: &rounds}, func(w io.Writer) {
		fmt.Fprintf(w, "Thanks for playing. Score %d after %d round(s).\n", score, rounds)
	})
}

// consoleObserver renders session notifications on a console.
type consoleObserver struct {
	con *console
}

// OnTick shows the countdown every ten seconds and for the last five.
func (o *consoleObserver) OnTick(remaining int) {
	if !o.con.json && remaining%10 != 0 && remaining > 5 {
		return
	}
	o.con.write(gameEvent{Event: "tick", Remaining: &remaining}, func(w io.Writer) {
		fmt.Fprintf(w, "  %ds left\n", remaining)
	})
}

func (o *consoleObserver) OnExpired() {
	o.con.write(gameEvent{Event: "expired"}, func(w io.Writer) {
		fmt.Fprintln(w, "Time's up!")
	})
}

func (o *consoleObserver) OnRoundStart(events [round.Size]catalog.Event) {
	names := eventNames(events[:])
	o.con.write(gameEvent{Event: "round_start", Events: names}, func(w io.Writer) {
		fmt.Fprintln(w, "Put these in order, earliest first:")
		for i, name := range names {
			fmt.Fprintf(w, "  %d. %s\n", i+1, name)
		}
	})
}

func (o *consoleObserver) OnRoundComplete(correct bool, score, roundsRemaining int) {
	ev := gameEvent{Event: "round_complete", Correct: &correct, Score: &score, Rounds: &roundsRemaining}
	o.con.write(ev, func(w io.Writer) {
		verdict := "Not quite."
		if correct {
			verdict = "Correct!"
		}
		fmt.Fprintf(w, "%s Score: %d. Rounds left: %d.\n", verdict, score, roundsRemaining)
		fmt.Fprintln(w, "Type 'info N' to read about an event, or 'next' to continue.")
	})
}

func (o *consoleObserver) OnSessionComplete(finalScore, totalRounds int) {
	ev := gameEvent{Event: "session_complete", Score: &finalScore, Rounds: &totalRounds}
	o.con.write(ev, func(w io.Writer) {
		fmt.Fprintf(w, "Final score: %d/%d\n", finalScore, totalRounds)
		fmt.Fprintln(w, "Type 'again' to play again or 'quit' to leave.")
	})
}
