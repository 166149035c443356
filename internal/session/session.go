package session

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/roach88/bouttime/internal/catalog"
	"github.com/roach88/bouttime/internal/countdown"
	"github.com/roach88/bouttime/internal/round"
	"github.com/roach88/bouttime/internal/sampler"
)

// Drawer produces the starting arrangement of a new round.
// Implemented by *sampler.Sampler; tests script their own.
type Drawer interface {
	Draw(cat *catalog.Catalog) (*round.Round, error)
}

// Session is one game: a fixed number of timed rounds and a running score.
//
// All methods are safe for concurrent use. The countdown goroutine is the
// only asynchronous caller; its ticks and expiry are tagged with a run id
// and dropped unless they belong to the round currently in play.
type Session struct {
	id       string
	catalog  *catalog.Catalog
	drawer   Drawer
	clock    clockwork.Clock
	observer Observer
	logger   *slog.Logger
	ids      IDGenerator

	countdown *countdown.Countdown
	notes     *notifier

	mu              sync.Mutex
	phase           Phase
	totalRounds     int
	roundSeconds    int
	roundsRemaining int
	roundNumber     int
	score           int
	remaining       int
	correct         bool
	current         *round.Round
	run             countdown.Run
}

// Option configures a Session.
type Option func(*Session)

// WithClock sets the clock driving the countdown. Default: real clock.
func WithClock(c clockwork.Clock) Option {
	return func(s *Session) { s.clock = c }
}

// WithDrawer replaces the random sampler.
func WithDrawer(d Drawer) Option {
	return func(s *Session) { s.drawer = d }
}

// WithObserver sets the notification sink. Default: NopObserver.
func WithObserver(o Observer) Option {
	return func(s *Session) { s.observer = o }
}

// WithLogger sets the base logger. Session logs carry session_id.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithIDGenerator sets the session id source. Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Session) { s.ids = g }
}

// New creates an Idle session over cat.
//
// Without WithDrawer the session draws with a sampler seeded from
// crypto/rand, which is the only way New can fail.
func New(cat *catalog.Catalog, opts ...Option) (*Session, error) {
	s := &Session{
		catalog:  cat,
		observer: NopObserver{},
		logger:   slog.Default(),
		ids:      UUIDv7Generator{},
		notes:    newNotifier(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.drawer == nil {
		smp, err := sampler.NewRandom()
		if err != nil {
			return nil, fmt.Errorf("new session: %w", err)
		}
		s.drawer = smp
	}
	if s.clock == nil {
		s.clock = clockwork.NewRealClock()
	}
	if s.observer == nil {
		s.observer = NopObserver{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	s.id = s.ids.Generate()
	s.logger = s.logger.With("session_id", s.id)
	s.countdown = countdown.New(s.clock, countdown.ListenerFuncs{
		Tick:    s.onTick,
		Expired: s.onExpired,
	}, countdown.WithLogger(s.logger))

	return s, nil
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Start begins a session of totalRounds rounds of roundSeconds each and
// puts round 1 in play. Valid from Idle, and from SessionComplete to play
// again.
//
// A draw failure (typically *sampler.InsufficientDataError) is returned
// unwrapped and leaves the session Idle.
func (s *Session) Start(totalRounds, roundSeconds int) error {
	defer s.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != Idle && s.phase != SessionComplete {
		return s.stateErrLocked("start")
	}
	if totalRounds < 1 || roundSeconds < 1 {
		return fmt.Errorf("%w: rounds=%d seconds=%d", ErrInvalidConfig, totalRounds, roundSeconds)
	}

	s.totalRounds = totalRounds
	s.roundSeconds = roundSeconds
	s.roundsRemaining = totalRounds
	s.roundNumber = 0
	s.score = 0
	s.correct = false
	s.current = nil
	s.phase = AwaitingRound

	s.logger.Info("session started", "rounds", totalRounds, "seconds", roundSeconds)

	if err := s.beginRoundLocked(); err != nil {
		s.phase = Idle
		s.logger.Warn("session start failed", "error", err)
		return err
	}
	return nil
}

// Swap exchanges the events at slots a and b of the round in play.
func (s *Session) Swap(a, b int) error {
	return s.mutate("swap", func(r *round.Round) error { return r.Swap(a, b) })
}

// MoveUp swaps slot i with slot i-1.
func (s *Session) MoveUp(i int) error {
	return s.mutate("move_up", func(r *round.Round) error { return r.MoveUp(i) })
}

// MoveDown swaps slot i with slot i+1.
func (s *Session) MoveDown(i int) error {
	return s.mutate("move_down", func(r *round.Round) error { return r.MoveDown(i) })
}

func (s *Session) mutate(op string, fn func(*round.Round) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != InRound {
		return s.stateErrLocked(op)
	}
	if err := fn(s.current); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Submit ends the round in play: it stops the countdown, verifies the
// arrangement and scores it. Returns whether the arrangement was correct.
func (s *Session) Submit() (bool, error) {
	defer s.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != InRound {
		return false, s.stateErrLocked("submit")
	}
	return s.submitLocked("player"), nil
}

// Advance moves past a completed round: to SessionComplete after the last
// round, otherwise into the next round with a fresh draw and countdown.
// A draw failure is returned and the session stays in RoundComplete.
func (s *Session) Advance() error {
	defer s.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != RoundComplete {
		return s.stateErrLocked("advance")
	}

	if s.roundsRemaining == 0 {
		s.phase = SessionComplete
		s.current = nil
		s.notes.enqueue(notification{
			kind:        noteSessionComplete,
			score:       s.score,
			totalRounds: s.totalRounds,
		})
		s.logger.Info("session complete", "score", s.score, "rounds", s.totalRounds)
		return nil
	}

	s.phase = AwaitingRound
	if err := s.beginRoundLocked(); err != nil {
		s.phase = RoundComplete
		s.logger.Warn("next round draw failed", "error", err)
		return err
	}
	return nil
}

// Detail returns the detail reference of the event at slot i. Details
// unlock once the round is submitted or expires.
func (s *Session) Detail(i int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != RoundComplete {
		return "", s.stateErrLocked("detail")
	}
	ev, err := s.current.EventAt(i)
	if err != nil {
		return "", fmt.Errorf("detail: %w", err)
	}
	return ev.Detail, nil
}

// Close stops the countdown. The session accepts no further operations.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == Closed {
		return
	}
	s.countdown.Stop()
	s.phase = Closed
	s.current = nil
	s.logger.Debug("session closed")
}

// Snapshot is a copy of the observable session state.
type Snapshot struct {
	ID              string
	Phase           Phase
	TotalRounds     int
	RoundSeconds    int
	RoundsRemaining int
	// RoundNumber counts rounds started, starting at 1.
	RoundNumber int
	Score       int
	// Remaining is the seconds value last shown for the round in play.
	Remaining int
	// Correct is the result of the last completed round.
	Correct bool
	// Events is the current arrangement, or nil outside a round.
	Events []catalog.Event
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:              s.id,
		Phase:           s.phase,
		TotalRounds:     s.totalRounds,
		RoundSeconds:    s.roundSeconds,
		RoundsRemaining: s.roundsRemaining,
		RoundNumber:     s.roundNumber,
		Score:           s.score,
		Remaining:       s.remaining,
		Correct:         s.correct,
	}
	if s.current != nil {
		evs := s.current.Events()
		snap.Events = evs[:]
	}
	return snap
}

// beginRoundLocked draws a round and starts its countdown. Caller holds
// s.mu and has set phase to AwaitingRound.
func (s *Session) beginRoundLocked() error {
	r, err := s.drawer.Draw(s.catalog)
	if err != nil {
		return err
	}

	s.current = r
	s.roundNumber++
	s.remaining = s.roundSeconds
	s.correct = false
	s.phase = InRound

	s.notes.enqueue(notification{kind: noteRoundStart, events: r.Events()})
	s.run = s.countdown.Start(s.roundSeconds)

	s.logger.Debug("round started", "round", s.roundNumber, "run", s.run)
	return nil
}

// submitLocked scores the round in play. Caller holds s.mu and has checked
// the phase.
func (s *Session) submitLocked(cause string) bool {
	s.countdown.Stop()

	correct := s.current.Verify()
	if correct {
		s.score++
	}
	s.roundsRemaining--
	s.correct = correct
	s.phase = RoundComplete

	s.notes.enqueue(notification{
		kind:            noteRoundComplete,
		correct:         correct,
		score:           s.score,
		roundsRemaining: s.roundsRemaining,
	})
	s.logger.Debug("round complete",
		"round", s.roundNumber,
		"cause", cause,
		"correct", correct,
		"score", s.score,
		"rounds_remaining", s.roundsRemaining,
	)
	return correct
}

func (s *Session) onTick(run countdown.Run, remaining int) {
	s.mu.Lock()
	if run != s.run || s.phase != InRound {
		s.mu.Unlock()
		s.logger.Debug("stale tick dropped", "run", run)
		return
	}
	s.remaining = remaining
	s.notes.enqueue(notification{kind: noteTick, remaining: remaining})
	s.mu.Unlock()
	s.flush()
}

func (s *Session) onExpired(run countdown.Run) {
	s.mu.Lock()
	if run != s.run || s.phase != InRound {
		s.mu.Unlock()
		s.logger.Debug("stale expiry dropped", "run", run)
		return
	}
	s.remaining = 0
	s.notes.enqueue(notification{kind: noteExpired})
	s.submitLocked("expired")
	s.mu.Unlock()
	s.flush()
}

func (s *Session) flush() {
	s.notes.drain(s.observer)
}

func (s *Session) stateErrLocked(op string) error {
	return &InvalidStateError{Op: op, Phase: s.phase}
}
