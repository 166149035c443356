package countdown

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultInterval is the tick period.
const DefaultInterval = time.Second

// State is the countdown lifecycle state.
type State int

const (
	Idle State = iota
	Running
	Expired
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Expired:
		return "expired"
	default:
		return "unknown"
	}
}

// Run identifies one Start of a countdown. Zero is never a valid run.
type Run uint64

// Listener receives countdown notifications.
//
// A tick already in flight when Stop returns still reaches OnTick. Listeners
// that must not act on it check Live(run) first.
type Listener interface {
	OnTick(run Run, remaining int)
	OnExpired(run Run)
}

// ListenerFuncs adapts plain functions to Listener. Nil fields are skipped.
type ListenerFuncs struct {
	Tick    func(run Run, remaining int)
	Expired func(run Run)
}

func (f ListenerFuncs) OnTick(run Run, remaining int) {
	if f.Tick != nil {
		f.Tick(run, remaining)
	}
}

func (f ListenerFuncs) OnExpired(run Run) {
	if f.Expired != nil {
		f.Expired(run)
	}
}

// Countdown counts whole seconds down to expiry.
type Countdown struct {
	clock    clockwork.Clock
	listener Listener
	interval time.Duration
	logger   *slog.Logger

	mu        sync.Mutex
	state     State
	remaining int
	run       Run
	ticker    clockwork.Ticker
	done      chan struct{}
}

// Option configures a Countdown.
type Option func(*Countdown)

// WithInterval overrides the tick period. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(c *Countdown) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(c *Countdown) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates an Idle countdown. A nil clock means the real clock.
func New(clock clockwork.Clock, l Listener, opts ...Option) *Countdown {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if l == nil {
		l = ListenerFuncs{}
	}
	c := &Countdown{
		clock:    clock,
		listener: l,
		interval: DefaultInterval,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start begins a new run of the given number of seconds and returns its id.
// A running countdown is stopped first. Negative durations count as zero,
// which expires on the first tick.
func (c *Countdown) Start(seconds int) Run {
	if seconds < 0 {
		seconds = 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.releaseLocked()
	c.run++
	c.state = Running
	c.remaining = seconds
	c.ticker = c.clock.NewTicker(c.interval)
	c.done = make(chan struct{})

	go c.loop(c.run, c.ticker, c.done)

	c.logger.Debug("countdown started", "run", c.run, "seconds", seconds)
	return c.run
}

// Stop cancels a running countdown and reports whether it was running.
// Stopping an Idle or Expired countdown is a no-op. Stop does not wait for
// a callback that is already running.
func (c *Countdown) Stop() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Running {
		return false
	}
	c.releaseLocked()
	c.state = Idle
	c.logger.Debug("countdown stopped", "run", c.run, "remaining", c.remaining)
	return true
}

// State returns the current state.
func (c *Countdown) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Remaining returns the seconds left in the current or last run.
func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Live reports whether run is the current run and still running.
func (c *Countdown) Live(run Run) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return run == c.run && c.state == Running
}

// Current returns the id of the current or last run (zero before Start).
func (c *Countdown) Current() Run {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.run
}

func (c *Countdown) loop(run Run, ticker clockwork.Ticker, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-ticker.Chan():
			remaining, expired, live := c.tick(run)
			if !live {
				return
			}
			if expired {
				c.listener.OnExpired(run)
				return
			}
			c.listener.OnTick(run, remaining)
		}
	}
}

// tick advances run by one interval. live is false when run is no longer
// the current running run.
func (c *Countdown) tick(run Run) (remaining int, expired, live bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if run != c.run || c.state != Running {
		return 0, false, false
	}
	if c.remaining <= 0 {
		c.releaseLocked()
		c.state = Expired
		c.logger.Debug("countdown expired", "run", run)
		return 0, true, true
	}
	shown := c.remaining
	c.remaining--
	return shown, false, true
}

// releaseLocked stops the ticker and ends the loop goroutine of the current
// run. The caller must hold c.mu.
func (c *Countdown) releaseLocked() {
	if c.ticker != nil {
		c.ticker.Stop()
		c.ticker = nil
	}
	if c.done != nil {
		close(c.done)
		c.done = nil
	}
}
