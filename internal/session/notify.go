package session

import (
	"sync"

	"github.com/roach88/bouttime/internal/catalog"
	"github.com/roach88/bouttime/internal/round"
)

type noteKind int

const (
	noteTick noteKind = iota + 1
	noteExpired
	noteRoundStart
	noteRoundComplete
	noteSessionComplete
)

// notification is one queued Observer call.
type notification struct {
	kind            noteKind
	remaining       int
	events          [round.Size]catalog.Event
	correct         bool
	score           int
	roundsRemaining int
	totalRounds     int
}

func (n notification) deliver(o Observer) {
	switch n.kind {
	case noteTick:
		o.OnTick(n.remaining)
	case noteExpired:
		o.OnExpired()
	case noteRoundStart:
		o.OnRoundStart(n.events)
	case noteRoundComplete:
		o.OnRoundComplete(n.correct, n.score, n.roundsRemaining)
	case noteSessionComplete:
		o.OnSessionComplete(n.score, n.totalRounds)
	}
}

// notifier is a FIFO queue of notifications with a single drainer.
//
// The session enqueues while holding its own lock and drains after
// releasing it. Whoever finds the queue idle becomes the drainer; anyone
// else (including an Observer re-entering the session) just enqueues and
// returns, and the active drainer delivers their notifications in order.
type notifier struct {
	mu       sync.Mutex
	pending  []notification
	draining bool
}

func newNotifier() *notifier {
	return &notifier{pending: make([]notification, 0, 8)}
}

func (q *notifier) enqueue(n notification) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, n)
}

// drain delivers queued notifications to o until the queue is empty.
// Returns immediately if another call is already draining.
func (q *notifier) drain(o Observer) {
	q.mu.Lock()
	if q.draining {
		q.mu.Unlock()
		return
	}
	q.draining = true
	q.mu.Unlock()

	for {
		n, ok := q.next()
		if !ok {
			return
		}
		n.deliver(o)
	}
}

// next pops the front notification, or clears the draining flag when the
// queue is empty. Both happen under one lock so an enqueue cannot slip in
// between the empty check and the hand-off.
func (q *notifier) next() (notification, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) == 0 {
		q.draining = false
		q.pending = q.pending[:0]
		return notification{}, false
	}
	n := q.pending[0]
	q.pending[0] = notification{}
	q.pending = q.pending[1:]
	return n, true
}

func (q *notifier) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
