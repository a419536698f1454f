// apps/go-server/internal/game/session.go
//
// Session hosts one game: the current State, the deal generation and the
// single outstanding mismatch timer.
//
// Notes:
//   - All methods are safe for concurrent use (one mutex per session).
//   - Initialize cancels the pending timer AND bumps the generation, so a
//     callback that already fired but is waiting for the lock finds a newer
//     generation and does nothing.
//   - Seeded sessions (daily deals) re-deal the same board on every Initialize.

package game

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultRevealDelay is how long a mismatched pair stays visible.
const DefaultRevealDelay = time.Second

// Scheduler runs f once after d. The returned stop func cancels the call
// and reports whether it was still pending. f must not run before
// AfterFunc returns.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) (stop func() bool)
}

// SchedulerFunc adapts a function to Scheduler.
type SchedulerFunc func(d time.Duration, f func()) func() bool

func (fn SchedulerFunc) AfterFunc(d time.Duration, f func()) func() bool { return fn(d, f) }

// TimeScheduler schedules on the runtime timer (time.AfterFunc).
var TimeScheduler Scheduler = SchedulerFunc(func(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
})

// Options configures a Session.
type Options struct {
	ID          string        // Defaults to a random UUID.
	Theme       string        // Name of the palette Pool came from; informational.
	Pool        []string      // Candidate symbols.
	Pairs       int           // Pairs per deal.
	RevealDelay time.Duration // Defaults to DefaultRevealDelay.
	Scheduler   Scheduler     // Defaults to TimeScheduler.
	Seed        *[2]uint64    // When set, every deal uses a PCG source with this seed.
}

// Session owns the state of a single game.
type Session struct {
	id   string
	opts Options

	mu        sync.Mutex
	state     State
	gen       uint64
	stop      func() bool
	startedAt time.Time
}

// NewSession validates opts and deals the first board.
func NewSession(opts Options) (*Session, error) {
	if opts.ID == "" {
		opts.ID = uuid.NewString()
	}
	if opts.RevealDelay <= 0 {
		opts.RevealDelay = DefaultRevealDelay
	}
	if opts.Scheduler == nil {
		opts.Scheduler = TimeScheduler
	}
	s := &Session{id: opts.ID, opts: opts}
	if err := s.Initialize(); err != nil {
		return nil, err
	}
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Theme returns the palette name given in Options.
func (s *Session) Theme() string { return s.opts.Theme }

// Pairs returns the configured board size in pairs.
func (s *Session) Pairs() int { return s.opts.Pairs }

// Initialize discards the current board and deals a new one.
// On error the previous state is left untouched.
func (s *Session) Initialize() error {
	var rng *rand.Rand
	if seed := s.opts.Seed; seed != nil {
		rng = rand.New(rand.NewPCG(seed[0], seed[1]))
	}
	st, err := Deal(s.opts.Pool, s.opts.Pairs, rng)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		s.stop()
		s.stop = nil
	}
	s.gen++
	st.Generation = s.gen
	s.state = st
	s.startedAt = time.Now().UTC()
	return nil
}

// Flip forwards a tap on card id and returns the resulting state.
// A mismatch schedules the flip-back after the reveal window.
func (s *Session) Flip(id int) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, reveal := Flip(s.state, id)
	s.state = next
	if reveal != nil {
		r := *reveal
		s.stop = s.opts.Scheduler.AfterFunc(s.opts.RevealDelay, func() { s.resolve(r) })
	}
	return next.clone()
}

// resolve is the timer callback for a mismatch.
func (s *Session) resolve(r Reveal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.Generation != s.gen {
		return
	}
	s.state = ResolveMismatch(s.state, r)
	s.stop = nil
}

// State returns a copy of the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Generation returns the number of deals made by this session.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// StartedAt returns when the current board was dealt.
func (s *Session) StartedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startedAt
}
