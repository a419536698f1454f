package game

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// manualScheduler records scheduled callbacks; tests fire them explicitly.
type manualScheduler struct {
	mu    sync.Mutex
	tasks []*manualTask
}

type manualTask struct {
	delay    time.Duration
	f        func()
	canceled bool
}

func (m *manualScheduler) AfterFunc(d time.Duration, f func()) func() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	task := &manualTask{delay: d, f: f}
	m.tasks = append(m.tasks, task)
	return func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		was := !task.canceled
		task.canceled = true
		return was
	}
}

// last returns the most recently scheduled task.
func (m *manualScheduler) last(t *testing.T) *manualTask {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.tasks)
	return m.tasks[len(m.tasks)-1]
}

func newTestSession(t *testing.T, sched Scheduler) *Session {
	t.Helper()
	s, err := NewSession(Options{
		ID:        "test",
		Pool:      []string{"a", "b", "c"},
		Pairs:     3,
		Scheduler: sched,
		Seed:      &[2]uint64{11, 13},
	})
	require.NoError(t, err)
	return s
}

// mismatch returns two ids holding different symbols.
func mismatch(st State) (int, int) {
	for i := 1; i < len(st.Cards); i++ {
		if st.Cards[i].Symbol != st.Cards[0].Symbol {
			return 0, i
		}
	}
	panic("board has a single symbol")
}

// partner returns the other id holding the symbol of id.
func partner(st State, id int) int {
	for _, c := range st.Cards {
		if c.ID != id && c.Symbol == st.Cards[id].Symbol {
			return c.ID
		}
	}
	panic("no partner")
}

func TestNewSessionDefaults(t *testing.T) {
	t.Parallel()
	s, err := NewSession(Options{Pool: []string{"x", "y"}, Pairs: 2})
	require.NoError(t, err)

	assert.NotEmpty(t, s.ID())
	assert.Equal(t, 2, s.Pairs())
	assert.Equal(t, uint64(1), s.Generation())
	assert.Equal(t, DefaultRevealDelay, s.opts.RevealDelay)
	assert.False(t, s.StartedAt().IsZero())
	assert.Len(t, s.State().Cards, 4)
}

func TestNewSessionPoolTooSmall(t *testing.T) {
	t.Parallel()
	_, err := NewSession(Options{Pool: []string{"x"}, Pairs: 2})
	assert.ErrorIs(t, err, ErrPoolTooSmall)
}

func TestSessionMismatchReveal(t *testing.T) {
	t.Parallel()
	sched := &manualScheduler{}
	s := newTestSession(t, sched)
	a, b := mismatch(s.State())

	s.Flip(a)
	st := s.Flip(b)
	assert.True(t, st.Locked)
	assert.Equal(t, 1, st.Moves)

	task := sched.last(t)
	assert.Equal(t, DefaultRevealDelay, task.delay)

	// taps during the reveal window are ignored
	c := partner(s.State(), a)
	assert.Equal(t, st, s.Flip(c))

	task.f()
	st = s.State()
	assert.False(t, st.Locked)
	assert.False(t, st.Cards[a].IsFlipped)
	assert.False(t, st.Cards[b].IsFlipped)
	assert.Empty(t, st.Pending)
	assert.Equal(t, 1, st.Moves)

	// a duplicate fire changes nothing
	task.f()
	assert.Equal(t, st, s.State())
}

func TestSessionInitializeCancelsReveal(t *testing.T) {
	t.Parallel()
	sched := &manualScheduler{}
	s := newTestSession(t, sched)
	a, b := mismatch(s.State())

	s.Flip(a)
	s.Flip(b)
	task := sched.last(t)

	require.NoError(t, s.Initialize())
	assert.True(t, task.canceled)
	assert.Equal(t, uint64(2), s.Generation())

	// flip a card in the new deal, then let the stale callback run anyway
	fresh := s.Flip(a)
	require.True(t, fresh.Cards[a].IsFlipped)

	task.f()
	st := s.State()
	assert.True(t, st.Cards[a].IsFlipped, "stale reveal must not touch the new deal")
	assert.Equal(t, []int{a}, st.Pending)
	assert.False(t, st.Locked)
	assert.Equal(t, 0, st.Moves)
}

func TestSessionSeededRestartDealsSameBoard(t *testing.T) {
	t.Parallel()
	s := newTestSession(t, &manualScheduler{})
	before := s.State().Cards

	s.Flip(0)
	require.NoError(t, s.Initialize())
	after := s.State()
	assert.Equal(t, before, after.Cards)
	assert.Empty(t, after.Pending)
	assert.Equal(t, 0, after.Moves)
}

func TestSessionStateIsACopy(t *testing.T) {
	t.Parallel()
	s := newTestSession(t, &manualScheduler{})

	st := s.State()
	st.Cards[0].IsFlipped = true
	assert.False(t, s.State().Cards[0].IsFlipped)
}

func TestSessionPlayToCompletion(t *testing.T) {
	t.Parallel()
	s := newTestSession(t, &manualScheduler{})

	for _, c := range s.State().Cards {
		st := s.State()
		if st.Cards[c.ID].IsMatched {
			continue
		}
		s.Flip(c.ID)
		st = s.Flip(partner(st, c.ID))
		assert.Equal(t, ResultCorrect, st.LastResult)
	}
	st := s.State()
	assert.True(t, st.IsComplete())
	assert.Equal(t, 3, st.Moves)
}

func TestSessionTimeScheduler(t *testing.T) {
	t.Parallel()
	s, err := NewSession(Options{
		Pool:        []string{"a", "b"},
		Pairs:       2,
		RevealDelay: 10 * time.Millisecond,
		Seed:        &[2]uint64{1, 2},
	})
	require.NoError(t, err)
	a, b := mismatch(s.State())

	s.Flip(a)
	require.True(t, s.Flip(b).Locked)
	assert.Eventually(t, func() bool { return !s.State().Locked }, time.Second, 5*time.Millisecond)
	assert.False(t, s.State().Cards[a].IsFlipped)
}
