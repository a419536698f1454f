// apps/go-server/internal/game/engine.go
//
// Core game engine for a single Memory deal.
// Responsibilities:
//   - Deal a shuffled board of duplicated symbols drawn from a palette.
//   - Apply flips: pair evaluation, move counting, mismatch lock.
//   - Turn a mismatched pair back face down once the reveal window is over.
//   - Report completion.
//
// Notes:
//   - Every transition is a pure function over State; the cards slice is
//     cloned before any change so callers can keep older snapshots.
//   - Invalid or out-of-turn flips are no-ops, not errors.
//   - Timing lives in Session (session.go); this file never sleeps.
package game

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
)

var (
	// ErrInvalidPairCount is returned by Deal when pairs is not positive.
	ErrInvalidPairCount = errors.New("pair count must be positive")
	// ErrPoolTooSmall is returned by Deal when the palette cannot supply
	// the requested number of distinct symbols.
	ErrPoolTooSmall = errors.New("symbol pool smaller than pair count")
)

// Deal builds a new board of 2*pairs cards.
//
// Steps:
//   - Collapse duplicate pool entries (first occurrence wins).
//   - Pick pairs distinct symbols uniformly without replacement.
//   - Duplicate and shuffle the instances, then number them 0..N-1.
//
// rng may be nil, in which case the process-wide source is used.
func Deal(pool []string, pairs int, rng *rand.Rand) (State, error) {
	if pairs <= 0 {
		return State{}, ErrInvalidPairCount
	}
	distinct := uniq(pool)
	if pairs > len(distinct) {
		return State{}, fmt.Errorf("%w: want %d, have %d", ErrPoolTooSmall, pairs, len(distinct))
	}

	shuffle(rng, len(distinct), func(i, j int) { distinct[i], distinct[j] = distinct[j], distinct[i] })
	chosen := distinct[:pairs]

	deck := make([]string, 0, 2*pairs)
	deck = append(deck, chosen...)
	deck = append(deck, chosen...)
	shuffle(rng, len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })

	cards := make([]Card, len(deck))
	for i, sym := range deck {
		cards[i] = Card{ID: i, Symbol: sym}
	}
	return State{
		Cards:      cards,
		Pending:    []int{},
		LastResult: ResultNone,
	}, nil
}

// Flip turns card id face up and, when it completes a pair, evaluates it.
//
// The flip is ignored (s is returned as-is) when:
//   - the board is locked,
//   - id does not name a card,
//   - the card is already pending, matched or face up.
//
// A mismatch locks the board and returns a Reveal the caller must schedule;
// the result is nil in every other case.
func Flip(s State, id int) (State, *Reveal) {
	if s.Locked || id < 0 || id >= len(s.Cards) || slices.Contains(s.Pending, id) {
		return s, nil
	}
	if c := s.Cards[id]; c.IsMatched || c.IsFlipped {
		return s, nil
	}

	next := s.clone()
	next.Cards[id].IsFlipped = true
	next.Pending = append(next.Pending, id)

	if len(next.Pending) == 1 {
		next.LastResult = ResultNone
		return next, nil
	}

	next.Moves++
	a, b := next.Pending[0], next.Pending[1]
	if next.Cards[a].Symbol == next.Cards[b].Symbol {
		next.Cards[a].IsMatched = true
		next.Cards[b].IsMatched = true
		next.Pending = []int{}
		next.Locked = false
		next.LastResult = ResultCorrect
		return next, nil
	}

	next.Locked = true
	next.LastResult = ResultIncorrect
	return next, &Reveal{Generation: next.Generation, IDs: [2]int{a, b}}
}

// ResolveMismatch ends the reveal window for r: both cards go face down and
// the board unlocks. It is a no-op when r belongs to another deal or has
// already been applied.
func ResolveMismatch(s State, r Reveal) State {
	if !s.Locked || s.Generation != r.Generation || len(s.Pending) != 2 ||
		s.Pending[0] != r.IDs[0] || s.Pending[1] != r.IDs[1] {
		return s
	}
	next := s.clone()
	for _, id := range r.IDs {
		next.Cards[id].IsFlipped = false
	}
	next.Pending = []int{}
	next.Locked = false
	return next
}

// IsComplete reports whether every card on a non-empty board is matched.
func (s State) IsComplete() bool {
	if len(s.Cards) == 0 {
		return false
	}
	for _, c := range s.Cards {
		if !c.IsMatched {
			return false
		}
	}
	return true
}

// Matched returns the number of matched pairs.
func (s State) Matched() int {
	n := 0
	for _, c := range s.Cards {
		if c.IsMatched {
			n++
		}
	}
	return n / 2
}

// clone deep-copies the slices of s.
func (s State) clone() State {
	s.Cards = slices.Clone(s.Cards)
	s.Pending = append(make([]int, 0, 2), s.Pending...)
	return s
}

// uniq returns pool without repeated entries, in first-seen order.
func uniq(pool []string) []string {
	seen := make(map[string]struct{}, len(pool))
	out := make([]string, 0, len(pool))
	for _, p := range pool {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// shuffle is a Fisher–Yates permutation using rng, or the global source.
func shuffle(rng *rand.Rand, n int, swap func(i, j int)) {
	if rng == nil {
		rand.Shuffle(n, swap)
		return
	}
	rng.Shuffle(n, swap)
}
