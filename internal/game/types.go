// apps/go-server/internal/game/types.go
//
// Core type definitions for the Memory game engine.
// Defines:
//   - Result: outcome of the most recent pair evaluation (none/correct/incorrect).
//   - Card: one face of the board.
//   - State: the full, immutable-by-convention board state for one deal.
//   - Reveal: a scheduled flip-back for a mismatched pair.

package game

// Result describes the outcome of the most recently completed evaluation.
// Presentation uses it to trigger feedback (sound, vibration).
type Result string

const (
	ResultNone      Result = "none"
	ResultCorrect   Result = "correct"
	ResultIncorrect Result = "incorrect"
)

// Card is a single card on the board.
type Card struct {
	ID        int    // Positional identifier, 0..N-1, stable for the deal.
	Symbol    string // Palette symbol; exactly two cards share each value.
	IsFlipped bool   // Face up (pending evaluation or matched).
	IsMatched bool   // Pair confirmed; never reverts.
}

// State holds a single deal. Operations in this package never mutate a
// State in place; they return a new value.
type State struct {
	Cards      []Card
	Pending    []int  // IDs face up but not yet matched (at most 2).
	Moves      int    // Completed pair evaluations.
	Locked     bool   // Mismatched pair visible; flips are ignored.
	LastResult Result
	Generation uint64 // Deal this state belongs to; set by the Session.
}

// Reveal identifies the mismatched pair that must be turned face down once
// the reveal window elapses. It is only valid for the generation it was
// created in.
type Reveal struct {
	Generation uint64
	IDs        [2]int
}
