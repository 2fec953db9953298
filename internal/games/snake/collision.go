package snake

import (
	"fmt"

	"github.com/anton-goran/snake-game-cosmic/internal/core"
)

// Outcome classifies a candidate head position.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeSelf
	OutcomeOutOfBounds
)

// String returns a human-readable name for the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeSelf:
		return "self"
	case OutcomeOutOfBounds:
		return "out_of_bounds"
	default:
		return "unknown"
	}
}

// Classify decides whether moving the head onto candidate is legal.
//
// body is the snake before the move is committed. The tail cell is only
// excluded from the self check when it is vacated this tick, i.e. when the
// move does not also grow the snake. In pass-through mode the candidate has
// already been wrapped, so OutcomeOutOfBounds cannot occur there.
func Classify(candidate core.Coord, body []core.Coord, growing bool, mode core.Mode, gridSize int) Outcome {
	switch mode {
	case core.ModeWalls:
		if !core.InBounds(candidate, gridSize) {
			return OutcomeOutOfBounds
		}
	case core.ModePassThrough:
	default:
		panic(fmt.Sprintf("snake: unhandled mode %v", mode))
	}

	checkLen := len(body)
	if !growing && checkLen > 0 {
		checkLen-- // Tail will be removed
	}
	for i := range checkLen {
		if body[i] == candidate {
			return OutcomeSelf
		}
	}
	return OutcomeOK
}
