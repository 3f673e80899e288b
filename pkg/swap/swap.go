// Package swap implements the swap engine: adjacency checking, legality
// testing via the match detector, and swap-triggered power-up activation,
// with rollback on an illegal swap.
package swap

import (
	"errors"

	"github.com/dshills/gemengine/pkg/board"
	"github.com/dshills/gemengine/pkg/match"
	"github.com/dshills/gemengine/pkg/powerup"
)

// ErrNotAdjacent is returned when the two cells are not orthogonal neighbors.
var ErrNotAdjacent = errors.New("swap: cells are not adjacent")

// ErrOutOfBounds is returned when either cell lies outside the board.
var ErrOutOfBounds = errors.New("swap: cell out of bounds")

// ErrNoMatch is returned when the swap produces no power-up activation and
// no match; the board is rolled back to its pre-swap state.
var ErrNoMatch = errors.New("swap: no match produced")

// Result classifies what a successful Attempt triggers.
type Result int

const (
	// ResultMatch means the swap produced at least one match; the caller
	// should hand control to the cascade engine.
	ResultMatch Result = iota
	// ResultActivation means the swap moved a power-up into or out of a
	// position and triggered an activation instead of an ordinary match.
	ResultActivation
)

// Outcome describes what a committed swap triggers.
type Outcome struct {
	Result      Result
	Activations []powerup.Activation
}

// Attempt performs one swap attempt: adjacency check, tentative swap,
// power-up activation check, then match check with rollback. The board
// b is mutated in place; on ErrNotAdjacent or ErrOutOfBounds it is untouched,
// and on ErrNoMatch it is restored to its pre-call state.
func Attempt(b *board.Board, a, c board.Pos) (Outcome, error) {
	if !b.InBounds(a) || !b.InBounds(c) {
		return Outcome{}, ErrOutOfBounds
	}
	if !board.Adjacent(a, c) {
		return Outcome{}, ErrNotAdjacent
	}

	b.Swap(a, c)

	var activations []powerup.Activation
	for _, p := range [2]board.Pos{a, c} {
		other := a
		if p == a {
			other = c
		}
		cell := b.At(p)
		if !cell.Occupied || !cell.Gem.IsPowerUp() {
			continue
		}
		target := cell.Gem.Kind
		if cell.Gem.PowerUp == board.PowerUpColorClear {
			target = b.At(other).Gem.Kind
		}
		activations = append(activations, powerup.Activation{
			Anchor: p,
			Tag:    cell.Gem.PowerUp,
			Cells:  powerup.ImpactSet(b, cell.Gem.PowerUp, p, target),
		})
	}
	if len(activations) > 0 {
		return Outcome{Result: ResultActivation, Activations: activations}, nil
	}

	if runs := match.Detect(b); len(runs) > 0 {
		return Outcome{Result: ResultMatch}, nil
	}

	b.Swap(a, c) // rollback: restore pre-swap state
	return Outcome{}, ErrNoMatch
}
