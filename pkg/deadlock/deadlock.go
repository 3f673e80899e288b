// Package deadlock implements legal-move enumeration and the shuffle/
// regenerate recovery path.
package deadlock

import (
	"github.com/dshills/gemengine/pkg/board"
	"github.com/dshills/gemengine/pkg/generator"
	"github.com/dshills/gemengine/pkg/match"
	"github.com/dshills/gemengine/pkg/rng"
)

// DefaultMaxShuffleAttempts is the shuffle-attempt bound before falling
// back to full regeneration.
const DefaultMaxShuffleAttempts = 10

// Move is a legal swap: an adjacent pair whose exchange produces a match.
type Move struct {
	A, B board.Pos
}

// LegalMoves enumerates every legal move on b: for each cell, for its
// right and down neighbor (deduping symmetric pairs), tentatively
// swap, run the match detector, and roll back. O(N^2) swaps x O(N^2)
// detection, acceptable at N <= 16.
func LegalMoves(b *board.Board) []Move {
	var moves []Move
	for r := 0; r < b.N; r++ {
		for c := 0; c < b.N; c++ {
			a := board.Pos{Row: r, Col: c}
			for _, d := range [2]board.Pos{{Row: r, Col: c + 1}, {Row: r + 1, Col: c}} {
				if !b.InBounds(d) {
					continue
				}
				if producesMatch(b, a, d) {
					moves = append(moves, Move{A: a, B: d})
				}
			}
		}
	}
	return moves
}

func producesMatch(b *board.Board, a, c board.Pos) bool {
	b.Swap(a, c)
	runs := match.Detect(b)
	b.Swap(a, c)
	return len(runs) > 0
}

// HasLegalMove reports whether at least one legal move exists. Equivalent to
// len(LegalMoves(b)) > 0 but stops at the first hit.
func HasLegalMove(b *board.Board) bool {
	for r := 0; r < b.N; r++ {
		for c := 0; c < b.N; c++ {
			a := board.Pos{Row: r, Col: c}
			for _, d := range [2]board.Pos{{Row: r, Col: c + 1}, {Row: r + 1, Col: c}} {
				if b.InBounds(d) && producesMatch(b, a, d) {
					return true
				}
			}
		}
	}
	return false
}

// Shuffle collects every non-power-up-tagged gem on b, Fisher-Yates shuffles
// them with r, and places them back into their original (non-power-up)
// positions, preserving power-up positions untouched.
func Shuffle(b *board.Board, r *rng.RNG) {
	var positions []board.Pos
	var gems []board.Gem
	b.Each(func(p board.Pos, cell board.Cell) {
		if cell.Occupied && !cell.Gem.IsPowerUp() {
			positions = append(positions, p)
			gems = append(gems, cell.Gem)
		}
	})
	r.Shuffle(len(gems), func(i, j int) {
		gems[i], gems[j] = gems[j], gems[i]
	})
	for i, p := range positions {
		b.SetGem(p, gems[i])
	}
}

// Regenerate replaces every non-power-up-tagged cell with a freshly generated
// gem, preserving power-up positions and kinds, used as the last resort after
// every shuffle attempt has failed.
func Regenerate(b *board.Board, c generator.Constraints, r *rng.RNG, ids *board.IDAllocator) {
	b.Each(func(p board.Pos, cell board.Cell) {
		if cell.Occupied && cell.Gem.IsPowerUp() {
			return
		}
		b.Clear(p)
	})
	for row := 0; row < b.N; row++ {
		for col := 0; col < b.N; col++ {
			p := board.Pos{Row: row, Col: col}
			if !b.At(p).Occupied {
				b.SetGem(p, generator.Generate(p, b, c, r, ids))
			}
		}
	}
}

// Resolve shuffles b up to maxAttempts times, stopping at the first shuffle
// that yields a match-free board with a legal move; if none does, it
// regenerates from scratch. The regenerated board is not checked for a
// legal move. Returns whether shuffling alone succeeded (false means
// regeneration was needed).
func Resolve(b *board.Board, c generator.Constraints, r *rng.RNG, ids *board.IDAllocator, maxAttempts int) (shuffled bool) {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxShuffleAttempts
	}
	for attempt := 0; attempt < maxAttempts; attempt++ {
		Shuffle(b, r)
		if len(match.Detect(b)) == 0 && HasLegalMove(b) {
			return true
		}
	}
	Regenerate(b, c, r, ids)
	return false
}
