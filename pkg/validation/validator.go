// Package validation implements an internal invariant checker for the
// board. The engine façade uses its report to decide whether to roll back
// to the last good snapshot or mark itself Poisoned.
package validation

import (
	"fmt"

	"github.com/dshills/gemengine/pkg/board"
	"github.com/dshills/gemengine/pkg/deadlock"
	"github.com/dshills/gemengine/pkg/match"
)

// Result is one invariant check outcome.
type Result struct {
	Invariant string
	Satisfied bool
	Details   string
}

// Report aggregates every invariant check run against a board.
type Report struct {
	Passed  bool
	Results []Result
}

// CheckBoard runs the structural invariants checkable from board state
// alone — no resting matches, unique gem ids, fully filled — and, if
// minMoves > 0, that at least minMoves legal moves exist. Tag immutability
// ("power_up tag set only at creation") is a property of the code path that
// created a gem, not of a board snapshot, so it is not re-derivable here;
// it is enforced by construction in pkg/cascade and pkg/powerup instead.
func CheckBoard(b *board.Board, minMoves int) Report {
	report := Report{Passed: true}

	report.add(checkNoMatches(b))
	report.add(checkUniqueIDs(b))
	report.add(checkFullyFilled(b))
	if minMoves > 0 {
		report.add(checkLegalMoves(b, minMoves))
	}

	return report
}

func (r *Report) add(res Result) {
	r.Results = append(r.Results, res)
	if !res.Satisfied {
		r.Passed = false
	}
}

// checkNoMatches: between player actions the board contains no matches of
// length >= 3.
func checkNoMatches(b *board.Board) Result {
	runs := match.Detect(b)
	if len(runs) == 0 {
		return Result{Invariant: "no-resting-matches", Satisfied: true, Details: "no resting matches"}
	}
	return Result{Invariant: "no-resting-matches", Satisfied: false, Details: fmt.Sprintf("%d unresolved match(es) at rest", len(runs))}
}

// checkUniqueIDs enforces gem id uniqueness across the board.
func checkUniqueIDs(b *board.Board) Result {
	seen := make(map[board.GemID]bool)
	dup := 0
	b.Each(func(_ board.Pos, c board.Cell) {
		if !c.Occupied {
			return
		}
		if seen[c.Gem.ID] {
			dup++
		}
		seen[c.Gem.ID] = true
	})
	if dup == 0 {
		return Result{Invariant: "unique-gem-ids", Satisfied: true, Details: "all gem ids unique"}
	}
	return Result{Invariant: "unique-gem-ids", Satisfied: false, Details: fmt.Sprintf("%d duplicate gem id(s)", dup)}
}

// checkFullyFilled enforces that the board is fully occupied at rest.
func checkFullyFilled(b *board.Board) Result {
	n := b.EmptyCount()
	if n == 0 {
		return Result{Invariant: "fully-filled", Satisfied: true, Details: "board fully occupied"}
	}
	return Result{Invariant: "fully-filled", Satisfied: false, Details: fmt.Sprintf("%d empty cell(s) at rest", n)}
}

// checkLegalMoves enforces that at least minMoves legal moves exist.
func checkLegalMoves(b *board.Board, minMoves int) Result {
	n := len(deadlock.LegalMoves(b))
	if n >= minMoves {
		return Result{Invariant: "min-legal-moves", Satisfied: true, Details: fmt.Sprintf("%d legal move(s) available", n)}
	}
	return Result{Invariant: "min-legal-moves", Satisfied: false, Details: fmt.Sprintf("only %d legal move(s), need %d", n, minMoves)}
}
