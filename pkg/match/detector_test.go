package match

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/dshills/gemengine/pkg/board"
)

func TestDetectHorizontalRun(t *testing.T) {
	b := board.New(8)
	row := []board.Kind{board.KindA, board.KindA, board.KindA, board.KindB, board.KindC, board.KindD, board.KindE, board.KindF}
	for c, k := range row {
		b.SetGem(board.Pos{Row: 0, Col: c}, board.Gem{ID: board.GemID(c + 1), Kind: k})
	}
	for r := 1; r < 8; r++ {
		for c := 0; c < 8; c++ {
			b.SetGem(board.Pos{Row: r, Col: c}, board.Gem{ID: board.GemID(100 + r*8 + c), Kind: board.Kind((r + c) % 7)})
		}
	}

	runs := Detect(b)
	found := false
	for _, run := range runs {
		if run.Orientation == Horizontal && run.MinCell == (board.Pos{Row: 0, Col: 0}) && run.Length == 3 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a horizontal run of length 3 at (0,0), got %+v", runs)
	}
}

func TestDetectIgnoresPowerUpTaggedGems(t *testing.T) {
	b := board.New(8)
	for c := 0; c < 3; c++ {
		b.SetGem(board.Pos{Row: 0, Col: c}, board.Gem{ID: board.GemID(c + 1), Kind: board.KindA})
	}
	// Tag the middle cell: the run is broken.
	b.SetGem(board.Pos{Row: 0, Col: 1}, board.Gem{ID: 2, Kind: board.KindA, PowerUp: board.PowerUpLineH})

	runs := Detect(b)
	for _, run := range runs {
		if run.Orientation == Horizontal && run.MinCell.Row == 0 {
			t.Fatalf("tagged gem should break the run, got %+v", run)
		}
	}
}

func TestDetectMaximality(t *testing.T) {
	b := board.New(8)
	for c := 0; c < 5; c++ {
		b.SetGem(board.Pos{Row: 0, Col: c}, board.Gem{ID: board.GemID(c + 1), Kind: board.KindA})
	}
	runs := Detect(b)
	if len(runs) != 1 || runs[0].Length != 5 {
		t.Fatalf("expected a single maximal run of length 5, got %+v", runs)
	}
}

func TestDedupCellsUnionsLAndTShapes(t *testing.T) {
	b := board.New(8)
	// Horizontal run at row 3, cols 0-2; vertical run at col 1, rows 1-3 (sharing (3,1)).
	for c := 0; c < 3; c++ {
		b.SetGem(board.Pos{Row: 3, Col: c}, board.Gem{ID: board.GemID(c + 1), Kind: board.KindA})
	}
	for r := 1; r < 3; r++ {
		b.SetGem(board.Pos{Row: r, Col: 1}, board.Gem{ID: board.GemID(10 + r), Kind: board.KindA})
	}
	runs := Detect(b)
	cells := DedupCells(runs)
	seen := make(map[board.Pos]bool)
	for _, p := range cells {
		if seen[p] {
			t.Fatalf("cell %v appeared more than once in dedup union", p)
		}
		seen[p] = true
	}
	if !seen[(board.Pos{Row: 3, Col: 1})] {
		t.Fatalf("shared cell missing from union")
	}
}

// fillRandomBoard fills every cell with a gem kind drawn from the rapid
// generator, producing an arbitrary (possibly match-laden) board.
func fillRandomBoard(t *rapid.T, n, kinds int) *board.Board {
	b := board.New(n)
	id := board.GemID(1)
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			k := board.Kind(rapid.IntRange(0, kinds-1).Draw(t, "kind"))
			b.SetGem(board.Pos{Row: r, Col: c}, board.Gem{ID: id, Kind: k})
			id++
		}
	}
	return b
}

// TestDetectIdempotence: removing all matched cells and re-detecting yields
// no matches within a single pass, for arbitrary boards.
func TestDetectIdempotence(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(4, 10).Draw(t, "n")
		kinds := rapid.IntRange(4, 7).Draw(t, "kinds")
		b := fillRandomBoard(t, n, kinds)

		runs := Detect(b)
		for _, p := range DedupCells(runs) {
			b.Clear(p)
		}

		for _, run := range Detect(b) {
			for _, p := range run.Cells() {
				if !b.At(p).Occupied {
					// An Empty cell can never be part of a run; if the
					// detector reports one it violates its own contract.
					t.Fatalf("re-detected run touches an emptied cell: %+v", run)
				}
			}
		}
		remaining := Detect(b)
		if len(remaining) != 0 {
			t.Fatalf("expected no matches after removing all detected runs, got %+v", remaining)
		}
	})
}
