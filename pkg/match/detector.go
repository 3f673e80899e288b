// Package match implements the match detector:
// finding every maximal run of three or more same-kind, untagged gems in a
// row or column.
package match

import "github.com/dshills/gemengine/pkg/board"

// Orientation is the axis a Run lies on.
type Orientation int

const (
	Horizontal Orientation = iota
	Vertical
)

func (o Orientation) String() string {
	if o == Horizontal {
		return "H"
	}
	return "V"
}

// Run is a maximal contiguous sequence of same-kind, untagged gems.
// MinCell is the run's lowest (row, col) endpoint; together with the
// orientation and length it keys the run as a set element, since run order
// is not part of the detector's contract.
type Run struct {
	Orientation Orientation
	MinCell     board.Pos
	Kind        board.Kind
	Length      int
}

// Cells returns every coordinate covered by the run, in ascending order.
func (r Run) Cells() []board.Pos {
	cells := make([]board.Pos, r.Length)
	for i := 0; i < r.Length; i++ {
		if r.Orientation == Horizontal {
			cells[i] = board.Pos{Row: r.MinCell.Row, Col: r.MinCell.Col + i}
		} else {
			cells[i] = board.Pos{Row: r.MinCell.Row + i, Col: r.MinCell.Col}
		}
	}
	return cells
}

// Detect returns every maximal run of length >= 3 on b. A run never crosses
// an Empty cell, a kind change, or a power-up tagged gem:
// tagged gems never participate in ordinary matching. Output order is not
// part of the contract — tests should compare as sets keyed by
// {orientation, min_cell, length}.
func Detect(b *board.Board) []Run {
	var runs []Run
	runs = append(runs, scanRows(b)...)
	runs = append(runs, scanCols(b)...)
	return runs
}

func scanRows(b *board.Board) []Run {
	var runs []Run
	for r := 0; r < b.N; r++ {
		c := 0
		for c < b.N {
			start, kind, ok := runStart(b, board.Pos{Row: r, Col: c})
			if !ok {
				c++
				continue
			}
			length := 1
			for c+length < b.N && sameMatchable(b, board.Pos{Row: r, Col: c + length}, kind) {
				length++
			}
			if length >= 3 {
				runs = append(runs, Run{Orientation: Horizontal, MinCell: board.Pos{Row: r, Col: c}, Kind: kind, Length: length})
			}
			_ = start
			c += length
		}
	}
	return runs
}

func scanCols(b *board.Board) []Run {
	var runs []Run
	for c := 0; c < b.N; c++ {
		r := 0
		for r < b.N {
			_, kind, ok := runStart(b, board.Pos{Row: r, Col: c})
			if !ok {
				r++
				continue
			}
			length := 1
			for r+length < b.N && sameMatchable(b, board.Pos{Row: r + length, Col: c}, kind) {
				length++
			}
			if length >= 3 {
				runs = append(runs, Run{Orientation: Vertical, MinCell: board.Pos{Row: r, Col: c}, Kind: kind, Length: length})
			}
			r += length
		}
	}
	return runs
}

// runStart reports whether p holds a matchable (occupied, untagged) gem and
// returns its kind.
func runStart(b *board.Board, p board.Pos) (board.Pos, board.Kind, bool) {
	cell := b.At(p)
	if !cell.Occupied || cell.Gem.IsPowerUp() {
		return p, 0, false
	}
	return p, cell.Gem.Kind, true
}

func sameMatchable(b *board.Board, p board.Pos, kind board.Kind) bool {
	cell := b.At(p)
	return cell.Occupied && !cell.Gem.IsPowerUp() && cell.Gem.Kind == kind
}

// DedupCells returns the union of cells covered by runs, each cell listed
// once even if it belongs to both an H and a V run.
func DedupCells(runs []Run) []board.Pos {
	seen := make(map[board.Pos]bool)
	var out []board.Pos
	for _, r := range runs {
		for _, p := range r.Cells() {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	return out
}
