// Package powerup implements power-up creation and activation: the rules
// that turn a long match into a tagged gem, and the rules that turn an
// activated tag into a set of removed cells.
package powerup

import "github.com/dshills/gemengine/pkg/board"

// TagForRun returns the power-up tag a resolved match of the given length
// and orientation promotes to. Length must be >= 4; callers never promote
// length-3 matches.
func TagForRun(length int, horizontal bool) board.PowerUpTag {
	switch {
	case length == 4 && horizontal:
		return board.PowerUpLineH
	case length == 4 && !horizontal:
		return board.PowerUpLineV
	case length == 5:
		return board.PowerUpColorClear
	default: // length >= 6
		return board.PowerUpBomb3x3
	}
}

// CenterIndex returns the 0-based index of the center cell within a run of
// the given length: floor(len/2), so even-length runs promote the second of
// the two middle cells counting from the run's MinCell.
func CenterIndex(length int) int {
	return length / 2
}

// MostCommonKind returns the non-power-up kind with the highest occupied
// count on b, used as the ColorClear target for direct-click activation.
// Ties break toward the lowest Kind value so the result is deterministic.
func MostCommonKind(b *board.Board) board.Kind {
	var counts [board.MaxKinds]int
	b.Each(func(_ board.Pos, c board.Cell) {
		if c.Occupied && !c.Gem.IsPowerUp() {
			counts[c.Gem.Kind]++
		}
	})
	best := board.Kind(0)
	for k := 1; k < board.MaxKinds; k++ {
		if counts[k] > counts[best] {
			best = board.Kind(k)
		}
	}
	return best
}

// ImpactSet returns the cells an activation of tag anchored at anchor
// removes. targetKind supplies the ColorClear parameter and is ignored for
// other tags. The anchor itself is always
// included. Bomb3x3's 3x3 neighborhood is clipped to the board at edges
// and corners.
func ImpactSet(b *board.Board, tag board.PowerUpTag, anchor board.Pos, targetKind board.Kind) []board.Pos {
	switch tag {
	case board.PowerUpLineH:
		cells := make([]board.Pos, 0, b.N)
		for c := 0; c < b.N; c++ {
			cells = append(cells, board.Pos{Row: anchor.Row, Col: c})
		}
		return cells
	case board.PowerUpLineV:
		cells := make([]board.Pos, 0, b.N)
		for r := 0; r < b.N; r++ {
			cells = append(cells, board.Pos{Row: r, Col: anchor.Col})
		}
		return cells
	case board.PowerUpBomb3x3:
		var cells []board.Pos
		for r := anchor.Row - 1; r <= anchor.Row+1; r++ {
			for c := anchor.Col - 1; c <= anchor.Col+1; c++ {
				p := board.Pos{Row: r, Col: c}
				if b.InBounds(p) {
					cells = append(cells, p)
				}
			}
		}
		return cells
	case board.PowerUpColorClear:
		var cells []board.Pos
		b.Each(func(p board.Pos, cell board.Cell) {
			if cell.Occupied && !cell.Gem.IsPowerUp() && cell.Gem.Kind == targetKind {
				cells = append(cells, p)
			}
		})
		cells = append(cells, anchor)
		return cells
	default:
		return []board.Pos{anchor}
	}
}

// Activation is one power-up's resolved activation: its anchor, its tag and
// the cells it removes.
type Activation struct {
	Anchor board.Pos
	Tag    board.PowerUpTag
	Cells  []board.Pos
}

// ResolveChain performs breadth-first chain activation: starting from the
// initial activations, any removed cell that
// itself carries a power-up tag activates too, in insertion order, each at
// most once per cascade level. Returns the union of all removed cells across
// every activation in the chain, plus the ordered list of activations (for
// building PromotedPowerUp/Removed-style events upstream).
func ResolveChain(b *board.Board, initial []Activation) (removed []board.Pos, chain []Activation) {
	activated := make(map[board.Pos]bool)
	removedSet := make(map[board.Pos]bool)
	queue := append([]Activation(nil), initial...)

	for _, a := range queue {
		activated[a.Anchor] = true
	}

	for i := 0; i < len(queue); i++ {
		a := queue[i]
		for _, p := range a.Cells {
			if !removedSet[p] {
				removedSet[p] = true
				removed = append(removed, p)
			}
			if p == a.Anchor || activated[p] {
				continue
			}
			cell := b.At(p)
			if cell.Occupied && cell.Gem.IsPowerUp() {
				activated[p] = true
				target := cell.Gem.Kind
				if cell.Gem.PowerUp == board.PowerUpColorClear {
					target = MostCommonKind(b)
				}
				next := Activation{
					Anchor: p,
					Tag:    cell.Gem.PowerUp,
					Cells:  ImpactSet(b, cell.Gem.PowerUp, p, target),
				}
				queue = append(queue, next)
				chain = append(chain, next)
			}
		}
	}
	return removed, chain
}
