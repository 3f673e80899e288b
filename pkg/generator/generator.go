// Package generator implements controlled random gem generation: the
// initial board fill, post-cascade refill, and the shared placement rule
// both use to avoid creating immediate matches.
package generator

import (
	"github.com/dshills/gemengine/pkg/board"
	"github.com/dshills/gemengine/pkg/gravity"
	"github.com/dshills/gemengine/pkg/match"
	"github.com/dshills/gemengine/pkg/rng"
)

// DefaultMaxAttempts bounds placement retries before falling back to any
// allowed kind.
const DefaultMaxAttempts = 20

// Constraints parameterizes generation: the currently allowed kind subset,
// controlled by the difficulty tier, and the retry bound.
type Constraints struct {
	KindsAllowed []board.Kind
	MaxAttempts  int
}

func (c Constraints) maxAttempts() int {
	if c.MaxAttempts <= 0 {
		return DefaultMaxAttempts
	}
	return c.MaxAttempts
}

// Generate returns a new base gem, never power-up-tagged, for pos. It
// retries up to c.MaxAttempts times to find a kind that does not
// create an immediate run of length >= 3 with already-placed neighbors; if
// every attempt fails it places any allowed kind and relies on the caller's
// post-fill sanity pass to repair (livelock avoidance).
func Generate(pos board.Pos, b *board.Board, c Constraints, r *rng.RNG, ids *board.IDAllocator) board.Gem {
	kinds := c.KindsAllowed
	if len(kinds) == 0 {
		kinds = defaultKinds()
	}

	chosen := kinds[r.Intn(len(kinds))]
	for attempt := 0; attempt < c.maxAttempts(); attempt++ {
		k := kinds[r.Intn(len(kinds))]
		if !wouldMatch(b, pos, k) {
			chosen = k
			break
		}
	}
	return board.Gem{ID: ids.Next(), Kind: chosen}
}

func defaultKinds() []board.Kind {
	kinds := make([]board.Kind, board.MaxKinds)
	for i := range kinds {
		kinds[i] = board.Kind(i)
	}
	return kinds
}

// wouldMatch reports whether placing kind at pos would complete an immediate
// run of length >= 3 against already-placed neighbors to the left (row scan)
// or above (column scan). It only looks backward: in FillInitial the forward
// neighbors are still empty, but during Refill the cells below or to the
// right may already be occupied, so a refilled gem can still complete a run
// with them; such runs are left for the next detection pass.
func wouldMatch(b *board.Board, pos board.Pos, kind board.Kind) bool {
	if pos.Col >= 2 {
		a := b.At(board.Pos{Row: pos.Row, Col: pos.Col - 1})
		c := b.At(board.Pos{Row: pos.Row, Col: pos.Col - 2})
		if sameMatchableKind(a, kind) && sameMatchableKind(c, kind) {
			return true
		}
	}
	if pos.Row >= 2 {
		a := b.At(board.Pos{Row: pos.Row - 1, Col: pos.Col})
		c := b.At(board.Pos{Row: pos.Row - 2, Col: pos.Col})
		if sameMatchableKind(a, kind) && sameMatchableKind(c, kind) {
			return true
		}
	}
	return false
}

func sameMatchableKind(cell board.Cell, kind board.Kind) bool {
	return cell.Occupied && !cell.Gem.IsPowerUp() && cell.Gem.Kind == kind
}

// FillInitial constructs the initial board: fills every cell in row-major
// order using the placement rule, then runs a sanity pass — detect matches,
// remove them without scoring, apply gravity and refill, and repeat — until
// the board is clean. Verifying that enough legal moves exist, and
// shuffling when they don't, is the caller's responsibility (pkg/deadlock);
// this package never depends on move enumeration.
func FillInitial(b *board.Board, c Constraints, r *rng.RNG, ids *board.IDAllocator) {
	for row := 0; row < b.N; row++ {
		for col := 0; col < b.N; col++ {
			pos := board.Pos{Row: row, Col: col}
			b.SetGem(pos, Generate(pos, b, c, r, ids))
		}
	}
	sanitize(b, c, r, ids)
}

// sanitize silently removes any matches present on b and repeatedly applies
// gravity and refill until none remain, without emitting score or events —
// it is only used to repair an artifact of the bounded-retry placement rule.
func sanitize(b *board.Board, c Constraints, r *rng.RNG, ids *board.IDAllocator) {
	for {
		runs := match.Detect(b)
		if len(runs) == 0 {
			return
		}
		for _, p := range match.DedupCells(runs) {
			b.Clear(p)
		}
		gravity.Apply(b)
		Refill(b, c, r, ids)
	}
}

// Spawn records one gem created by Refill, used to build the engine's
// Spawned event.
type Spawn struct {
	Pos board.Pos
	Gem board.Gem
}

// Refill fills every Empty cell of b using the placement rule, in
// row-major order. Used after gravity to settle a cascade level and by the
// initial-fill sanity pass. Returns every cell it filled.
func Refill(b *board.Board, c Constraints, r *rng.RNG, ids *board.IDAllocator) []Spawn {
	var spawned []Spawn
	for row := 0; row < b.N; row++ {
		for col := 0; col < b.N; col++ {
			pos := board.Pos{Row: row, Col: col}
			if !b.At(pos).Occupied {
				g := Generate(pos, b, c, r, ids)
				b.SetGem(pos, g)
				spawned = append(spawned, Spawn{Pos: pos, Gem: g})
			}
		}
	}
	return spawned
}
