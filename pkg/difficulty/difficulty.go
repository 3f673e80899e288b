// Package difficulty implements the difficulty controller: per-tier board
// settings, board shaping, campaign pacing curves, and the adaptive
// variant.
package difficulty

import (
	"github.com/dshills/gemengine/pkg/board"
	"github.com/dshills/gemengine/pkg/deadlock"
	"github.com/dshills/gemengine/pkg/match"
	"github.com/dshills/gemengine/pkg/rng"
)

// TierSettings is the full set of derived settings for a difficulty tier.
type TierSettings struct {
	KindsAllowed       int
	MinMovesTarget     int
	MaxMovesTarget     int
	CascadePressureMax int
	GenAttempts        int
}

// TierForLevel derives the difficulty tier from a 1-based level number:
// t = floor((level-1)/10).
func TierForLevel(level int) int {
	if level < 1 {
		level = 1
	}
	return (level - 1) / 10
}

// SettingsForTier computes TierSettings from the tier number using the
// default tier formulas.
func SettingsForTier(t int) TierSettings {
	kinds := 7 - t/3
	if kinds < 4 {
		kinds = 4
	}
	minMoves := 8 - t
	if minMoves < 3 {
		minMoves = 3
	}
	maxMoves := 15 - t
	if maxMoves < 6 {
		maxMoves = 6
	}
	if maxMoves < minMoves {
		maxMoves = minMoves
	}
	pressure := 5 - t/2
	if pressure < 2 {
		pressure = 2
	}
	return TierSettings{
		KindsAllowed:       kinds,
		MinMovesTarget:     minMoves,
		MaxMovesTarget:     maxMoves,
		CascadePressureMax: pressure,
		GenAttempts:        100 + 20*t,
	}
}

// SettingsForLevel is SettingsForTier(TierForLevel(level)).
func SettingsForLevel(level int) TierSettings {
	return SettingsForTier(TierForLevel(level))
}

// SettingsForProgress maps campaign progress in [0, 1] through a pacing
// curve onto the tier table, so a campaign can ramp difficulty non-linearly
// (an SCurve front-loads easy boards, an ExponentialCurve back-loads hard
// ones) instead of stepping a tier every 10 levels. maxTier caps the
// steepest settings the curve can reach.
func SettingsForProgress(curve Curve, progress float64, maxTier int) TierSettings {
	if maxTier < 0 {
		maxTier = 0
	}
	t := int(curve.Evaluate(progress)*float64(maxTier) + 0.5)
	if t > maxTier {
		t = maxTier
	}
	return SettingsForTier(t)
}

// AllowedKinds returns the first n base kinds, used as the generator's
// allowed-kind subset for a tier's KindsAllowed count.
func AllowedKinds(n int) []board.Kind {
	if n > board.MaxKinds {
		n = board.MaxKinds
	}
	kinds := make([]board.Kind, n)
	for i := range kinds {
		kinds[i] = board.Kind(i)
	}
	return kinds
}

// CountAdjacentPairs counts orthogonally adjacent cell pairs sharing the
// same non-power-up kind: the "near-match" pressure metric bounded by
// CascadePressureMax.
func CountAdjacentPairs(b *board.Board) int {
	count := 0
	for r := 0; r < b.N; r++ {
		for c := 0; c < b.N; c++ {
			p := board.Pos{Row: r, Col: c}
			cell := b.At(p)
			if !cell.Occupied || cell.Gem.IsPowerUp() {
				continue
			}
			for _, d := range [2]board.Pos{{Row: r, Col: c + 1}, {Row: r + 1, Col: c}} {
				if !b.InBounds(d) {
					continue
				}
				other := b.At(d)
				if other.Occupied && !other.Gem.IsPowerUp() && other.Gem.Kind == cell.Gem.Kind {
					count++
				}
			}
		}
	}
	return count
}

// ShapeResult reports the metrics a board-shaping pass settled on.
type ShapeResult struct {
	LegalMoves    int
	AdjacentPairs int
	AttemptsUsed  int
	InWindow      bool
}

// ShapeBoard perturbs b's non-power-up cells
// until its legal-move count falls within [settings.MinMovesTarget,
// settings.MaxMovesTarget] and its adjacent-pair pressure is at most
// settings.CascadePressureMax, or settings.GenAttempts is exhausted — in
// which case the board is accepted regardless. b must already be a clean,
// fully-filled board (run generator.FillInitial first).
func ShapeBoard(b *board.Board, settings TierSettings, kinds []board.Kind, r *rng.RNG) ShapeResult {
	moves := len(deadlock.LegalMoves(b))
	pairs := CountAdjacentPairs(b)
	attempt := 0
	for ; attempt < settings.GenAttempts; attempt++ {
		if moves >= settings.MinMovesTarget && moves <= settings.MaxMovesTarget && pairs <= settings.CascadePressureMax {
			return ShapeResult{LegalMoves: moves, AdjacentPairs: pairs, AttemptsUsed: attempt, InWindow: true}
		}
		pos := board.Pos{Row: r.Intn(b.N), Col: r.Intn(b.N)}
		perturbCell(b, pos, kinds, r)
		moves = len(deadlock.LegalMoves(b))
		pairs = CountAdjacentPairs(b)
	}
	inWindow := moves >= settings.MinMovesTarget && moves <= settings.MaxMovesTarget && pairs <= settings.CascadePressureMax
	return ShapeResult{LegalMoves: moves, AdjacentPairs: pairs, AttemptsUsed: attempt, InWindow: inWindow}
}

// perturbCell tries replacing the kind at pos with a different allowed kind
// that creates no immediate match, leaving the gem's id untouched. It is a
// no-op if pos holds a power-up or if every alternative kind creates a
// match.
func perturbCell(b *board.Board, pos board.Pos, kinds []board.Kind, r *rng.RNG) bool {
	cell := b.At(pos)
	if !cell.Occupied || cell.Gem.IsPowerUp() || len(kinds) == 0 {
		return false
	}
	original := cell.Gem
	order := r.Intn(len(kinds))
	for i := 0; i < len(kinds); i++ {
		k := kinds[(order+i)%len(kinds)]
		if k == original.Kind {
			continue
		}
		b.SetGem(pos, board.Gem{ID: original.ID, Kind: k})
		if len(match.Detect(b)) == 0 {
			return true
		}
	}
	b.SetGem(pos, original)
	return false
}
