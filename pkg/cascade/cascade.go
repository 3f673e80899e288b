// Package cascade implements the cascade engine: the iterative
// DETECT→PROMOTE→SCORE→REMOVE→GRAVITY→REFILL loop that resolves a legal
// swap or power-up activation into a settled board and an ordered event
// log. Deadlock detection (the SETTLE step) is owned by the engine façade,
// not this package, so cascade never depends on the deadlock enumerator.
package cascade

import (
	"github.com/dshills/gemengine/pkg/board"
	"github.com/dshills/gemengine/pkg/events"
	"github.com/dshills/gemengine/pkg/generator"
	"github.com/dshills/gemengine/pkg/gravity"
	"github.com/dshills/gemengine/pkg/match"
	"github.com/dshills/gemengine/pkg/powerup"
	"github.com/dshills/gemengine/pkg/rng"
)

// ScoringProfile selects one of the two supported point tables.
type ScoringProfile int

const (
	Balanced ScoringProfile = iota
	Classic
)

// DefaultMaxDepth is the default cascade depth cap.
const DefaultMaxDepth = 10

// Config parameterizes a cascade resolution.
type Config struct {
	Profile     ScoringProfile
	MaxDepth    int
	Constraints generator.Constraints

	// AutoActivate makes power-ups fire at the end of the cascade level
	// that created them, instead of waiting to be swapped or clicked.
	AutoActivate bool
}

func (c Config) maxDepth() int {
	if c.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return c.MaxDepth
}

// Result is the outcome of a full cascade resolution.
type Result struct {
	Events        events.Log
	ScoreAdded    int
	Levels        int
	DepthExceeded bool
}

// Resolve runs the cascade loop starting from DETECT, for the common case
// of a swap that produced a match.
func Resolve(b *board.Board, cfg Config, r *rng.RNG, ids *board.IDAllocator) Result {
	return run(b, cfg, r, ids, nil)
}

// ResolveActivation runs the cascade loop where the first level is a
// power-up activation chain rather than a detected match: the chain's union
// of removed cells is scored and cleared, then the loop continues as usual.
func ResolveActivation(b *board.Board, initial []powerup.Activation, cfg Config, r *rng.RNG, ids *board.IDAllocator) Result {
	return run(b, cfg, r, ids, initial)
}

func run(b *board.Board, cfg Config, r *rng.RNG, ids *board.IDAllocator, initialActivations []powerup.Activation) Result {
	var log events.Log
	totalScore := 0
	level := 0
	pending := initialActivations
	depthExceeded := false

	for {
		level++
		if level > cfg.maxDepth() {
			log = log.Add(events.CascadeDepthEvent, events.CascadeDepthExceededPayload{Depth: level - 1})
			depthExceeded = true
			level--
			break
		}

		var removed map[board.Pos]bool
		var promotions []promotion
		var levelPoints int
		longest := 0
		wasActivation := pending != nil

		if wasActivation {
			removedCells, chain := powerup.ResolveChain(b, pending)
			removed = toSet(removedCells)
			for _, a := range append(append([]powerup.Activation{}, pending...), chain...) {
				levelPoints += len(a.Cells) * activationRate(a.Tag)
			}
			pending = nil
		} else {
			runs := match.Detect(b)
			if len(runs) == 0 {
				level--
				break
			}
			removed, promotions = promoteAndCollect(runs, ids)
			for _, run := range runs {
				log = log.Add(events.Matched, events.MatchedPayload{Cells: run.Cells(), Kind: run.Kind, Length: run.Length})
			}
			levelPoints = basePointsForRuns(cfg.Profile, runs)
			longest = longestRun(runs)
		}

		combo := level
		if combo > 1 {
			levelPoints = int(float64(levelPoints) * comboMultiplier(cfg.Profile, combo))
		}
		depthBonusCounter := level - 1
		levelPoints += depthBonus(cfg.Profile, depthBonusCounter)

		for _, p := range promotions {
			log = log.Add(events.PromotedPowerUp, events.PromotedPowerUpPayload{Cell: p.Pos, Tag: p.Gem.PowerUp})
			delete(removed, p.Pos)
		}

		removedCells := make([]board.Pos, 0, len(removed))
		for p := range removed {
			removedCells = append(removedCells, p)
		}
		log = log.Add(events.Removed, events.RemovedPayload{Cells: removedCells})
		for _, p := range removedCells {
			b.Clear(p)
		}
		for _, p := range promotions {
			b.SetGem(p.Pos, p.Gem)
		}

		totalScore += levelPoints
		log = log.Add(events.ScoreAdded, events.ScoreAddedPayload{Points: levelPoints, Reason: reasonFor(wasActivation, longest)})

		falls := gravity.Apply(b)
		for _, f := range falls {
			log = log.Add(events.Fell, events.FellPayload{From: f.From, To: f.To, Gem: f.Gem})
		}

		for _, s := range generator.Refill(b, cfg.Constraints, r, ids) {
			log = log.Add(events.Spawned, events.SpawnedPayload{Cell: s.Pos, Gem: s.Gem})
		}

		if cfg.AutoActivate && len(promotions) > 0 {
			pending = collectAutoActivations(b, promotions)
		}

		log = log.Add(events.CascadeLevelEnded, events.CascadeLevelEndedPayload{Level: level})
	}

	return Result{Events: log, ScoreAdded: totalScore, Levels: level, DepthExceeded: depthExceeded}
}

type promotion struct {
	Pos board.Pos
	Gem board.Gem
}

// promoteAndCollect applies the PROMOTE step: matches of length >= 4 create a
// power-up gem at the run's center cell and the run's other cells join the
// removal set; matches of length 3 contribute all their cells to removal.
func promoteAndCollect(runs []match.Run, ids *board.IDAllocator) (map[board.Pos]bool, []promotion) {
	removed := make(map[board.Pos]bool)
	var promotions []promotion
	for _, run := range runs {
		cells := run.Cells()
		if run.Length < 4 {
			for _, p := range cells {
				removed[p] = true
			}
			continue
		}
		tag := powerup.TagForRun(run.Length, run.Orientation == match.Horizontal)
		centerIdx := powerup.CenterIndex(run.Length)
		centerPos := cells[centerIdx]
		promotions = append(promotions, promotion{
			Pos: centerPos,
			Gem: board.Gem{ID: ids.Next(), Kind: run.Kind, PowerUp: tag},
		})
		for i, p := range cells {
			if i == centerIdx {
				continue
			}
			removed[p] = true
		}
	}
	return removed, promotions
}

// collectAutoActivations locates each just-promoted gem's post-gravity
// position and builds its activation, feeding the next loop iteration when
// Config.AutoActivate is set. A promoted gem that was already consumed (e.g.
// by a chained activation earlier in the level) is skipped; returns nil when
// nothing remains to activate.
func collectAutoActivations(b *board.Board, promotions []promotion) []powerup.Activation {
	want := make(map[board.GemID]bool, len(promotions))
	for _, p := range promotions {
		want[p.Gem.ID] = true
	}
	var acts []powerup.Activation
	b.Each(func(pos board.Pos, cell board.Cell) {
		if !cell.Occupied || !want[cell.Gem.ID] || !cell.Gem.IsPowerUp() {
			return
		}
		target := cell.Gem.Kind
		if cell.Gem.PowerUp == board.PowerUpColorClear {
			target = powerup.MostCommonKind(b)
		}
		acts = append(acts, powerup.Activation{
			Anchor: pos,
			Tag:    cell.Gem.PowerUp,
			Cells:  powerup.ImpactSet(b, cell.Gem.PowerUp, pos, target),
		})
	})
	return acts
}

func toSet(cells []board.Pos) map[board.Pos]bool {
	set := make(map[board.Pos]bool, len(cells))
	for _, p := range cells {
		set[p] = true
	}
	return set
}

// basePointsForRuns sums the base-point table value for
// every run detected in this level.
func basePointsForRuns(profile ScoringProfile, runs []match.Run) int {
	total := 0
	for _, run := range runs {
		total += basePoints(profile, run.Length)
	}
	return total
}

func basePoints(profile ScoringProfile, length int) int {
	if profile == Classic {
		switch {
		case length == 3:
			return 100
		case length == 4:
			return 400
		case length == 5:
			return 1000
		case length == 6:
			return 2000
		default:
			return 500 * length
		}
	}
	switch {
	case length == 3:
		return 50
	case length == 4:
		return 150
	case length == 5:
		return 400
	case length == 6:
		return 800
	default:
		return 200 * length
	}
}

func comboMultiplier(profile ScoringProfile, combo int) float64 {
	if combo > 10 {
		combo = 10
	}
	if profile == Classic {
		return 1 + 0.1*float64(combo)
	}
	return 1 + 0.05*float64(combo)
}

func depthBonus(profile ScoringProfile, depth int) int {
	if profile == Classic {
		return 50 * depth
	}
	return 25 * depth
}

// activationRate is the flat per-affected-cell bonus for a power-up
// activation.
func activationRate(tag board.PowerUpTag) int {
	switch tag {
	case board.PowerUpLineH, board.PowerUpLineV:
		return 75
	case board.PowerUpBomb3x3:
		return 100
	case board.PowerUpColorClear:
		return 125
	default:
		return 0
	}
}

// reasonFor picks a ScoreAdded reason label. Activation levels are always
// labelled PowerUpBomb, whichever power-up tags they blend; match levels use
// the longest run's length as the headline reason.
func reasonFor(activation bool, hintLength int) events.Reason {
	if activation {
		return events.ReasonPowerUpBomb
	}
	switch {
	case hintLength >= 7:
		return events.ReasonMatchLong
	case hintLength == 6:
		return events.ReasonMatch6
	case hintLength == 5:
		return events.ReasonMatch5
	case hintLength == 4:
		return events.ReasonMatch4
	default:
		return events.ReasonMatch3
	}
}

// longestRun returns the length of the longest run detected in this level.
func longestRun(runs []match.Run) int {
	l := 0
	for _, r := range runs {
		if r.Length > l {
			l = r.Length
		}
	}
	return l
}
