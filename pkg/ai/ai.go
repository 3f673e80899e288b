// Package ai implements the AI analyzer:
// candidate move evaluation and ranking on top of the swap, cascade, and
// deadlock primitives, run inside an isolated sandbox board.
package ai

import (
	"crypto/sha256"
	"encoding/binary"
	"sort"
	"time"

	"github.com/dshills/gemengine/pkg/board"
	"github.com/dshills/gemengine/pkg/cascade"
	"github.com/dshills/gemengine/pkg/deadlock"
	"github.com/dshills/gemengine/pkg/generator"
	"github.com/dshills/gemengine/pkg/rng"
)

// SandboxDepth bounds the cascade lookahead used to estimate
// cascade_potential.
const SandboxDepth = 3

// Weights are the four coefficients of the move-scoring formula, exposed so
// tests (and the engine config) can override them.
type Weights struct {
	Immediate   float64
	Cascade     float64
	BoardDelta  float64
	RiskPenalty float64
}

// DefaultWeights is the standard formula: 0.4·immediate +
// 0.3·cascade_potential + 0.2·board_delta − 0.1·risk·PENALTY.
func DefaultWeights() Weights {
	return Weights{Immediate: 0.4, Cascade: 0.3, BoardDelta: 0.2, RiskPenalty: 0.1}
}

// RiskPenaltyMagnitude is PENALTY in the scoring formula: the raw point
// value a risky (shuffle-forcing) move is penalized by, before the
// RiskPenalty weight is applied. Implementation-defined; chosen large
// enough that no plausible combination of the other three terms can
// outweigh a risky move.
const RiskPenaltyMagnitude = 1000.0

// DifficultyTag classifies a ranked move for the hint session and the outer
// shell's UI.
type DifficultyTag string

const (
	Easy   DifficultyTag = "Easy"
	Medium DifficultyTag = "Medium"
	Hard   DifficultyTag = "Hard"
	Expert DifficultyTag = "Expert"
)

// MoveAnalysis is one ranked candidate move.
type MoveAnalysis struct {
	From             board.Pos
	To               board.Pos
	ExpectedScore    float64
	CascadePotential float64
	ImmediatePoints  int
	BoardDelta       int
	Risk             int
	DifficultyTag    DifficultyTag
}

// Config parameterizes Analyze: scoring profile (for sandboxed cascades),
// the currently allowed kind subset, and the score weights.
type Config struct {
	Profile     cascade.ScoringProfile
	Constraints generator.Constraints
	Weights     Weights
	BudgetMS    int // 0 means unbounded
}

// Analyze evaluates every legal move on b and returns them ranked by
// descending expected score. It never mutates b: every
// simulation runs on a deep-copy sandbox seeded deterministically from
// (board contents, move), so two calls on an identical board and move
// produce identical predictions, and nothing aliases the live board.
//
// If cfg.BudgetMS is nonzero and evaluation exceeds it, Analyze returns the
// moves scored so far, a partial ranked list.
func Analyze(b *board.Board, cfg Config) []MoveAnalysis {
	moves := deadlock.LegalMoves(b)
	deadline := time.Time{}
	if cfg.BudgetMS > 0 {
		deadline = time.Now().Add(time.Duration(cfg.BudgetMS) * time.Millisecond)
	}

	analyses := make([]MoveAnalysis, 0, len(moves))
	for _, m := range moves {
		if !deadline.IsZero() && time.Now().After(deadline) {
			break
		}
		analyses = append(analyses, evaluateMove(b, m.A, m.B, cfg))
	}

	sort.SliceStable(analyses, func(i, j int) bool {
		return analyses[i].ExpectedScore > analyses[j].ExpectedScore
	})
	assignDifficultyTags(analyses)
	return analyses
}

func evaluateMove(b *board.Board, a, c board.Pos, cfg Config) MoveAnalysis {
	seed := sandboxSeed(b, a, c)

	beforeMoves := len(deadlock.LegalMoves(b))

	immediateBoard := b.Clone()
	immediate := simulate(immediateBoard, a, c, cfg, seed, 1)

	deepBoard := b.Clone()
	deep := simulate(deepBoard, a, c, cfg, seed, SandboxDepth)

	cascadePotential := deep.ScoreAdded - immediate.ScoreAdded
	if cascadePotential < 0 {
		cascadePotential = 0
	}

	afterMoves := len(deadlock.LegalMoves(deepBoard))
	boardDelta := afterMoves - beforeMoves

	risk := 0
	if afterMoves == 0 {
		risk = 1
	}

	w := cfg.Weights
	expected := w.Immediate*float64(immediate.ScoreAdded) +
		w.Cascade*float64(cascadePotential) +
		w.BoardDelta*float64(boardDelta) -
		w.RiskPenalty*float64(risk)*RiskPenaltyMagnitude

	return MoveAnalysis{
		From:             a,
		To:               c,
		ExpectedScore:    expected,
		CascadePotential: float64(cascadePotential),
		ImmediatePoints:  immediate.ScoreAdded,
		BoardDelta:       boardDelta,
		Risk:             risk,
	}
}

// simulate performs a single swap on sandbox and resolves the cascade up to
// maxDepth levels, discarding swap errors (callers only pass legal moves).
func simulate(sandbox *board.Board, a, c board.Pos, cfg Config, seed uint64, maxDepth int) cascade.Result {
	ids := board.NewIDAllocator()
	seedBoardIDs(sandbox, ids)

	h := sha256.Sum256([]byte("ai_sandbox"))
	r := rng.NewRNG(seed, "ai_sandbox", h[:])

	sandbox.Swap(a, c)
	ccfg := cascade.Config{Profile: cfg.Profile, MaxDepth: maxDepth, Constraints: cfg.Constraints}
	return cascade.Resolve(sandbox, ccfg, r, ids)
}

// seedBoardIDs advances ids past every id already present on the board so
// newly generated sandbox gems never collide with existing ones.
func seedBoardIDs(b *board.Board, ids *board.IDAllocator) {
	var max board.GemID
	b.Each(func(_ board.Pos, c board.Cell) {
		if c.Occupied && c.Gem.ID > max {
			max = c.Gem.ID
		}
	})
	for i := board.GemID(0); i <= max; i++ {
		ids.Next()
	}
}

// sandboxSeed derives a deterministic per-move seed from the board's
// contents and the move itself, so analysis is stable for a given board
// without depending on wall-clock time or the session PRNG.
func sandboxSeed(b *board.Board, a, c board.Pos) uint64 {
	h := sha256.New()
	var buf [8]byte
	b.Each(func(p board.Pos, cell board.Cell) {
		binary.BigEndian.PutUint64(buf[:], uint64(cell.Gem.ID))
		h.Write(buf[:])
		h.Write([]byte{byte(cell.Gem.Kind), byte(cell.Gem.PowerUp)})
	})
	h.Write([]byte{byte(a.Row), byte(a.Col), byte(c.Row), byte(c.Col)})
	sum := h.Sum(nil)
	return binary.BigEndian.Uint64(sum[:8])
}

// assignDifficultyTags buckets the already-ranked analyses into quartiles by
// their position in the ranked list.
func assignDifficultyTags(analyses []MoveAnalysis) {
	n := len(analyses)
	if n == 0 {
		return
	}
	for i := range analyses {
		percentile := float64(i) / float64(n)
		switch {
		case percentile < 0.25:
			analyses[i].DifficultyTag = Expert
		case percentile < 0.5:
			analyses[i].DifficultyTag = Hard
		case percentile < 0.75:
			analyses[i].DifficultyTag = Medium
		default:
			analyses[i].DifficultyTag = Easy
		}
	}
}
