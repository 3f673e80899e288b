// Package engine is the headless game-core façade: Init, ApplySwap,
// ActivatePowerUp, HintRequest, Analyze, TickTime, Snapshot, LoadSnapshot.
// It owns the board, the PRNG, and every derived counter (score, level,
// hint session, time remaining), orchestrating the component packages
// behind a single synchronous API driven call by call from the outer shell.
package engine

import (
	"log"
	"time"

	"github.com/dshills/gemengine/pkg/ai"
	"github.com/dshills/gemengine/pkg/board"
	"github.com/dshills/gemengine/pkg/cascade"
	"github.com/dshills/gemengine/pkg/deadlock"
	"github.com/dshills/gemengine/pkg/difficulty"
	"github.com/dshills/gemengine/pkg/events"
	"github.com/dshills/gemengine/pkg/generator"
	"github.com/dshills/gemengine/pkg/hint"
	"github.com/dshills/gemengine/pkg/powerup"
	"github.com/dshills/gemengine/pkg/rng"
	"github.com/dshills/gemengine/pkg/swap"
	"github.com/dshills/gemengine/pkg/validation"
)

// Engine is the headless game core. The zero value is not usable; build one
// with Init.
type Engine struct {
	cfg Config

	board *board.Board
	ids   *board.IDAllocator

	masterSeed  uint64
	moveCounter uint64
	configHash  []byte

	score int
	level int

	difficultySettings difficulty.TierSettings
	adaptive           difficulty.AdaptiveController
	metricsWindow      []difficulty.PlayerMetrics

	hintSession     *hint.Session
	timeRemainingMS int64

	poisoned bool
	lastGood BoardState
	busy     bool
}

// Init builds a fresh Engine from cfg: it constructs an empty N×N board,
// fills and shapes it per the difficulty controller, and returns an Engine
// at rest — fully filled, match-free, with at least one legal move.
func Init(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = generateSeed()
	}

	e := &Engine{
		cfg:         cfg,
		masterSeed:  seed,
		moveCounter: 0,
		configHash:  cfg.Hash(),
		level:       cfg.Level,
	}
	e.hintSession = hint.NewSession(time.Duration(cfg.HintCooldownMS)*time.Millisecond, time.Duration(cfg.HintAutoDelayMS)*time.Millisecond)
	e.difficultySettings = e.clampKinds(difficulty.SettingsForLevel(e.level))
	if cfg.InitialKindsAllowed > 0 {
		e.difficultySettings.KindsAllowed = cfg.InitialKindsAllowed
	}
	if cfg.MoveWindow != nil {
		e.difficultySettings.MinMovesTarget = cfg.MoveWindow.Min
		e.difficultySettings.MaxMovesTarget = cfg.MoveWindow.Max
	}

	e.board = board.New(cfg.BoardSize)
	e.ids = board.NewIDAllocator()

	r := e.nextRNG()
	kinds := difficulty.AllowedKinds(e.difficultySettings.KindsAllowed)
	constraints := e.constraints(kinds)
	generator.FillInitial(e.board, constraints, r, e.ids)
	difficulty.ShapeBoard(e.board, e.difficultySettings, kinds, r)
	if !deadlock.HasLegalMove(e.board) {
		deadlock.Resolve(e.board, constraints, r, e.ids, e.cfg.ShuffleAttemptsCap)
	}
	e.endMove()

	e.lastGood = e.snapshotLocked()
	return e, nil
}

func (e *Engine) constraints(kinds []board.Kind) generator.Constraints {
	return generator.Constraints{KindsAllowed: kinds, MaxAttempts: generator.DefaultMaxAttempts}
}

func (e *Engine) allowedKinds() []board.Kind {
	return difficulty.AllowedKinds(e.difficultySettings.KindsAllowed)
}

// nextRNG derives this call's RNG from (masterSeed, moveCounter,
// configHash) — see state.go's RNGState doc comment. Call exactly once per
// public engine call, before any randomness is consumed.
func (e *Engine) nextRNG() *rng.RNG {
	stage := moveStageName(e.moveCounter)
	return rng.NewRNG(e.masterSeed, stage, e.configHash)
}

// endMove advances the move counter so the next call derives a fresh RNG.
// Callers refresh lastGood themselves once the post-move state is known good.
func (e *Engine) endMove() {
	e.moveCounter++
}

func moveStageName(counter uint64) string {
	return "move-" + uitoa(counter)
}

func uitoa(v uint64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

// cascadeConfig builds a cascade.Config from the engine's current settings.
func (e *Engine) cascadeConfig() cascade.Config {
	return cascade.Config{
		Profile:      e.cfg.scoringProfile(),
		MaxDepth:     e.cfg.CascadeDepthCap,
		Constraints:  e.constraints(e.allowedKinds()),
		AutoActivate: e.cfg.PowerUpAutoActivate,
	}
}

// ApplySwap attempts to swap the gems at a and b.
func (e *Engine) ApplySwap(a, b board.Pos) (events.Log, error) {
	if e.poisoned {
		return nil, ErrPoisoned
	}
	if e.busy {
		return nil, ErrBusy
	}
	e.busy = true
	defer func() { e.busy = false }()

	if !e.board.InBounds(a) || !e.board.InBounds(b) {
		return nil, ErrSwapOOB
	}
	if !board.Adjacent(a, b) {
		return nil, ErrNotAdjacent
	}

	pre := e.snapshotLocked()
	r := e.nextRNG()

	if log, recovered, err := e.recoverDeadlock(pre, r); recovered {
		return log, err
	}

	outcome, err := swap.Attempt(e.board, a, b)
	if err != nil {
		switch err {
		case swap.ErrOutOfBounds:
			return nil, ErrSwapOOB
		case swap.ErrNotAdjacent:
			return nil, ErrNotAdjacent
		case swap.ErrNoMatch:
			return nil, ErrNoMatch
		default:
			return nil, err
		}
	}

	var log events.Log
	var result cascade.Result
	switch outcome.Result {
	case swap.ResultActivation:
		result = cascade.ResolveActivation(e.board, outcome.Activations, e.cascadeConfig(), r, e.ids)
	default:
		result = cascade.Resolve(e.board, e.cascadeConfig(), r, e.ids)
	}
	log = result.Events
	e.score += result.ScoreAdded
	if result.DepthExceeded {
		logOperational("cascade depth exceeded; settling board anyway")
	}

	log = e.settle(log, r)

	if err := e.checkInvariantsOrRollback(pre); err != nil {
		return nil, err
	}
	e.endMove()
	e.lastGood = e.snapshotLocked()
	return log, nil
}

// ActivatePowerUp activates the power-up at `at` directly, the click entry
// point the outer shell may invoke without a swap.
func (e *Engine) ActivatePowerUp(at board.Pos) (events.Log, error) {
	if e.poisoned {
		return nil, ErrPoisoned
	}
	if e.busy {
		return nil, ErrBusy
	}
	e.busy = true
	defer func() { e.busy = false }()

	if !e.board.InBounds(at) {
		return nil, ErrActivationOOB
	}
	cell := e.board.At(at)
	if !cell.Occupied || !cell.Gem.IsPowerUp() {
		return nil, ErrNotPowerUp
	}

	pre := e.snapshotLocked()
	r := e.nextRNG()

	target := cell.Gem.Kind
	if cell.Gem.PowerUp == board.PowerUpColorClear {
		target = powerup.MostCommonKind(e.board)
	}
	activation := powerup.Activation{
		Anchor: at,
		Tag:    cell.Gem.PowerUp,
		Cells:  powerup.ImpactSet(e.board, cell.Gem.PowerUp, at, target),
	}

	result := cascade.ResolveActivation(e.board, []powerup.Activation{activation}, e.cascadeConfig(), r, e.ids)
	log := result.Events
	e.score += result.ScoreAdded
	if result.DepthExceeded {
		logOperational("cascade depth exceeded; settling board anyway")
	}

	log = e.settle(log, r)

	if err := e.checkInvariantsOrRollback(pre); err != nil {
		return nil, err
	}
	e.endMove()
	e.lastGood = e.snapshotLocked()
	return log, nil
}

// recoverDeadlock handles a board that arrived deadlocked, typically via
// LoadSnapshot. A deadlocked board can never produce a legal swap, so
// instead of refusing the move the call shuffles
// first and returns the recovery events; the caller's requested swap is
// meaningless on the reshuffled board and is not attempted. Deadlock
// recovery is an operational condition, not a user error, so the call
// returns Ok.
func (e *Engine) recoverDeadlock(pre BoardState, r *rng.RNG) (events.Log, bool, error) {
	if deadlock.HasLegalMove(e.board) {
		return nil, false, nil
	}
	log := e.settle(nil, r)
	if err := e.checkInvariantsOrRollback(pre); err != nil {
		return nil, true, err
	}
	e.endMove()
	e.lastGood = e.snapshotLocked()
	return log, true, nil
}

// settle runs the SETTLE step: if the board has
// no legal move it shuffles (or, past the attempt cap, regenerates), emitting
// Deadlock/ShuffleBegan/ShuffleEnded events around the recovery.
func (e *Engine) settle(log events.Log, r *rng.RNG) events.Log {
	if deadlock.HasLegalMove(e.board) {
		return log
	}
	log = log.Add(events.Deadlock, events.DeadlockPayload{})
	log = log.Add(events.ShuffleBegan, nil)
	shuffled := deadlock.Resolve(e.board, e.constraints(e.allowedKinds()), r, e.ids, e.cfg.ShuffleAttemptsCap)
	if !shuffled {
		logOperational("shuffle attempts exhausted; board regenerated")
	}
	log = log.Add(events.ShuffleEnded, nil)
	return log
}

// checkInvariantsOrRollback enforces invariant-violation recovery: if the
// board is structurally corrupt after a call (resting matches, duplicate
// ids, holes), roll back to the snapshot taken at the call's start; if that
// fails too, the engine is marked Poisoned.
func (e *Engine) checkInvariantsOrRollback(pre BoardState) error {
	report := validation.CheckBoard(e.board, 0)
	if report.Passed {
		return nil
	}
	logOperational("invariant violation detected; rolling back to last good state")
	if err := e.LoadSnapshot(pre); err != nil {
		e.poisoned = true
		return ErrPoisoned
	}
	return nil
}

// Score returns the current score.
func (e *Engine) Score() int { return e.score }

// Level returns the current level number.
func (e *Engine) Level() int { return e.level }

// Board exposes the live board for read-only inspection (rendering,
// debugging); callers must not mutate it.
func (e *Engine) Board() *board.Board { return e.board }

// DifficultySettings returns the engine's current tier settings.
func (e *Engine) DifficultySettings() difficulty.TierSettings { return e.difficultySettings }

// RecordPlayerMetrics appends one rolling-window sample and re-derives
// DifficultySettings via the adaptive controller, keeping the window
// bounded to the last 20 samples.
func (e *Engine) RecordPlayerMetrics(m difficulty.PlayerMetrics) {
	e.metricsWindow = append(e.metricsWindow, m)
	if len(e.metricsWindow) > 20 {
		e.metricsWindow = e.metricsWindow[len(e.metricsWindow)-20:]
	}
	base := e.clampKinds(difficulty.SettingsForLevel(e.level))
	e.difficultySettings = e.clampKinds(e.adaptive.Adjust(base, e.metricsWindow))
}

// clampKinds keeps a settings struct's allowed-kind count within the
// configured total kind pool.
func (e *Engine) clampKinds(s difficulty.TierSettings) difficulty.TierSettings {
	if e.cfg.KindsTotal > 0 && s.KindsAllowed > e.cfg.KindsTotal {
		s.KindsAllowed = e.cfg.KindsTotal
	}
	return s
}

// Analyze ranks every legal move on the live board. It never mutates it.
func (e *Engine) Analyze(budgetMS int) []ai.MoveAnalysis {
	cfg := ai.Config{
		Profile:     e.cfg.scoringProfile(),
		Constraints: e.constraints(e.allowedKinds()),
		Weights:     e.cfg.AIWeights.toAI(),
		BudgetMS:    budgetMS,
	}
	return ai.Analyze(e.board, cfg)
}

// HintRequest advances the hint session by one reveal.
func (e *Engine) HintRequest(now time.Time) (hint.Result, error) {
	if e.poisoned {
		return hint.Result{}, ErrPoisoned
	}
	analysis := e.Analyze(0)
	result, err := e.hintSession.RequestHint(now, e.board.N, analysis)
	if err != nil {
		switch {
		case err == hint.ErrNoLegalMoves:
			return hint.Result{}, ErrNoLegalMoves
		case err == hint.ErrBudgetExhausted:
			return hint.Result{}, ErrBudgetExhausted
		default:
			if ce, ok := err.(*hint.CooldownActiveError); ok {
				return hint.Result{}, &HintError{Kind: HintCooldownActive, RemainingMS: ce.RemainingMS}
			}
			return hint.Result{}, err
		}
	}
	return result, nil
}

// Touch records player activity, resetting the hint session's auto-hint
// inactivity timer. The outer shell calls this on any player input.
func (e *Engine) Touch(now time.Time) {
	e.hintSession.Touch(now)
}

// AutoHintAvailable reports whether the hint session's inactivity delay has
// elapsed since the last Touch. The engine only
// raises the condition; whether to reveal anything is the outer shell's
// decision.
func (e *Engine) AutoHintAvailable(now time.Time) bool {
	return e.hintSession.CheckAutoHint(now)
}

// TimeEvent is emitted by TickTime when a time-based mode's clock expires.
type TimeEvent struct {
	TimeUp bool `json:"time_up"`
}

// TickTime advances the mode-level clock the outer shell drives: Time
// Attack / Daily Challenge modes call this
// every frame; when the remaining time reaches zero TickTime returns a
// TimeEvent and the shell is expected to call end_game(TimeUp). The engine
// never self-cancels: if TimeRemainingMS was never set (e.g. untimed modes)
// this is a no-op.
func (e *Engine) TickTime(ms uint32) *TimeEvent {
	if e.timeRemainingMS <= 0 {
		return nil
	}
	e.timeRemainingMS -= int64(ms)
	if e.timeRemainingMS <= 0 {
		e.timeRemainingMS = 0
		return &TimeEvent{TimeUp: true}
	}
	return nil
}

// SetTimeRemaining arms the mode-level clock (0 disables it).
func (e *Engine) SetTimeRemaining(ms int64) { e.timeRemainingMS = ms }

// TimeRemaining returns the mode-level clock's remaining milliseconds.
func (e *Engine) TimeRemaining() int64 { return e.timeRemainingMS }

func generateSeed() uint64 {
	now := time.Now().UnixNano()
	if now <= 0 {
		now = 1
	}
	return uint64(now)
}

func logOperational(msg string) {
	log.Printf("gemengine: %s", msg)
}
