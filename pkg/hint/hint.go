// Package hint implements the progressive hint session: a 5-level
// disclosure state machine built on top of the AI analyzer's ranked move
// list.
package hint

import (
	"errors"
	"fmt"
	"time"

	"github.com/dshills/gemengine/pkg/ai"
	"github.com/dshills/gemengine/pkg/board"
)

// MaxLevel is the highest hint level; level 5 never transitions further.
const MaxLevel = 5

// DefaultBudgets are the per-level use allowances, indexed by level.
var DefaultBudgets = [MaxLevel + 1]int{0, 10, 8, 6, 4, 2}

// DefaultCooldown and DefaultAutoDelay govern hint pacing.
const (
	DefaultCooldown  = 5 * time.Second
	DefaultAutoDelay = 30 * time.Second
)

// ErrNoLegalMoves means the analyzer found nothing to hint about.
var ErrNoLegalMoves = errors.New("hint: no legal moves available")

// ErrBudgetExhausted means level 5's budget hit zero; there is no further
// level to transition to.
var ErrBudgetExhausted = errors.New("hint: budget exhausted at the final level")

// CooldownActiveError is returned when a hint is requested before the
// cooldown since the last hint has elapsed.
type CooldownActiveError struct {
	RemainingMS int64
}

func (e *CooldownActiveError) Error() string {
	return fmt.Sprintf("hint: cooldown active, %dms remaining", e.RemainingMS)
}

// Quadrant is the level-1 reveal: the coarse board region holding the
// best move's source cell.
type Quadrant struct {
	Top, Left bool // Top=true means upper half, Left=true means left half
}

func quadrantOf(p board.Pos, n int) Quadrant {
	half := n / 2
	return Quadrant{Top: p.Row < half, Left: p.Col < half}
}

// RowOrCol is the level-2 reveal: the axis the move's source and target
// share.
type RowOrCol struct {
	IsRow bool
	Index int
}

func rowOrColOf(from, to board.Pos) RowOrCol {
	if from.Row == to.Row {
		return RowOrCol{IsRow: true, Index: from.Row}
	}
	return RowOrCol{IsRow: false, Index: from.Col}
}

// Result is a single hint reveal. Fields are populated progressively:
// Quadrant is always set; RowOrCol from level 2; Source from level 3;
// PredictedPoints from level 4; Target and CascadeTag from level 5.
type Result struct {
	Level           int
	Quadrant        Quadrant
	RowOrCol        *RowOrCol
	Source          *board.Pos
	Target          *board.Pos
	PredictedPoints *int
	CascadeTag      *ai.DifficultyTag
}

// Session tracks one player's progressive hint state.
type Session struct {
	level        int
	budgets      [MaxLevel + 1]int
	cooldown     time.Duration
	autoDelay    time.Duration
	lastHintAt   time.Time
	lastActivity time.Time
}

// NewSession creates a hint session at level 1 with the default budgets. A
// zero cooldown/autoDelay falls back to the package defaults.
func NewSession(cooldown, autoDelay time.Duration) *Session {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	if autoDelay <= 0 {
		autoDelay = DefaultAutoDelay
	}
	return &Session{
		level:     1,
		budgets:   DefaultBudgets,
		cooldown:  cooldown,
		autoDelay: autoDelay,
	}
}

// Level returns the session's current hint level (1..5).
func (s *Session) Level() int {
	return s.level
}

// Budgets returns the remaining per-level budgets, indices 1..MaxLevel.
func (s *Session) Budgets() [MaxLevel + 1]int {
	return s.budgets
}

// LastHintAt returns the timestamp of the last successful RequestHint, or
// the zero time if none has occurred yet.
func (s *Session) LastHintAt() time.Time {
	return s.lastHintAt
}

// LastActivity returns the timestamp of the last Touch call, or the zero
// time if Touch has never been called.
func (s *Session) LastActivity() time.Time {
	return s.lastActivity
}

// Cooldown returns the configured cooldown duration.
func (s *Session) Cooldown() time.Duration {
	return s.cooldown
}

// AutoDelay returns the configured auto-hint inactivity delay.
func (s *Session) AutoDelay() time.Duration {
	return s.autoDelay
}

// Restore reconstructs a Session from persisted state, used by
// engine.LoadSnapshot.
func Restore(level int, budgets [MaxLevel + 1]int, cooldown, autoDelay time.Duration, lastHintAt, lastActivity time.Time) *Session {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	if autoDelay <= 0 {
		autoDelay = DefaultAutoDelay
	}
	if level < 1 {
		level = 1
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	return &Session{
		level:        level,
		budgets:      budgets,
		cooldown:     cooldown,
		autoDelay:    autoDelay,
		lastHintAt:   lastHintAt,
		lastActivity: lastActivity,
	}
}

// Touch records player activity, resetting the auto-hint inactivity timer.
func (s *Session) Touch(now time.Time) {
	s.lastActivity = now
}

// CheckAutoHint reports whether the inactivity timer has elapsed since the
// last Touch. The engine decides whether to surface the condition; this
// session only tracks the timer.
func (s *Session) CheckAutoHint(now time.Time) bool {
	if s.lastActivity.IsZero() {
		return false
	}
	return now.Sub(s.lastActivity) >= s.autoDelay
}

// RequestHint consumes one budget unit at the current level and returns a
// Result derived from the best-ranked move in analysis, which must already
// be sorted descending by expected score (ai.Analyze's contract).
func (s *Session) RequestHint(now time.Time, boardN int, analysis []ai.MoveAnalysis) (Result, error) {
	if len(analysis) == 0 {
		return Result{}, ErrNoLegalMoves
	}
	if !s.lastHintAt.IsZero() {
		elapsed := now.Sub(s.lastHintAt)
		if elapsed < s.cooldown {
			remaining := (s.cooldown - elapsed).Milliseconds()
			return Result{}, &CooldownActiveError{RemainingMS: remaining}
		}
	}
	if s.budgets[s.level] <= 0 {
		return Result{}, ErrBudgetExhausted
	}

	best := analysis[0]
	result := s.reveal(best, boardN)

	s.budgets[s.level]--
	s.lastHintAt = now

	if s.budgets[s.level] <= 0 && s.level < MaxLevel {
		s.level++
	}

	return result, nil
}

func (s *Session) reveal(best ai.MoveAnalysis, boardN int) Result {
	level := s.level
	result := Result{Level: level, Quadrant: quadrantOf(best.From, boardN)}

	if level >= 2 {
		roc := rowOrColOf(best.From, best.To)
		result.RowOrCol = &roc
	}
	if level >= 3 {
		from := best.From
		result.Source = &from
	}
	if level >= 4 {
		points := int(best.ImmediatePoints)
		result.PredictedPoints = &points
	}
	if level >= 5 {
		to := best.To
		result.Target = &to
		tag := best.DifficultyTag
		result.CascadeTag = &tag
	}
	return result
}
