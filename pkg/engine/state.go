package engine

import (
	"time"

	"github.com/dshills/gemengine/pkg/board"
	"github.com/dshills/gemengine/pkg/difficulty"
	"github.com/dshills/gemengine/pkg/hint"
)

// SnapshotVersion guards load_snapshot against loading a BoardState written
// by an incompatible engine revision.
const SnapshotVersion = 1

// CellState is one occupied cell's persisted form: (row, col, kind, tag, id).
type CellState struct {
	Row  int              `json:"row"`
	Col  int              `json:"col"`
	Kind board.Kind       `json:"kind"`
	Tag  board.PowerUpTag `json:"tag"`
	ID   board.GemID      `json:"id"`
}

// RNGState is the persisted form of the engine's owned PRNG. Rather than
// serialize math/rand's internal state directly (not exported by the
// stdlib), the engine re-derives a fresh per-move RNG from
// (MasterSeed, MoveCounter, configHash) via rng.NewRNG, with MoveCounter
// playing the role of the stage name. This makes rng_state trivially
// round-trippable as two integers instead of an opaque rand.Rand blob.
type RNGState struct {
	MasterSeed  uint64 `json:"master_seed"`
	MoveCounter uint64 `json:"move_counter"`
}

// HintSessionState is the persisted form of a hint.Session.
type HintSessionState struct {
	Level              int                    `json:"level"`
	Budgets            [hint.MaxLevel + 1]int `json:"budgets"`
	CooldownMS         int64                  `json:"cooldown_ms"`
	AutoDelayMS        int64                  `json:"auto_delay_ms"`
	LastHintUnixMS     int64                  `json:"last_hint_unix_ms"`
	LastActivityUnixMS int64                  `json:"last_activity_unix_ms"`
}

// BoardState is the stable, engine-version-tagged snapshot the outer Store
// round-trips byte-for-byte.
type BoardState struct {
	Version            int                     `json:"version"`
	N                  int                     `json:"n"`
	Cells              []CellState             `json:"cells"`
	Score              int                     `json:"score"`
	Level              int                     `json:"level"`
	Mode               string                  `json:"mode"`
	RNGState           RNGState                `json:"rng_state"`
	DifficultySettings difficulty.TierSettings `json:"difficulty_settings"`
	HintSession        HintSessionState        `json:"hint_session"`
	TimeRemainingMS    int64                   `json:"time_remaining_ms"`
}

// Snapshot captures the engine's full state.
func (e *Engine) Snapshot() BoardState {
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() BoardState {
	var cells []CellState
	e.board.Each(func(p board.Pos, c board.Cell) {
		if !c.Occupied {
			return
		}
		cells = append(cells, CellState{Row: p.Row, Col: p.Col, Kind: c.Gem.Kind, Tag: c.Gem.PowerUp, ID: c.Gem.ID})
	})

	budgets := e.hintSession.Budgets()
	lastHint := e.hintSession.LastHintAt()
	lastActivity := e.hintSession.LastActivity()

	return BoardState{
		Version: SnapshotVersion,
		N:       e.board.N,
		Cells:   cells,
		Score:   e.score,
		Level:   e.level,
		Mode:    e.cfg.Mode,
		RNGState: RNGState{
			MasterSeed:  e.masterSeed,
			MoveCounter: e.moveCounter,
		},
		DifficultySettings: e.difficultySettings,
		HintSession: HintSessionState{
			Level:              e.hintSession.Level(),
			Budgets:            budgets,
			CooldownMS:         e.hintSession.Cooldown().Milliseconds(),
			AutoDelayMS:        e.hintSession.AutoDelay().Milliseconds(),
			LastHintUnixMS:     unixMillis(lastHint),
			LastActivityUnixMS: unixMillis(lastActivity),
		},
		TimeRemainingMS: e.timeRemainingMS,
	}
}

// LoadSnapshot restores the engine from s.
// On success the engine is unpoisoned; on failure the engine's prior state
// is left untouched.
func (e *Engine) LoadSnapshot(s BoardState) error {
	if s.Version != SnapshotVersion {
		return &LoadError{Kind: LoadVersionMismatch}
	}
	if s.N <= 0 || s.N != e.cfg.BoardSize {
		return &LoadError{Kind: LoadSizeMismatch}
	}
	if len(s.Cells) > s.N*s.N {
		return &LoadError{Kind: LoadCorruptSnapshot}
	}

	nb := board.New(s.N)
	seen := make(map[board.Pos]bool, len(s.Cells))
	var maxID board.GemID
	for _, c := range s.Cells {
		p := board.Pos{Row: c.Row, Col: c.Col}
		if !nb.InBounds(p) || seen[p] {
			return &LoadError{Kind: LoadCorruptSnapshot, Message: "duplicate or out-of-bounds cell in snapshot"}
		}
		seen[p] = true
		nb.SetGem(p, board.Gem{ID: c.ID, Kind: c.Kind, PowerUp: c.Tag})
		if c.ID > maxID {
			maxID = c.ID
		}
	}

	ids := board.NewIDAllocator()
	for i := board.GemID(0); i <= maxID; i++ {
		ids.Next()
	}

	e.board = nb
	e.ids = ids
	e.score = s.Score
	e.level = s.Level
	e.cfg.Mode = s.Mode
	e.masterSeed = s.RNGState.MasterSeed
	e.moveCounter = s.RNGState.MoveCounter
	e.difficultySettings = s.DifficultySettings
	e.timeRemainingMS = s.TimeRemainingMS
	e.hintSession = hint.Restore(
		s.HintSession.Level,
		s.HintSession.Budgets,
		time.Duration(s.HintSession.CooldownMS)*time.Millisecond,
		time.Duration(s.HintSession.AutoDelayMS)*time.Millisecond,
		timeFromUnixMillis(s.HintSession.LastHintUnixMS),
		timeFromUnixMillis(s.HintSession.LastActivityUnixMS),
	)
	e.poisoned = false
	e.lastGood = e.snapshotLocked()
	return nil
}

func unixMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func timeFromUnixMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
