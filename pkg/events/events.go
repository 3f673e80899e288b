// Package events defines the stable, JSON-serializable event log records
// emitted by a cascade resolution. The event log is the engine's sole
// contract with the renderer; reordering within a level is permissible as
// long as the final board state is identical.
package events

import "github.com/dshills/gemengine/pkg/board"

// Type identifies the kind of event a Record carries.
type Type string

const (
	Matched           Type = "Matched"
	PromotedPowerUp   Type = "PromotedPowerUp"
	Removed           Type = "Removed"
	Fell              Type = "Fell"
	Spawned           Type = "Spawned"
	ScoreAdded        Type = "ScoreAdded"
	CascadeLevelEnded Type = "CascadeLevelEnded"
	ShuffleBegan      Type = "ShuffleBegan"
	ShuffleEnded      Type = "ShuffleEnded"
	Deadlock          Type = "Deadlock"
	CascadeDepthEvent Type = "CascadeDepthExceeded"
)

// Record is a single tagged event. Payload is one of the *Payload structs
// below; callers type-switch on Type to decode it. The {type, payload}
// shape is the stable JSON serialization.
type Record struct {
	Type    Type `json:"type"`
	Payload any  `json:"payload"`
}

// MatchedPayload describes a detected run, before promotion/removal.
type MatchedPayload struct {
	Cells  []board.Pos `json:"cells"`
	Kind   board.Kind  `json:"kind"`
	Length int         `json:"length"`
}

// PromotedPowerUpPayload describes a power-up gem created at a match center.
type PromotedPowerUpPayload struct {
	Cell board.Pos      `json:"cell"`
	Tag  board.PowerUpTag `json:"tag"`
}

// RemovedPayload lists cells cleared in one resolution step.
type RemovedPayload struct {
	Cells []board.Pos `json:"cells"`
}

// FellPayload describes one gem's vertical displacement.
type FellPayload struct {
	From board.Pos `json:"from"`
	To   board.Pos `json:"to"`
	Gem  board.Gem `json:"gem"`
}

// SpawnedPayload describes a newly generated gem filling an empty cell.
type SpawnedPayload struct {
	Cell board.Pos `json:"cell"`
	Gem  board.Gem `json:"gem"`
}

// Reason labels why points were added, for ScoreAddedPayload.
type Reason string

const (
	ReasonMatch3        Reason = "Match3"
	ReasonMatch4        Reason = "Match4"
	ReasonMatch5        Reason = "Match5"
	ReasonMatch6        Reason = "Match6"
	ReasonMatchLong     Reason = "MatchLong"
	ReasonPowerUpLine   Reason = "PowerUpLineClear"
	ReasonPowerUpBomb   Reason = "PowerUpBomb"
	ReasonPowerUpColor  Reason = "PowerUpColorClear"
)

// ScoreAddedPayload records a single points contribution.
type ScoreAddedPayload struct {
	Points int    `json:"points"`
	Reason Reason `json:"reason"`
}

// CascadeLevelEndedPayload marks the end of one DETECT→REFILL iteration.
type CascadeLevelEndedPayload struct {
	Level int `json:"level"`
}

// DeadlockPayload marks that zero legal moves were found at SETTLE.
type DeadlockPayload struct{}

// CascadeDepthExceededPayload is the operational warning emitted when a
// cascade is force-settled at the depth cap.
type CascadeDepthExceededPayload struct {
	Depth int `json:"depth"`
}

// Log is an ordered sequence of events for a single engine call.
type Log []Record

// Add appends a record and returns the extended log, mirroring the
// append-and-reassign idiom used throughout this codebase.
func (l Log) Add(t Type, payload any) Log {
	return append(l, Record{Type: t, Payload: payload})
}
