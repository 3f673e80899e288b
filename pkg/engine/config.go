package engine

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dshills/gemengine/pkg/ai"
	"github.com/dshills/gemengine/pkg/board"
	"github.com/dshills/gemengine/pkg/cascade"
)

// ScoringProfileName is the YAML-facing name for a cascade.ScoringProfile.
type ScoringProfileName string

const (
	ScoringBalanced ScoringProfileName = "Balanced"
	ScoringClassic  ScoringProfileName = "Classic"
)

// MoveWindow overrides the difficulty controller's move-count target
// interval.
type MoveWindow struct {
	Min int `yaml:"min" json:"min"`
	Max int `yaml:"max" json:"max"`
}

// AIWeightsCfg is the YAML-facing form of ai.Weights.
type AIWeightsCfg struct {
	Immediate   float64 `yaml:"immediate" json:"immediate"`
	Cascade     float64 `yaml:"cascade" json:"cascade"`
	BoardDelta  float64 `yaml:"board_delta" json:"board_delta"`
	RiskPenalty float64 `yaml:"risk_penalty" json:"risk_penalty"`
}

func (w AIWeightsCfg) toAI() ai.Weights {
	return ai.Weights{Immediate: w.Immediate, Cascade: w.Cascade, BoardDelta: w.BoardDelta, RiskPenalty: w.RiskPenalty}
}

// Config is the engine's YAML-first configuration:
// load/validate/hash, with field-by-field Validate() composition.
type Config struct {
	// Seed is the master seed for deterministic generation. Use 0 to
	// auto-generate from current time.
	Seed uint64 `yaml:"seed" json:"seed"`

	// BoardSize sets N (default 8; Campaign variant uses 9).
	BoardSize int `yaml:"board_size" json:"board_size"`

	// KindsTotal is the size of K (default 7).
	KindsTotal int `yaml:"kinds_total" json:"kinds_total"`

	// ScoringProfile selects Balanced or Classic.
	ScoringProfile ScoringProfileName `yaml:"scoring_profile" json:"scoring_profile"`

	// InitialKindsAllowed is kinds_allowed at level 1.
	InitialKindsAllowed int `yaml:"initial_kinds_allowed" json:"initial_kinds_allowed"`

	// MoveWindow overrides (min_moves_target, max_moves_target) when both
	// fields are nonzero; otherwise the difficulty controller's tier
	// formula applies.
	MoveWindow *MoveWindow `yaml:"move_window,omitempty" json:"move_window,omitempty"`

	// CascadeDepthCap bounds cascade resolution depth (default 10).
	CascadeDepthCap int `yaml:"cascade_depth_cap" json:"cascade_depth_cap"`

	// ShuffleAttemptsCap bounds deadlock shuffle attempts (default 10).
	ShuffleAttemptsCap int `yaml:"shuffle_attempts_cap" json:"shuffle_attempts_cap"`

	// HintCooldownMS is the cooldown between hints (default 5000).
	HintCooldownMS int `yaml:"hint_cooldown_ms" json:"hint_cooldown_ms"`

	// HintAutoDelayMS is the inactivity delay before AutoHintAvailable
	// (default 30000).
	HintAutoDelayMS int `yaml:"hint_auto_delay_ms" json:"hint_auto_delay_ms"`

	// AIWeights are the four AI-analyzer scoring coefficients.
	AIWeights AIWeightsCfg `yaml:"ai_weights" json:"ai_weights"`

	// PowerUpAutoActivate selects whether power-ups activate
	// automatically when created at the end of a cascade level (true) or
	// only when later swapped/clicked (false, the default).
	PowerUpAutoActivate bool `yaml:"power_up_auto_activate" json:"power_up_auto_activate"`

	// Mode labels the game mode for BoardState persistence (e.g.
	// "Classic", "TimeAttack", "DailyChallenge"); not interpreted by the
	// core itself.
	Mode string `yaml:"mode" json:"mode"`

	// Level is the starting level number, driving the Difficulty
	// Controller's tier.
	Level int `yaml:"level" json:"level"`
}

// DefaultConfig returns the engine's documented defaults.
func DefaultConfig() Config {
	return Config{
		Seed:                0,
		BoardSize:           8,
		KindsTotal:          7,
		ScoringProfile:      ScoringBalanced,
		InitialKindsAllowed: 7,
		CascadeDepthCap:     cascade.DefaultMaxDepth,
		ShuffleAttemptsCap:  10,
		HintCooldownMS:      5000,
		HintAutoDelayMS:     30000,
		AIWeights:           AIWeightsCfg{Immediate: 0.4, Cascade: 0.3, BoardDelta: 0.2, RiskPenalty: 0.1},
		PowerUpAutoActivate: false,
		Mode:                "Classic",
		Level:               1,
	}
}

// LoadConfig reads and validates a YAML configuration file, applying
// defaults for zero-valued fields first.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("engine: reading config file: %w", err)
	}
	return LoadConfigFromBytes(data)
}

// LoadConfigFromBytes parses and validates YAML configuration from bytes.
func LoadConfigFromBytes(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("engine: parsing YAML: %w", err)
	}
	if cfg.Seed == 0 {
		cfg.Seed = generateSeed()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine: validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks every configuration constraint, field by field.
func (c *Config) Validate() error {
	if c.BoardSize < 4 {
		return fmt.Errorf("board_size: must be at least 4, got %d", c.BoardSize)
	}
	if c.KindsTotal < 4 || c.KindsTotal > board.MaxKinds {
		return fmt.Errorf("kinds_total: must be in range [4, %d], got %d", board.MaxKinds, c.KindsTotal)
	}
	if c.ScoringProfile != ScoringBalanced && c.ScoringProfile != ScoringClassic {
		return fmt.Errorf("scoring_profile: must be %q or %q, got %q", ScoringBalanced, ScoringClassic, c.ScoringProfile)
	}
	if c.InitialKindsAllowed < 4 || c.InitialKindsAllowed > c.KindsTotal {
		return fmt.Errorf("initial_kinds_allowed: must be in range [4, %d], got %d", c.KindsTotal, c.InitialKindsAllowed)
	}
	if c.MoveWindow != nil {
		if c.MoveWindow.Min < 1 {
			return errors.New("move_window.min: must be >= 1")
		}
		if c.MoveWindow.Max < c.MoveWindow.Min {
			return errors.New("move_window.max: must be >= move_window.min")
		}
	}
	if c.CascadeDepthCap < 1 {
		return fmt.Errorf("cascade_depth_cap: must be >= 1, got %d", c.CascadeDepthCap)
	}
	if c.ShuffleAttemptsCap < 1 {
		return fmt.Errorf("shuffle_attempts_cap: must be >= 1, got %d", c.ShuffleAttemptsCap)
	}
	if c.HintCooldownMS < 0 {
		return errors.New("hint_cooldown_ms: must be >= 0")
	}
	if c.HintAutoDelayMS < 0 {
		return errors.New("hint_auto_delay_ms: must be >= 0")
	}
	if c.Level < 1 {
		return fmt.Errorf("level: must be >= 1, got %d", c.Level)
	}
	return nil
}

// ToYAML serializes the config to YAML bytes.
func (c *Config) ToYAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// Hash computes a deterministic SHA-256 hash of the configuration, used to
// derive per-move RNG sub-seeds (see state.go).
func (c *Config) Hash() []byte {
	data, err := c.ToYAML()
	if err != nil {
		h := sha256.Sum256([]byte(fmt.Sprintf("%d", c.Seed)))
		return h[:]
	}
	h := sha256.Sum256(data)
	return h[:]
}

func (c *Config) scoringProfile() cascade.ScoringProfile {
	if c.ScoringProfile == ScoringClassic {
		return cascade.Classic
	}
	return cascade.Balanced
}
