// Package themes holds cosmetic gem metadata: a label and glyph per Kind,
// loaded from YAML. This is strictly a rendering/export concern; no package
// outside themes/export/cmd ever reads a KindSet, and game logic never
// depends on one.
package themes

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dshills/gemengine/pkg/board"
)

// KindEntry is the cosmetic presentation of one base gem Kind.
type KindEntry struct {
	Kind  string `yaml:"kind" json:"kind"`
	Label string `yaml:"label" json:"label"`
	Glyph string `yaml:"glyph" json:"glyph"`
	Color string `yaml:"color" json:"color"`
}

// PowerUpEntry is the cosmetic presentation of one power-up tag.
type PowerUpEntry struct {
	Tag   string `yaml:"tag" json:"tag"`
	Label string `yaml:"label" json:"label"`
	Glyph string `yaml:"glyph" json:"glyph"`
}

// KindSet is a cosmetic theme: entries for base Kinds and PowerUpTags. It may
// be partial; kinds without an entry fall back to defaults.
type KindSet struct {
	Name     string         `yaml:"name" json:"name"`
	Kinds    []KindEntry    `yaml:"kinds" json:"kinds"`
	PowerUps []PowerUpEntry `yaml:"power_ups" json:"power_ups"`

	byKind    map[board.Kind]KindEntry
	byPowerUp map[board.PowerUpTag]PowerUpEntry
}

// LoadKindSetFromFile loads a KindSet from a YAML file.
func LoadKindSetFromFile(path string) (*KindSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading theme file: %w", err)
	}
	return LoadKindSetFromBytes(data)
}

// LoadKindSetFromBytes parses a KindSet from YAML bytes and validates it.
func LoadKindSetFromBytes(data []byte) (*KindSet, error) {
	var ks KindSet
	if err := yaml.Unmarshal(data, &ks); err != nil {
		return nil, fmt.Errorf("parsing theme YAML: %w", err)
	}
	if err := ks.Validate(); err != nil {
		return nil, err
	}
	ks.index()
	return &ks, nil
}

// Validate checks that the set has a name, at least one kind entry, and a
// kind name and label on every kind entry. It does not check that every base
// Kind or PowerUpTag is covered, nor that entries are unique.
func (ks *KindSet) Validate() error {
	if ks.Name == "" {
		return errors.New("themes: name is required")
	}
	if len(ks.Kinds) == 0 {
		return errors.New("themes: at least one kind entry is required")
	}
	for _, k := range ks.Kinds {
		if k.Kind == "" {
			return errors.New("themes: kind entry missing kind name")
		}
		if k.Label == "" {
			return errors.New("themes: kind entry missing label")
		}
	}
	return nil
}

// index builds the lookup maps used by Label/Glyph/Color. Unknown kind
// letters in YAML are ignored; missing kinds simply fall back to defaults.
func (ks *KindSet) index() {
	ks.byKind = make(map[board.Kind]KindEntry, len(ks.Kinds))
	for _, e := range ks.Kinds {
		if k, ok := parseKindLetter(e.Kind); ok {
			ks.byKind[k] = e
		}
	}
	ks.byPowerUp = make(map[board.PowerUpTag]PowerUpEntry, len(ks.PowerUps))
	for _, e := range ks.PowerUps {
		if t, ok := parsePowerUpName(e.Tag); ok {
			ks.byPowerUp[t] = e
		}
	}
}

func parseKindLetter(s string) (board.Kind, bool) {
	if len(s) != 1 {
		return 0, false
	}
	k := board.Kind(s[0] - 'A')
	if k < 0 || int(k) >= board.MaxKinds {
		return 0, false
	}
	return k, true
}

func parsePowerUpName(s string) (board.PowerUpTag, bool) {
	switch s {
	case "LineH":
		return board.PowerUpLineH, true
	case "LineV":
		return board.PowerUpLineV, true
	case "Bomb3x3":
		return board.PowerUpBomb3x3, true
	case "ColorClear":
		return board.PowerUpColorClear, true
	default:
		return 0, false
	}
}

// Label returns the cosmetic label for a Kind, falling back to the Kind's
// own String() if the theme has no entry for it.
func (ks *KindSet) Label(k board.Kind) string {
	if e, ok := ks.byKind[k]; ok {
		return e.Label
	}
	return k.String()
}

// Glyph returns the cosmetic glyph for a Kind, falling back to its label.
func (ks *KindSet) Glyph(k board.Kind) string {
	if e, ok := ks.byKind[k]; ok && e.Glyph != "" {
		return e.Glyph
	}
	return ks.Label(k)
}

// Color returns the cosmetic fill color for a Kind, falling back to white.
func (ks *KindSet) Color(k board.Kind) string {
	if e, ok := ks.byKind[k]; ok && e.Color != "" {
		return e.Color
	}
	return "#ffffff"
}

// PowerUpGlyph returns the cosmetic glyph for a power-up tag, falling back
// to the tag's own String().
func (ks *KindSet) PowerUpGlyph(t board.PowerUpTag) string {
	if e, ok := ks.byPowerUp[t]; ok && e.Glyph != "" {
		return e.Glyph
	}
	return t.String()
}

// Default returns a built-in KindSet covering every default base Kind with
// a plain letter glyph, used when no theme file is supplied.
func Default() *KindSet {
	ks := &KindSet{Name: "default"}
	colors := [...]string{"#e74c3c", "#3498db", "#2ecc71", "#f1c40f", "#9b59b6", "#e67e22", "#1abc9c"}
	for i := 0; i < board.MaxKinds; i++ {
		k := board.Kind(i)
		color := "#ffffff"
		if i < len(colors) {
			color = colors[i]
		}
		ks.Kinds = append(ks.Kinds, KindEntry{Kind: k.String(), Label: k.String(), Glyph: k.String(), Color: color})
	}
	ks.PowerUps = []PowerUpEntry{
		{Tag: "LineH", Label: "Row Clear", Glyph: "↔"},
		{Tag: "LineV", Label: "Column Clear", Glyph: "↕"},
		{Tag: "Bomb3x3", Label: "Bomb", Glyph: "✹"},
		{Tag: "ColorClear", Label: "Color Clear", Glyph: "★"},
	}
	ks.index()
	return ks
}
