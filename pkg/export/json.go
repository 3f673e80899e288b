// Package export renders an engine.BoardState to external formats: JSON for
// storage/transmission and SVG for visualization.
package export

import (
	"encoding/json"
	"os"

	"github.com/dshills/gemengine/pkg/engine"
)

// ExportJSON serializes a snapshot to JSON with 2-space indentation.
func ExportJSON(state engine.BoardState) ([]byte, error) {
	return json.MarshalIndent(state, "", "  ")
}

// ExportJSONCompact serializes a snapshot to JSON without indentation.
func ExportJSONCompact(state engine.BoardState) ([]byte, error) {
	return json.Marshal(state)
}

// SaveJSONToFile writes an indented JSON snapshot to path with 0644 permissions.
func SaveJSONToFile(state engine.BoardState, path string) error {
	data, err := ExportJSON(state)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// SaveJSONCompactToFile writes a compact JSON snapshot to path.
func SaveJSONCompactToFile(state engine.BoardState, path string) error {
	data, err := ExportJSONCompact(state)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
