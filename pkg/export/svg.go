package export

import (
	"bytes"
	"fmt"
	"os"

	svg "github.com/ajstarks/svgo"

	"github.com/dshills/gemengine/pkg/engine"
	"github.com/dshills/gemengine/pkg/themes"
)

// SVGOptions configures board visualization export.
type SVGOptions struct {
	CellSize   int             // Pixel size of one board cell (default: 48)
	Margin     int             // Canvas margin in pixels (default: 40)
	ShowGrid   bool            // Draw grid lines between cells
	ShowLabels bool            // Draw the kind letter atop each gem
	ShowLegend bool            // Draw a legend of kind colors and power-up glyphs
	Title      string          // Optional title drawn above the board
	ShowStats  bool            // Draw score/level/move-counter stats below the title
	Theme      *themes.KindSet // Cosmetic theme; themes.Default() if nil
}

// DefaultSVGOptions returns sensible default SVG export options.
func DefaultSVGOptions() SVGOptions {
	return SVGOptions{
		CellSize:   48,
		Margin:     40,
		ShowGrid:   true,
		ShowLabels: true,
		ShowLegend: true,
		Title:      "Board",
		ShowStats:  true,
	}
}

// ExportSVG renders a board snapshot to an SVG byte slice.
func ExportSVG(state engine.BoardState, opts SVGOptions) ([]byte, error) {
	if state.N <= 0 {
		return nil, fmt.Errorf("export: board size must be positive, got %d", state.N)
	}
	if opts.CellSize <= 0 {
		opts.CellSize = 48
	}
	if opts.Margin <= 0 {
		opts.Margin = 40
	}
	theme := opts.Theme
	if theme == nil {
		theme = themes.Default()
	}

	headerHeight := 0
	if opts.Title != "" {
		headerHeight += 30
	}
	if opts.ShowStats {
		headerHeight += 20
	}

	legendWidth := 0
	if opts.ShowLegend {
		legendWidth = 170
	}

	boardPx := state.N * opts.CellSize
	width := boardPx + 2*opts.Margin + legendWidth
	height := boardPx + 2*opts.Margin + headerHeight

	buf := new(bytes.Buffer)
	canvas := svg.New(buf)
	canvas.Start(width, height)
	canvas.Rect(0, 0, width, height, "fill:#1a1a2e")

	originX := opts.Margin
	originY := opts.Margin + headerHeight

	if opts.ShowGrid {
		drawGrid(canvas, state.N, originX, originY, opts.CellSize)
	}

	cellByPos := make(map[[2]int]engine.CellState, len(state.Cells))
	for _, c := range state.Cells {
		cellByPos[[2]int{c.Row, c.Col}] = c
	}
	for r := 0; r < state.N; r++ {
		for c := 0; c < state.N; c++ {
			cell, ok := cellByPos[[2]int{r, c}]
			if !ok {
				continue
			}
			drawGem(canvas, cell, theme, originX, originY, opts.CellSize, opts.ShowLabels)
		}
	}

	if opts.Title != "" || opts.ShowStats {
		drawHeader(canvas, state, opts, width)
	}
	if opts.ShowLegend {
		drawLegend(canvas, theme, originX+boardPx+20, originY)
	}

	canvas.End()
	return buf.Bytes(), nil
}

// SaveSVGToFile renders and writes an SVG visualization to path with 0644
// permissions.
func SaveSVGToFile(state engine.BoardState, path string, opts SVGOptions) error {
	data, err := ExportSVG(state, opts)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func drawGrid(canvas *svg.SVG, n, originX, originY, cellSize int) {
	boardPx := n * cellSize
	for i := 0; i <= n; i++ {
		x := originX + i*cellSize
		canvas.Line(x, originY, x, originY+boardPx, "stroke:#4a5568;stroke-width:1;opacity:0.5")
		y := originY + i*cellSize
		canvas.Line(originX, y, originX+boardPx, y, "stroke:#4a5568;stroke-width:1;opacity:0.5")
	}
}

func drawGem(canvas *svg.SVG, cell engine.CellState, theme *themes.KindSet, originX, originY, cellSize int, showLabels bool) {
	cx := originX + cell.Col*cellSize + cellSize/2
	cy := originY + cell.Row*cellSize + cellSize/2
	radius := int(float64(cellSize) * 0.4)

	color := theme.Color(cell.Kind)
	canvas.Circle(cx, cy, radius, fmt.Sprintf("fill:%s;stroke:#fff;stroke-width:1.5;opacity:0.95", color))

	if cell.Tag != 0 {
		canvas.Circle(cx, cy, radius+4, "fill:none;stroke:#ffd700;stroke-width:2;stroke-dasharray:4,2")
		canvas.Text(cx, cy+radius+16, theme.PowerUpGlyph(cell.Tag),
			"text-anchor:middle;font-size:12px;fill:#ffd700;font-weight:bold")
	}

	if showLabels {
		canvas.Text(cx, cy+5, theme.Glyph(cell.Kind),
			"text-anchor:middle;font-size:16px;font-weight:bold;fill:#1a1a2e;font-family:monospace")
	}
}

func drawHeader(canvas *svg.SVG, state engine.BoardState, opts SVGOptions, width int) {
	y := 20
	if opts.Title != "" {
		canvas.Text(width/2, y, opts.Title,
			"text-anchor:middle;font-size:18px;font-weight:bold;fill:#e2e8f0;font-family:sans-serif")
		y += 25
	}
	if opts.ShowStats {
		stats := fmt.Sprintf("Score: %d | Level: %d | Move: %d | Mode: %s",
			state.Score, state.Level, state.RNGState.MoveCounter, state.Mode)
		canvas.Text(width/2, y, stats,
			"text-anchor:middle;font-size:12px;fill:#a0aec0;font-family:monospace")
	}
}

func drawLegend(canvas *svg.SVG, theme *themes.KindSet, x, y int) {
	canvas.Rect(x-10, y-20, 160, 280, "fill:#2d3748;stroke:#4a5568;stroke-width:1;opacity:0.95;rx:5")
	canvas.Text(x, y, "Kinds", "font-size:13px;font-weight:bold;fill:#e2e8f0")
	y += 22
	for _, entry := range theme.Kinds {
		canvas.Circle(x+8, y, 8, fmt.Sprintf("fill:%s;stroke:#fff;stroke-width:1", entry.Color))
		canvas.Text(x+25, y+4, entry.Label, "font-size:11px;fill:#cbd5e0")
		y += 20
	}
	y += 10
	canvas.Text(x, y, "Power-ups", "font-size:13px;font-weight:bold;fill:#e2e8f0")
	y += 20
	for _, entry := range theme.PowerUps {
		canvas.Text(x+8, y+4, entry.Glyph, "font-size:13px;fill:#ffd700")
		canvas.Text(x+25, y+4, entry.Label, "font-size:11px;fill:#cbd5e0")
		y += 18
	}
}
