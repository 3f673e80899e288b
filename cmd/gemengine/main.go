// Command gemengine drives the headless match-3 engine core from the
// command line: init from a YAML config, optionally replay a scripted move
// list or let the AI analyzer play N turns, then export the resulting board
// snapshot as JSON and/or SVG.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dshills/gemengine/pkg/board"
	"github.com/dshills/gemengine/pkg/engine"
	"github.com/dshills/gemengine/pkg/export"
)

const version = "1.0.0"

var (
	configPath = flag.String("config", "", "Path to YAML configuration file (optional; defaults apply)")
	outputDir  = flag.String("output", ".", "Output directory for generated files")
	format     = flag.String("format", "json", "Export format: json, svg, or all")
	seedFlag   = flag.Uint64("seed", 0, "Override the seed from config (0 = use config seed)")
	movesPath  = flag.String("moves", "", "Path to a JSON move list to replay (array of {\"from\":{\"row\":r,\"col\":c},\"to\":{\"row\":r,\"col\":c}})")
	turns      = flag.Int("turns", 0, "Number of AI-selected turns to auto-play (ignored if -moves is set)")
	verbose    = flag.Bool("verbose", false, "Enable verbose output")
	versionF   = flag.Bool("version", false, "Print version and exit")
	help       = flag.Bool("help", false, "Show help message")
)

func main() {
	flag.Parse()

	if *versionF {
		fmt.Printf("gemengine version %s\n", version)
		os.Exit(0)
	}
	if *help {
		printHelp()
		os.Exit(0)
	}

	validFormats := map[string]bool{"json": true, "svg": true, "all": true}
	if !validFormats[*format] {
		fmt.Fprintf(os.Stderr, "Error: invalid format %q, must be one of: json, svg, all\n", *format)
		os.Exit(1)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type movePos struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type scriptedMove struct {
	From movePos `json:"from"`
	To   movePos `json:"to"`
}

func run() error {
	cfg := engine.DefaultConfig()
	if *configPath != "" {
		if *verbose {
			fmt.Printf("Loading configuration from %s\n", *configPath)
		}
		loaded, err := engine.LoadConfig(*configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}

	if *seedFlag != 0 {
		if *verbose {
			fmt.Printf("Overriding seed from %d to %d\n", cfg.Seed, *seedFlag)
		}
		cfg.Seed = *seedFlag
	}

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if *verbose {
		fmt.Printf("Initializing engine (board_size=%d, kinds_total=%d)\n", cfg.BoardSize, cfg.KindsTotal)
	}

	start := time.Now()
	eng, err := engine.Init(cfg)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	if *movesPath != "" {
		if err := replayMoves(eng, *movesPath); err != nil {
			return err
		}
	} else if *turns > 0 {
		if err := autoPlay(eng, *turns); err != nil {
			return err
		}
	}

	elapsed := time.Since(start)
	if *verbose {
		fmt.Printf("Run completed in %v\n", elapsed)
		printStats(eng)
	}

	state := eng.Snapshot()
	baseName := fmt.Sprintf("gemengine_%d", state.RNGState.MasterSeed)

	if *format == "json" || *format == "all" {
		if err := exportJSON(state, baseName); err != nil {
			return err
		}
	}
	if *format == "svg" || *format == "all" {
		if err := exportSVG(state, baseName); err != nil {
			return err
		}
	}

	fmt.Printf("Successfully ran gemengine (seed=%d, score=%d) in %v\n", state.RNGState.MasterSeed, state.Score, elapsed)
	return nil
}

func replayMoves(eng *engine.Engine, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read moves file: %w", err)
	}
	var moves []scriptedMove
	if err := json.Unmarshal(data, &moves); err != nil {
		return fmt.Errorf("failed to parse moves file: %w", err)
	}
	for i, m := range moves {
		from := board.Pos{Row: m.From.Row, Col: m.From.Col}
		to := board.Pos{Row: m.To.Row, Col: m.To.Col}
		if *verbose {
			fmt.Printf("Move %d: %v -> %v\n", i+1, from, to)
		}
		if _, err := eng.ApplySwap(from, to); err != nil {
			fmt.Fprintf(os.Stderr, "  move %d rejected: %v\n", i+1, err)
		}
	}
	return nil
}

func autoPlay(eng *engine.Engine, n int) error {
	for i := 0; i < n; i++ {
		analysis := eng.Analyze(0)
		if len(analysis) == 0 {
			if *verbose {
				fmt.Println("No legal moves remain; stopping auto-play")
			}
			break
		}
		best := analysis[0]
		if *verbose {
			fmt.Printf("Turn %d: playing %v -> %v (expected %d pts)\n", i+1, best.From, best.To, best.ImmediatePoints)
		}
		if _, err := eng.ApplySwap(best.From, best.To); err != nil {
			fmt.Fprintf(os.Stderr, "  turn %d failed: %v\n", i+1, err)
		}
	}
	return nil
}

func exportJSON(state engine.BoardState, baseName string) error {
	filename := filepath.Join(*outputDir, baseName+".json")
	if *verbose {
		fmt.Printf("Exporting JSON to %s\n", filename)
	}
	if err := export.SaveJSONToFile(state, filename); err != nil {
		return fmt.Errorf("failed to export JSON: %w", err)
	}
	return nil
}

func exportSVG(state engine.BoardState, baseName string) error {
	filename := filepath.Join(*outputDir, baseName+".svg")
	if *verbose {
		fmt.Printf("Exporting SVG to %s\n", filename)
	}
	opts := export.DefaultSVGOptions()
	opts.Title = fmt.Sprintf("gemengine (seed=%d)", state.RNGState.MasterSeed)
	if err := export.SaveSVGToFile(state, filename, opts); err != nil {
		return fmt.Errorf("failed to export SVG: %w", err)
	}
	return nil
}

func printStats(eng *engine.Engine) {
	state := eng.Snapshot()
	fmt.Println("\nEngine Statistics:")
	fmt.Printf("  Score: %d\n", state.Score)
	fmt.Printf("  Level: %d\n", state.Level)
	fmt.Printf("  Moves played: %d\n", state.RNGState.MoveCounter)
	fmt.Printf("  Difficulty: kinds_allowed=%d min_moves=%d max_moves=%d\n",
		state.DifficultySettings.KindsAllowed, state.DifficultySettings.MinMovesTarget, state.DifficultySettings.MaxMovesTarget)
	fmt.Printf("  Hint level: %d\n", state.HintSession.Level)
}

func printHelp() {
	fmt.Printf("gemengine version %s\n\n", version)
	fmt.Println("A command-line driver for the headless match-3 engine core.")
	fmt.Println("\nUsage:")
	fmt.Println("  gemengine [options]")
	fmt.Println("\nOptional Flags:")
	fmt.Println("  -config string")
	fmt.Println("        Path to YAML configuration file (defaults apply if omitted)")
	fmt.Println("  -output string")
	fmt.Println("        Output directory for generated files (default: current directory)")
	fmt.Println("  -format string")
	fmt.Println("        Export format: json, svg, or all (default: json)")
	fmt.Println("  -seed uint")
	fmt.Println("        Override the seed from config (0 = use config seed)")
	fmt.Println("  -moves string")
	fmt.Println("        Path to a JSON move list to replay")
	fmt.Println("  -turns int")
	fmt.Println("        Number of AI-selected turns to auto-play (ignored if -moves is set)")
	fmt.Println("  -verbose")
	fmt.Println("        Enable verbose output")
	fmt.Println("  -version")
	fmt.Println("        Print version and exit")
	fmt.Println("  -help")
	fmt.Println("        Show this help message")
	fmt.Println("\nExamples:")
	fmt.Println("  # Initialize with defaults and export JSON")
	fmt.Println("  gemengine")
	fmt.Println("\n  # Auto-play 20 turns and export both formats")
	fmt.Println("  gemengine -turns 20 -format all -output ./out -verbose")
	fmt.Println("\n  # Replay a scripted move list")
	fmt.Println("  gemengine -config gem.yaml -moves moves.json -format svg")
}
