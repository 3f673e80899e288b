// Package rng provides deterministic random number generation for the gem
// engine.
//
// # Overview
//
// The RNG type ensures reproducible board generation and cascade resolution
// by deriving stage-specific seeds from a master seed. This allows each
// engine concern (initial board fill, post-cascade refill, shuffle, AI
// sandbox analysis) to have independent random sequences while maintaining
// overall determinism for a session.
//
// # Sub-Seed Derivation
//
// Each RNG derives its seed using SHA-256:
//
//	seed_stage = H(masterSeed, stageName, configHash)
//
// where:
//   - masterSeed: Top-level seed for the engine session
//   - stageName: Concern identifier (e.g., "board_fill", "ai_sandbox")
//   - configHash: Hash of the engine configuration
//
// This ensures:
//  1. Same inputs always produce same RNG sequence (determinism)
//  2. Different concerns get independent random sequences (isolation)
//  3. Config changes result in different sequences (sensitivity)
//
// # Usage
//
// Create an RNG for each engine concern:
//
//	configHash := cfg.Hash()
//	fillRNG := rng.NewRNG(cfg.Seed, "board_fill", configHash)
//	aiRNG := rng.NewRNG(cfg.Seed, "ai_sandbox", configHash)
//
// Use the RNG for all random decisions for that concern:
//
//	kind := fillRNG.IntRange(0, kindsAllowed-1)
//	if fillRNG.Bool() {
//	    // tie-break
//	}
//
// # Thread Safety
//
// RNG instances are NOT thread-safe. The engine is single-threaded by
// design; an AI sandbox clone gets its own RNG derived from a
// fixed stage name so predictions stay stable within a turn.
//
// # Performance
//
// The underlying math/rand.Rand is highly efficient:
//   - Uint64(): ~2ns per call
//   - Intn():   ~3ns per call
//   - Float64(): ~2ns per call
//
// Creating a new RNG costs ~8µs due to SHA-256 computation.
// Reuse RNG instances within a concern for best performance.
package rng
