package main

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/dustin/go-humanize"

	"github.com/foldertools/comparetree/internal/types"
)

// buildConfig translates CLI flags into a types.CompareConfig, validating
// enum-like string flags and glob patterns up front (spec.md §7
// SetupError: invalid configuration aborts before any stage starts).
func buildConfig(opts *compareOptions) (types.CompareConfig, error) {
	cfg := types.DefaultCompareConfig()

	mode, err := parseMode(opts.mode)
	if err != nil {
		return cfg, err
	}
	pairing, err := parsePairing(opts.pairing)
	if err != nil {
		return cfg, err
	}
	algo, err := parseAlgorithm(opts.algorithm)
	if err != nil {
		return cfg, err
	}
	if err := validateGlobPatterns(opts.excludes); err != nil {
		return cfg, err
	}

	minSize, err := parseSize(opts.minSize)
	if err != nil {
		return cfg, fmt.Errorf("min-size: %w", err)
	}
	maxFpSize, err := parseSize(opts.maxFpSize)
	if err != nil {
		return cfg, fmt.Errorf("max-fingerprint-size: %w", err)
	}
	maxDiffSize, err := parseSize(opts.maxDiffSize)
	if err != nil {
		return cfg, fmt.Errorf("max-diff-size: %w", err)
	}

	cfg.Mode = mode
	cfg.Pairing = pairing
	cfg.TopK = opts.topK
	cfg.MaxPairs = opts.maxPairs
	cfg.KeyColumns = opts.keyColumns
	cfg.IgnoreColumns = opts.ignoreCols
	cfg.NumericTolerance = opts.tolerance
	cfg.SimilarityAlgorithm = algo
	cfg.MaxDiffBytes = int64(maxDiffSize)
	cfg.ExcludePatterns = opts.excludes
	cfg.IgnoreRegex = opts.ignoreRegex
	cfg.MinSize = int64(minSize)
	cfg.MaxFingerprintSize = int64(maxFpSize)
	cfg.Workers = opts.workers
	cfg.ShowProgress = !opts.quiet
	cfg.Normalization = types.NormalizationOptions{
		IgnoreEOL:        opts.ignoreEOL,
		IgnoreTrailingWS: opts.ignoreTrailingWS,
		IgnoreAllWS:      opts.ignoreAllWS,
		IgnoreCase:       opts.ignoreCase,
		SkipEmptyLines:   opts.skipEmptyLines,
	}

	return cfg, nil
}

func parseMode(s string) (types.CompareMode, error) {
	switch s {
	case "auto":
		return types.ModeAuto, nil
	case "text":
		return types.ModeText, nil
	case "structured":
		return types.ModeStructured, nil
	default:
		return "", fmt.Errorf("unknown mode %q", s)
	}
}

func parsePairing(s string) (types.PairingStrategy, error) {
	switch s {
	case "same_path":
		return types.PairingSamePath, nil
	case "same_name":
		return types.PairingSameName, nil
	case "all_vs_all":
		return types.PairingAllVsAll, nil
	default:
		return "", fmt.Errorf("unknown pairing strategy %q", s)
	}
}

func parseAlgorithm(s string) (types.SimilarityAlgorithm, error) {
	switch types.SimilarityAlgorithm(s) {
	case types.AlgoDiff, types.AlgoCharJaro, types.AlgoLevenshtein, types.AlgoDamerauLevenshtein,
		types.AlgoSorensenDice, types.AlgoJaccard, types.AlgoCosine, types.AlgoRatcliffObershelp,
		types.AlgoSmithWaterman, types.AlgoLcs, types.AlgoHamming, types.AlgoNGram, types.AlgoTfIdf:
		return types.SimilarityAlgorithm(s), nil
	default:
		return "", fmt.Errorf("unknown similarity algorithm %q", s)
	}
}

// parseSize parses a human-readable byte size (e.g. "1MiB") using the
// same library the teacher uses for size flags.
func parseSize(s string) (uint64, error) {
	if s == "" || s == "0" {
		return 0, nil
	}
	return humanize.ParseBytes(s)
}

// validateGlobPatterns rejects malformed exclude patterns up front,
// using doublestar's richer validator in place of the teacher's bare
// filepath.Match (which can't express "**").
func validateGlobPatterns(patterns []string) error {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid exclude pattern %q", p)
		}
	}
	return nil
}
