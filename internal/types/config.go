package types

import "time"

// CompareMode selects how a candidate pair is compared.
type CompareMode string

const (
	ModeAuto       CompareMode = "auto"
	ModeText       CompareMode = "text"
	ModeStructured CompareMode = "structured"
)

// PairingStrategy selects how candidate pairs are generated from the two
// indexed trees.
type PairingStrategy string

const (
	PairingSamePath PairingStrategy = "same_path"
	PairingSameName PairingStrategy = "same_name"
	PairingAllVsAll PairingStrategy = "all_vs_all"
)

// SimilarityAlgorithm selects the text-similarity scoring function used by
// the text comparator backend.
type SimilarityAlgorithm string

const (
	AlgoDiff             SimilarityAlgorithm = "diff"
	AlgoCharJaro         SimilarityAlgorithm = "char_jaro"
	AlgoLevenshtein      SimilarityAlgorithm = "levenshtein"
	AlgoDamerauLevenshtein SimilarityAlgorithm = "damerau_levenshtein"
	AlgoSorensenDice     SimilarityAlgorithm = "sorensen_dice"
	AlgoJaccard          SimilarityAlgorithm = "jaccard"
	AlgoCosine           SimilarityAlgorithm = "cosine"
	AlgoRatcliffObershelp SimilarityAlgorithm = "ratcliff_obershelp"
	AlgoSmithWaterman    SimilarityAlgorithm = "smith_waterman"
	AlgoLcs              SimilarityAlgorithm = "lcs"
	AlgoHamming          SimilarityAlgorithm = "hamming"
	AlgoNGram            SimilarityAlgorithm = "ngram"
	AlgoTfIdf            SimilarityAlgorithm = "tfidf"
)

// NormalizationOptions controls how text lines are normalized before
// diffing and similarity scoring.
type NormalizationOptions struct {
	IgnoreEOL         bool
	IgnoreTrailingWS  bool
	IgnoreAllWS       bool
	IgnoreCase        bool
	SkipEmptyLines    bool
}

// CompareConfig is the full configuration record for a comparison run,
// exactly the set of options listed in spec.md §6.
type CompareConfig struct {
	Mode            CompareMode
	Pairing         PairingStrategy
	TopK            int
	MaxPairs        int // 0 = unbounded

	KeyColumns      []string
	IgnoreColumns   []string
	NumericTolerance float64 // used as both an absolute and a relative bound; either suffices, see structured.go

	SimilarityAlgorithm SimilarityAlgorithm
	MaxDiffBytes        int64
	Normalization       NormalizationOptions

	ExcludePatterns []string // doublestar glob patterns, relative to each root
	IgnoreRegex     string   // optional; rejected if the pattern is longer than 1000 chars

	MaxFingerprintSize int64 // entries larger than this skip SimHash and the text line diff (size 0 = no limit)
	MinSize            int64 // entries smaller than this are excluded entirely

	Workers      int
	ShowProgress bool
}

// DefaultCompareConfig returns the configuration baseline ported from
// original_source/src/types.rs's CompareConfig::default().
func DefaultCompareConfig() CompareConfig {
	return CompareConfig{
		Mode:             ModeAuto,
		Pairing:          PairingAllVsAll,
		TopK:             3,
		MaxPairs:         0,
		NumericTolerance: 0.0001,
		SimilarityAlgorithm: AlgoDiff,
		MaxDiffBytes:     1 << 20,
		MaxFingerprintSize: 0,
		Workers:          8,
		ShowProgress:     true,
	}
}

// RunID formats the auto-generated run directory name:
// YYYYMMDD_HHMMSS_<8hex>.
func RunID(t time.Time, suffix string) string {
	return t.Format("20060102_150405") + "_" + suffix
}
