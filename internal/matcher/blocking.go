package matcher

import (
	"github.com/foldertools/comparetree/internal/fingerprinter"
	"github.com/foldertools/comparetree/internal/types"
)

// Extension groups used by passesBlockingRules/extensionsCompatible,
// ported 1:1 from original_source/src/match_files.rs::extensions_compatible.
var (
	textExts   = set("txt", "log", "md", "rst", "")
	csvExts    = set("csv", "tsv", "tab")
	codeExts   = set("rs", "py", "js", "ts", "java", "c", "cpp", "h", "hpp", "go")
	configExts = set("json", "yaml", "yml", "toml", "ini", "cfg")
)

func set(vals ...string) map[string]bool {
	m := make(map[string]bool, len(vals))
	for _, v := range vals {
		m[v] = true
	}
	return m
}

// extensionsCompatible reports whether two extensions belong to the same
// blocking group (or are identical).
func extensionsCompatible(e1, e2 string) bool {
	if e1 == e2 {
		return true
	}
	for _, group := range []map[string]bool{textExts, csvExts, codeExts, configExts} {
		if group[e1] && group[e2] {
			return true
		}
	}
	return false
}

// minSizeRatio/maxSizeRatio bound the size-ratio blocking rule (spec.md
// §4.3): a candidate pair whose sizes differ by more than 10x is pruned.
const (
	minSizeRatio = 0.1
	maxSizeRatio = 10.0
)

// passesBlockingRules applies the three pruning rules from spec.md §4.3 /
// match_files.rs::passes_blocking_rules: extension-group compatibility,
// size-ratio bound, and binary-only-matches-binary.
func passesBlockingRules(a, b *types.FileEntry) bool {
	if !extensionsCompatible(a.Extension, b.Extension) {
		return false
	}

	if a.Size > 0 && b.Size > 0 {
		lo, hi := a.Size, b.Size
		if lo > hi {
			lo, hi = hi, lo
		}
		ratio := float64(lo) / float64(hi)
		if ratio < minSizeRatio {
			return false
		}
	}

	aBin := a.Type == types.FileBinary
	bBin := b.Type == types.FileBinary
	if aBin != bBin {
		return false
	}

	return true
}

// estimateSimilarity is the matcher's cheap pre-comparison estimate used
// only for ranking candidates, never reported as a final score. Ported
// from match_files.rs::estimate_similarity's exact precedence order.
func estimateSimilarity(a, b *types.FileEntry) float64 {
	if a.ContentHash != "" && a.ContentHash == b.ContentHash {
		return 1.0
	}
	if a.SimHash != nil && b.SimHash != nil {
		return fingerprinter.SimHashSimilarity(*a.SimHash, *b.SimHash)
	}
	if a.SchemaSignature != "" && a.SchemaSignature == b.SchemaSignature {
		return 0.5
	}
	if a.Size > 0 && b.Size > 0 {
		lo, hi := a.Size, b.Size
		if lo > hi {
			lo, hi = hi, lo
		}
		return float64(lo) / float64(hi) * 0.3
	}
	return 0.0
}
