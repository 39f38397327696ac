package fingerprinter

import (
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/foldertools/comparetree/internal/types"
)

// shingleWindow is the n-gram size used for both the word-shingle and
// line-shingle passes, ported from original_source/src/fingerprint.rs.
const shingleWindow = 3

// NormalizeLines applies the configured normalization to each line,
// mirroring fingerprint.rs::normalize_text / read_normalized_lines: per
// line trim, whitespace collapse, case-fold and empty-line skip. EOL
// normalization is implicit, since the file is already split on lines.
func NormalizeLines(raw []string, norm types.NormalizationOptions) []string {
	out := make([]string, 0, len(raw))
	for _, line := range raw {
		if norm.IgnoreTrailingWS || norm.IgnoreAllWS {
			line = strings.TrimRight(line, " \t\r")
		}
		if norm.IgnoreAllWS {
			line = collapseWhitespace(line)
		}
		if norm.IgnoreCase {
			line = strings.ToLower(line)
		}
		if norm.SkipEmptyLines && strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

func collapseWhitespace(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}

// generateShingles builds the shingle set used for SimHash: word 3-grams
// across the whole document (joined by space) plus line 3-grams (joined
// by newline). A document with fewer than shingleWindow words collapses
// to a single whole-document shingle, matching fingerprint.rs exactly.
func generateShingles(lines []string) []string {
	var shingles []string

	words := strings.Fields(strings.Join(lines, " "))
	if len(words) < shingleWindow {
		if len(words) > 0 {
			shingles = append(shingles, strings.Join(words, " "))
		}
	} else {
		for i := 0; i+shingleWindow <= len(words); i++ {
			shingles = append(shingles, strings.Join(words[i:i+shingleWindow], " "))
		}
	}

	for i := 0; i+shingleWindow <= len(lines); i++ {
		shingles = append(shingles, strings.Join(lines[i:i+shingleWindow], "\n"))
	}

	return shingles
}

// ComputeSimHash computes a 64-bit SimHash over lines, after applying
// norm. Ported from fingerprint.rs::compute_simhash.
func ComputeSimHash(lines []string, norm types.NormalizationOptions) uint64 {
	normalized := NormalizeLines(lines, norm)
	shingles := generateShingles(normalized)

	var v [64]int64
	for _, sh := range shingles {
		h := xxhash.Sum64String(sh)
		for i := 0; i < 64; i++ {
			if h&(1<<uint(i)) != 0 {
				v[i]++
			} else {
				v[i]--
			}
		}
	}

	var result uint64
	for i := 0; i < 64; i++ {
		if v[i] > 0 {
			result |= 1 << uint(i)
		}
	}
	return result
}

// HammingDistance counts the differing bits between two SimHash values.
func HammingDistance(a, b uint64) int {
	x := a ^ b
	count := 0
	for x != 0 {
		x &= x - 1
		count++
	}
	return count
}

// SimHashSimilarity converts a Hamming distance over 64 bits into a
// [0,1] similarity score.
func SimHashSimilarity(a, b uint64) float64 {
	return 1.0 - float64(HammingDistance(a, b))/64.0
}
