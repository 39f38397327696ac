package comparator

import (
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/foldertools/comparetree/internal/fingerprinter"
	"github.com/foldertools/comparetree/internal/types"
)

// maxIgnoreRegexLen bounds ignore_regex per spec.md §6: Go's regexp
// package exposes no DFA/program size limit the way Rust's
// regex::RegexBuilder does, so pattern length is the proxy bound.
const maxIgnoreRegexLen = 1000

// compileIgnoreRegex compiles pattern, returning (nil, rejection) instead
// of aborting the run on failure — a PolicyRejection (spec.md §7), logged
// by the caller and otherwise ignored.
func compileIgnoreRegex(pattern string) (*regexp.Regexp, *types.PolicyRejection) {
	if pattern == "" {
		return nil, nil
	}
	if len(pattern) > maxIgnoreRegexLen {
		return nil, &types.PolicyRejection{Field: "ignore_regex", Reason: "pattern exceeds 1000 characters"}
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, &types.PolicyRejection{Field: "ignore_regex", Reason: err.Error()}
	}
	return re, nil
}

func applyRegexFilter(lines []string, re *regexp.Regexp) []string {
	if re == nil {
		return lines
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = re.ReplaceAllString(l, "<IGNORED>")
	}
	return out
}

// compareText implements the text-diff backend (spec.md §4.4): Myers
// line diff, similarity scoring, bounded detailed+unified diff, and
// run-length-encoded differing line positions. Ported from
// original_source/src/compare_text.rs::compare_text_files.
func compareText(pair types.CandidatePair, cfg types.CompareConfig) (types.TextResult, error) {
	left, right := pair.Left, pair.Right

	lines1, err := fingerprinter.ReadLines(left.Path)
	if err != nil {
		return types.TextResult{}, fmt.Errorf("read %s: %w", left.Path, err)
	}
	lines2, err := fingerprinter.ReadLines(right.Path)
	if err != nil {
		return types.TextResult{}, fmt.Errorf("read %s: %w", right.Path, err)
	}

	lines1 = fingerprinter.NormalizeLines(lines1, cfg.Normalization)
	lines2 = fingerprinter.NormalizeLines(lines2, cfg.Normalization)

	if re, rejection := compileIgnoreRegex(cfg.IgnoreRegex); rejection != nil {
		// Logged as a warning; comparison proceeds with regex filtering
		// disabled.
		log.Printf("comparator: %v; ignore_regex dropped", rejection)
	} else if re != nil {
		lines1 = applyRegexFilter(lines1, re)
		lines2 = applyRegexFilter(lines2, re)
	}

	dmp := diffmatchpatch.New()
	text1, text2, lineArray := dmp.DiffLinesToChars(strings.Join(lines1, "\n"), strings.Join(lines2, "\n"))
	diffs := dmp.DiffMain(text1, text2, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var common, onlyLeft, onlyRight int
	var positions []int
	lineNo := 0
	var detail strings.Builder
	truncated := false

	for _, d := range diffs {
		dLines := splitKeepEmpty(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			common += len(dLines)
			lineNo += len(dLines)
		case diffmatchpatch.DiffDelete:
			onlyLeft += len(dLines)
			for _, l := range dLines {
				lineNo++
				positions = append(positions, lineNo)
				writeDetail(&detail, &truncated, cfg.MaxDiffBytes, "-", l)
			}
		case diffmatchpatch.DiffInsert:
			onlyRight += len(dLines)
			for _, l := range dLines {
				lineNo++
				positions = append(positions, lineNo)
				writeDetail(&detail, &truncated, cfg.MaxDiffBytes, "+", l)
			}
		}
	}

	result := types.TextResult{
		File1Path:          left.Path,
		File2Path:          right.Path,
		LinkedID:           pair.LinkedID(),
		Identical:          onlyLeft == 0 && onlyRight == 0,
		Algorithm:          cfg.SimilarityAlgorithm,
		LinesCommon:        common,
		LinesOnlyLeft:       onlyLeft,
		LinesOnlyRight:      onlyRight,
		DifferentPositions: encodeRanges(positions),
		DetailedDiff:       detail.String(),
		DiffTruncated:      truncated,
		UnifiedDiff:        unifiedDiff(left.Path, right.Path, diffs, cfg.MaxDiffBytes),
	}

	diffRatio := 0.0
	total := len(lines1) + len(lines2)
	if total > 0 {
		diffRatio = 2.0 * float64(common) / float64(total)
	} else {
		diffRatio = 1.0
	}
	result.Similarity = scoreSimilarity(cfg.SimilarityAlgorithm, lines1, lines2, diffRatio)

	return result, nil
}

func splitKeepEmpty(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return []string{""}
	}
	return strings.Split(s, "\n")
}

func writeDetail(b *strings.Builder, truncated *bool, maxBytes int64, prefix, line string) {
	if *truncated {
		return
	}
	entry := prefix + line + "\n"
	if maxBytes > 0 && int64(b.Len()+len(entry)) > maxBytes {
		b.WriteString("\n... [diff truncated] ...\n")
		*truncated = true
		return
	}
	b.WriteString(entry)
}

// unifiedContext is the number of context lines kept around each hunk,
// matching the Rust original's diff.unified_diff().context_radius(3).
const unifiedContext = 3

// hunkOp is one run of same-tag lines from the Myers diff, carrying the
// 0-based line position each side was at when the run started.
type hunkOp struct {
	tag      byte // ' ' equal, '-' delete, '+' insert
	lines    []string
	oldStart int
	newStart int
}

// buildHunkOps flattens the diffmatchpatch stream into line-granular runs
// with running line positions in both files.
func buildHunkOps(diffs []diffmatchpatch.Diff) []hunkOp {
	ops := make([]hunkOp, 0, len(diffs))
	oldLine, newLine := 0, 0
	for _, d := range diffs {
		lines := splitKeepEmpty(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			ops = append(ops, hunkOp{tag: ' ', lines: lines, oldStart: oldLine, newStart: newLine})
			oldLine += len(lines)
			newLine += len(lines)
		case diffmatchpatch.DiffDelete:
			ops = append(ops, hunkOp{tag: '-', lines: lines, oldStart: oldLine, newStart: newLine})
			oldLine += len(lines)
		case diffmatchpatch.DiffInsert:
			ops = append(ops, hunkOp{tag: '+', lines: lines, oldStart: oldLine, newStart: newLine})
			newLine += len(lines)
		}
	}
	return ops
}

// headLines keeps only the first n lines of an equal run (context that
// follows a change).
func headLines(op hunkOp, n int) hunkOp {
	if len(op.lines) <= n {
		return op
	}
	op.lines = op.lines[:n]
	return op
}

// tailLines keeps only the last n lines of an equal run (context that
// precedes a change), advancing both line positions accordingly.
func tailLines(op hunkOp, n int) hunkOp {
	if len(op.lines) <= n {
		return op
	}
	k := len(op.lines) - n
	op.lines = op.lines[k:]
	op.oldStart += k
	op.newStart += k
	return op
}

// groupHunks clips leading/trailing equal runs to n lines of context and
// splits on any interior equal run longer than 2n, producing one group of
// ops per hunk — mirroring difflib's get_grouped_opcodes.
func groupHunks(ops []hunkOp, n int) [][]hunkOp {
	if len(ops) == 0 {
		return nil
	}
	ops = append([]hunkOp(nil), ops...)
	if ops[0].tag == ' ' {
		ops[0] = tailLines(ops[0], n)
	}
	last := len(ops) - 1
	if ops[last].tag == ' ' {
		ops[last] = headLines(ops[last], n)
	}

	var groups [][]hunkOp
	var group []hunkOp
	for i, op := range ops {
		if op.tag == ' ' && i != 0 && i != last && len(op.lines) > 2*n {
			group = append(group, headLines(op, n))
			groups = append(groups, group)
			group = []hunkOp{tailLines(op, n)}
			continue
		}
		group = append(group, op)
	}
	if len(group) > 0 {
		groups = append(groups, group)
	}
	return groups
}

func hasChange(group []hunkOp) bool {
	for _, op := range group {
		if op.tag != ' ' {
			return true
		}
	}
	return false
}

// rangeStr formats a hunk-header range; a zero-length side is rendered as
// "<start>,0" (the insert-at/delete-at-EOF convention), matching classic
// diff -u output.
func rangeStr(start0 int, length int) string {
	if length == 0 {
		return fmt.Sprintf("%d,0", start0)
	}
	return fmt.Sprintf("%d,%d", start0+1, length)
}

// unifiedDiff renders a classic "---"/"+++"-headed unified diff with
// unifiedContext lines of context per hunk and "@@ -a,b +c,d @@" headers,
// bounded by maxBytes, matching diff.unified_diff().context_radius(3).
func unifiedDiff(path1, path2 string, diffs []diffmatchpatch.Diff, maxBytes int64) string {
	groups := groupHunks(buildHunkOps(diffs), unifiedContext)

	var b strings.Builder
	b.WriteString("--- " + path1 + "\n")
	b.WriteString("+++ " + path2 + "\n")

	fits := func(s string) bool {
		return maxBytes <= 0 || int64(b.Len()+len(s)) <= maxBytes
	}

	for _, group := range groups {
		if !hasChange(group) {
			continue
		}

		oldStart, newStart := group[0].oldStart, group[0].newStart
		var oldLen, newLen int
		for _, op := range group {
			switch op.tag {
			case ' ':
				oldLen += len(op.lines)
				newLen += len(op.lines)
			case '-':
				oldLen += len(op.lines)
			case '+':
				newLen += len(op.lines)
			}
		}
		header := fmt.Sprintf("@@ -%s +%s @@\n", rangeStr(oldStart, oldLen), rangeStr(newStart, newLen))
		if !fits(header) {
			b.WriteString("\n... [diff truncated] ...\n")
			return b.String()
		}
		b.WriteString(header)

		for _, op := range group {
			for _, l := range op.lines {
				entry := string(op.tag) + l + "\n"
				if !fits(entry) {
					b.WriteString("\n... [diff truncated] ...\n")
					return b.String()
				}
				b.WriteString(entry)
			}
		}
	}
	return b.String()
}

// encodeRanges run-length-encodes a sorted slice of positions, e.g.
// [1,2,3,5,7,8,9] -> "1-3,5,7-9". Ported from compare_text.rs::encode_ranges.
func encodeRanges(positions []int) string {
	if len(positions) == 0 {
		return ""
	}
	var parts []string
	start, end := positions[0], positions[0]
	flush := func() {
		if start == end {
			parts = append(parts, strconv.Itoa(start))
		} else {
			parts = append(parts, strconv.Itoa(start)+"-"+strconv.Itoa(end))
		}
	}
	for _, p := range positions[1:] {
		if p == end+1 {
			end = p
			continue
		}
		flush()
		start, end = p, p
	}
	flush()
	return strings.Join(parts, ",")
}
