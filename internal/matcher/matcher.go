// Package matcher generates CandidatePairs from two indexed trees.
//
// The single-use New()/Run() shape and the stats+progress-bar pattern are
// grounded on internal/screener/screener.go (ivoronin-dupedog). The
// grouping logic itself — three pairing strategies, blocking rules, top-K
// selection, a greedy exact-hash pass ahead of similarity scoring — has no
// teacher analogue (the teacher only ever groups by identity metadata, it
// never scores similarity) and is ported from
// original_source/src/match_files.rs.
package matcher

import (
	"path/filepath"
	"sort"

	"github.com/foldertools/comparetree/internal/progress"
	"github.com/foldertools/comparetree/internal/types"
)

// Matcher generates candidate pairs between two sets of indexed files.
//
// Single-use: create with New(), call Run() once.
type Matcher struct {
	left, right []*types.FileEntry
	pairing     types.PairingStrategy
	topK        int
	maxPairs    int
	reporter    progress.Reporter
}

// New creates a Matcher over two already-fingerprinted entry sets.
func New(left, right []*types.FileEntry, cfg types.CompareConfig, reporter progress.Reporter) *Matcher {
	topK := cfg.TopK
	if topK <= 0 {
		topK = 3
	}
	return &Matcher{
		left:     left,
		right:    right,
		pairing:  cfg.Pairing,
		topK:     topK,
		maxPairs: cfg.MaxPairs,
		reporter: reporter,
	}
}

// Run generates candidate pairs per the configured pairing strategy.
func (m *Matcher) Run() []types.CandidatePair {
	m.reporter.Start(int64(len(m.left)), "matching")
	defer m.reporter.Finish("matching")

	sortedLeft := sortedByRel(m.left)
	sortedRight := sortedByRel(m.right)

	switch m.pairing {
	case types.PairingSamePath:
		return m.matchByPath(sortedLeft, sortedRight)
	case types.PairingSameName:
		return m.matchByName(sortedLeft, sortedRight)
	default:
		return m.allVsAll(sortedLeft, sortedRight)
	}
}

func sortedByRel(entries []*types.FileEntry) []*types.FileEntry {
	out := make([]*types.FileEntry, len(entries))
	copy(out, entries)
	sort.Slice(out, func(i, j int) bool { return out[i].Rel < out[j].Rel })
	return out
}

// matchByPath pairs entries whose path relative to each input root is
// identical (Open Question resolved in DESIGN.md: relative, not raw/
// absolute paths, so two differently-located trees still line up).
func (m *Matcher) matchByPath(left, right []*types.FileEntry) []types.CandidatePair {
	byRel := make(map[string]*types.FileEntry, len(right))
	for _, r := range right {
		byRel[r.Rel] = r
	}

	var pairs []types.CandidatePair
	for _, l := range left {
		r, ok := byRel[l.Rel]
		if !ok {
			continue
		}
		pairs = append(pairs, types.CandidatePair{
			Left: l, Right: r, EstimatedSimilarity: estimateSimilarity(l, r),
			ExactHashMatch: l.ContentHash != "" && l.ContentHash == r.ContentHash,
		})
		m.reporter.Inc(1)
	}
	return pairs
}

// matchByName pairs each left entry with the best-matching right entry
// sharing the same base name. Open Question resolved in DESIGN.md:
// ambiguity among multiple candidates for one basename is broken by
// picking the first maximum in a path-sorted scan (deterministic,
// left-to-right), rather than Rust's "last max wins" tie-break.
func (m *Matcher) matchByName(left, right []*types.FileEntry) []types.CandidatePair {
	byName := make(map[string][]*types.FileEntry)
	for _, r := range right {
		name := filepath.Base(r.Rel)
		byName[name] = append(byName[name], r)
	}

	used := make(map[*types.FileEntry]bool)
	var pairs []types.CandidatePair
	for _, l := range left {
		candidates := byName[filepath.Base(l.Rel)]
		var best *types.FileEntry
		bestScore := -1.0
		for _, c := range candidates {
			if used[c] {
				continue
			}
			score := estimateSimilarity(l, c)
			if score > bestScore {
				bestScore = score
				best = c
			}
		}
		if best == nil {
			continue
		}
		used[best] = true
		pairs = append(pairs, types.CandidatePair{
			Left: l, Right: best, EstimatedSimilarity: bestScore,
			ExactHashMatch: l.ContentHash != "" && l.ContentHash == best.ContentHash,
		})
		m.reporter.Inc(1)
	}
	return pairs
}

// allVsAll is the two-pass strategy: a greedy exact-hash pass first, then
// blocked+top-K similarity matching over whatever remains unmatched.
// Ported from match_files.rs::all_vs_all_match.
func (m *Matcher) allVsAll(left, right []*types.FileEntry) []types.CandidatePair {
	pairs, usedLeft, usedRight := m.findExactHashMatches(left, right)
	pairs = append(pairs, m.findSimilarityMatches(left, right, usedLeft, usedRight)...)

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].EstimatedSimilarity > pairs[j].EstimatedSimilarity
	})
	if m.maxPairs > 0 && len(pairs) > m.maxPairs {
		pairs = pairs[:m.maxPairs]
	}
	return pairs
}

// findExactHashMatches greedily pairs entries sharing a content hash,
// consuming at most one right entry per left entry.
func (m *Matcher) findExactHashMatches(left, right []*types.FileEntry) (pairs []types.CandidatePair, usedLeft, usedRight map[*types.FileEntry]bool) {
	usedLeft = make(map[*types.FileEntry]bool)
	usedRight = make(map[*types.FileEntry]bool)

	byHash := make(map[string][]*types.FileEntry)
	for _, r := range right {
		if r.ContentHash == "" {
			continue
		}
		byHash[r.ContentHash] = append(byHash[r.ContentHash], r)
	}

	for _, l := range left {
		if l.ContentHash == "" {
			continue
		}
		for _, c := range byHash[l.ContentHash] {
			if usedRight[c] {
				continue
			}
			pairs = append(pairs, types.CandidatePair{Left: l, Right: c, EstimatedSimilarity: 1.0, ExactHashMatch: true})
			usedLeft[l] = true
			usedRight[c] = true
			m.reporter.Inc(1)
			break
		}
	}
	return pairs, usedLeft, usedRight
}

// findSimilarityMatches applies blocking rules and top-K selection over
// the entries the exact-hash pass left unmatched.
func (m *Matcher) findSimilarityMatches(left, right []*types.FileEntry, usedLeft, usedRight map[*types.FileEntry]bool) []types.CandidatePair {
	var remaining []*types.FileEntry
	for _, r := range right {
		if !usedRight[r] {
			remaining = append(remaining, r)
		}
	}

	var pairs []types.CandidatePair
	for _, l := range left {
		if usedLeft[l] {
			continue
		}

		type scored struct {
			entry *types.FileEntry
			score float64
		}
		var candidates []scored
		for _, r := range remaining {
			if !passesBlockingRules(l, r) {
				continue
			}
			candidates = append(candidates, scored{r, estimateSimilarity(l, r)})
		}
		sort.Slice(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })

		k := m.topK
		if k > len(candidates) {
			k = len(candidates)
		}
		for _, c := range candidates[:k] {
			pairs = append(pairs, types.CandidatePair{
				Left: l, Right: c.entry, EstimatedSimilarity: c.score,
				ExactHashMatch: l.ContentHash != "" && l.ContentHash == c.entry.ContentHash,
			})
		}
		m.reporter.Inc(1)
	}
	return pairs
}
