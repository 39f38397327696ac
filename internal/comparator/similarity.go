package comparator

import (
	"math"
	"sort"
	"strings"

	"github.com/foldertools/comparetree/internal/types"
)

// smithWatermanLineLimit / lcsLineLimit bound the O(N*M) dynamic-program
// algorithms; above these sizes the comparator falls back to the diff
// ratio instead, per original_source/src/compare_text.rs.
const (
	smithWatermanLineLimit = 2000
	lcsLineLimit           = 5000
)

// scoreSimilarity dispatches to the configured algorithm. lines1/lines2
// are the already-normalized line slices; diffRatio is the Myers-diff
// ratio computed by the caller, reused both as the AlgoDiff result and as
// the fallback for the two bounded DP algorithms.
func scoreSimilarity(algo types.SimilarityAlgorithm, lines1, lines2 []string, diffRatio float64) float64 {
	switch algo {
	case types.AlgoDiff:
		return diffRatio
	case types.AlgoCharJaro:
		return jaroSimilarity(joinLines(lines1), joinLines(lines2))
	case types.AlgoLevenshtein:
		return levenshteinSimilarity(joinLines(lines1), joinLines(lines2))
	case types.AlgoDamerauLevenshtein:
		return damerauLevenshteinSimilarity(joinLines(lines1), joinLines(lines2))
	case types.AlgoSorensenDice:
		return sorensenDiceSimilarity(joinLines(lines1), joinLines(lines2))
	case types.AlgoJaccard:
		return jaccardTokenSimilarity(lines1, lines2)
	case types.AlgoCosine:
		return cosineTokenSimilarity(lines1, lines2)
	case types.AlgoRatcliffObershelp:
		// Approximated via the Myers ratio (spec.md §4.4); the Rust
		// original reuses diff.ratio() directly rather than running true
		// gestalt pattern matching.
		return diffRatio
	case types.AlgoSmithWaterman:
		if len(lines1) > smithWatermanLineLimit || len(lines2) > smithWatermanLineLimit {
			return diffRatio
		}
		return smithWatermanSimilarity(lines1, lines2)
	case types.AlgoLcs:
		if len(lines1) > lcsLineLimit || len(lines2) > lcsLineLimit {
			return diffRatio
		}
		return lcsSimilarity(lines1, lines2)
	case types.AlgoHamming:
		return hammingSimilarity(lines1, lines2)
	case types.AlgoNGram:
		return ngramSimilarity(joinLines(lines1), joinLines(lines2), 3)
	case types.AlgoTfIdf:
		return tfidfCosineSimilarity(lines1, lines2)
	default:
		return diffRatio
	}
}

func joinLines(lines []string) string { return strings.Join(lines, "\n") }

func tokenize(lines []string) []string {
	return strings.Fields(strings.ToLower(strings.Join(lines, " ")))
}

// jaccardTokenSimilarity: unique lowercased whitespace-split tokens.
// Ported from compare_text.rs::calculate_jaccard_similarity.
func jaccardTokenSimilarity(lines1, lines2 []string) float64 {
	s1 := toSet(tokenize(lines1))
	s2 := toSet(tokenize(lines2))
	if len(s1) == 0 && len(s2) == 0 {
		return 1.0
	}
	inter := 0
	for t := range s1 {
		if s2[t] {
			inter++
		}
	}
	union := len(s1) + len(s2) - inter
	if union == 0 {
		return 1.0
	}
	return float64(inter) / float64(union)
}

func toSet(tokens []string) map[string]bool {
	m := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		m[t] = true
	}
	return m
}

// cosineTokenSimilarity: term-frequency cosine similarity over word
// tokens. Ported from compare_text.rs::calculate_cosine_similarity.
func cosineTokenSimilarity(lines1, lines2 []string) float64 {
	f1 := termFreq(tokenize(lines1))
	f2 := termFreq(tokenize(lines2))
	if len(f1) == 0 && len(f2) == 0 {
		return 1.0
	}
	if len(f1) == 0 || len(f2) == 0 {
		return 0.0
	}

	var dot, mag1, mag2 float64
	for t, c1 := range f1 {
		dot += float64(c1) * float64(f2[t])
	}
	for _, c := range f1 {
		mag1 += float64(c) * float64(c)
	}
	for _, c := range f2 {
		mag2 += float64(c) * float64(c)
	}
	if mag1 == 0 || mag2 == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(mag1) * math.Sqrt(mag2))
}

func termFreq(tokens []string) map[string]int {
	m := make(map[string]int, len(tokens))
	for _, t := range tokens {
		m[t]++
	}
	return m
}

// tfidfCosineSimilarity: tf-idf weighted cosine similarity over the two
// documents being compared, idf = ln(2/df)+1 with df in {1,2}. Ported
// from compare_text.rs::calculate_tfidf_cosine_similarity.
func tfidfCosineSimilarity(lines1, lines2 []string) float64 {
	toks1 := tokenize(lines1)
	toks2 := tokenize(lines2)
	f1 := termFreq(toks1)
	f2 := termFreq(toks2)
	if len(f1) == 0 && len(f2) == 0 {
		return 1.0
	}

	vocab := make(map[string]bool)
	for t := range f1 {
		vocab[t] = true
	}
	for t := range f2 {
		vocab[t] = true
	}

	idf := func(term string) float64 {
		df := 0
		if f1[term] > 0 {
			df++
		}
		if f2[term] > 0 {
			df++
		}
		if df == 0 {
			return 0
		}
		return math.Log(2.0/float64(df)) + 1
	}

	var dot, mag1, mag2 float64
	for term := range vocab {
		w1 := float64(f1[term]) * idf(term)
		w2 := float64(f2[term]) * idf(term)
		dot += w1 * w2
		mag1 += w1 * w1
		mag2 += w2 * w2
	}
	if mag1 == 0 || mag2 == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(mag1) * math.Sqrt(mag2))
}

// levenshteinSimilarity: char-level edit distance normalized by the
// longer string's length.
func levenshteinSimilarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	d := levenshteinDistance(ra, rb)
	maxLen := max(len(ra), len(rb))
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(d)/float64(maxLen)
}

func levenshteinDistance(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// damerauLevenshteinSimilarity: restricted edit distance (optimal string
// alignment) including adjacent transpositions.
func damerauLevenshteinSimilarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	d := damerauLevenshteinDistance(ra, rb)
	maxLen := max(len(ra), len(rb))
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(d)/float64(maxLen)
}

func damerauLevenshteinDistance(a, b []rune) int {
	n, m := len(a), len(b)
	d := make([][]int, n+1)
	for i := range d {
		d[i] = make([]int, m+1)
		d[i][0] = i
	}
	for j := 0; j <= m; j++ {
		d[0][j] = j
	}
	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			d[i][j] = min3(d[i-1][j]+1, d[i][j-1]+1, d[i-1][j-1]+cost)
			if i > 1 && j > 1 && a[i-1] == b[j-2] && a[i-2] == b[j-1] {
				d[i][j] = min(d[i][j], d[i-2][j-2]+1)
			}
		}
	}
	return d[n][m]
}

// sorensenDiceSimilarity: character-bigram Sørensen-Dice coefficient.
func sorensenDiceSimilarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) < 2 && len(rb) < 2 {
		return 1.0
	}
	bg1 := bigramMultiset(ra)
	bg2 := bigramMultiset(rb)
	inter := 0
	for bg, c1 := range bg1 {
		if c2, ok := bg2[bg]; ok {
			inter += min(c1, c2)
		}
	}
	total := len(ra) - 1 + len(rb) - 1
	if total <= 0 {
		return 1.0
	}
	return 2.0 * float64(inter) / float64(total)
}

func bigramMultiset(r []rune) map[string]int {
	m := make(map[string]int)
	for i := 0; i+1 < len(r); i++ {
		m[string(r[i:i+2])]++
	}
	return m
}

// ngramSimilarity: character n-gram Jaccard similarity.
func ngramSimilarity(a, b string, n int) float64 {
	ra, rb := []rune(a), []rune(b)
	s1 := ngramSet(ra, n)
	s2 := ngramSet(rb, n)
	if len(s1) == 0 && len(s2) == 0 {
		return 1.0
	}
	inter := 0
	for g := range s1 {
		if s2[g] {
			inter++
		}
	}
	union := len(s1) + len(s2) - inter
	if union == 0 {
		return 1.0
	}
	return float64(inter) / float64(union)
}

func ngramSet(r []rune, n int) map[string]bool {
	m := make(map[string]bool)
	if len(r) < n {
		if len(r) > 0 {
			m[string(r)] = true
		}
		return m
	}
	for i := 0; i+n <= len(r); i++ {
		m[string(r[i:i+n])] = true
	}
	return m
}

// hammingSimilarity: positional equality over lines, normalized by the
// longer sequence's length.
func hammingSimilarity(lines1, lines2 []string) float64 {
	maxLen := max(len(lines1), len(lines2))
	if maxLen == 0 {
		return 1.0
	}
	matches := 0
	for i := 0; i < min(len(lines1), len(lines2)); i++ {
		if lines1[i] == lines2[i] {
			matches++
		}
	}
	return float64(matches) / float64(maxLen)
}

// lcsSimilarity: longest common subsequence over lines, space-optimized
// DP, normalized by the longer sequence's length.
func lcsSimilarity(lines1, lines2 []string) float64 {
	maxLen := max(len(lines1), len(lines2))
	if maxLen == 0 {
		return 1.0
	}
	return float64(lcsLength(lines1, lines2)) / float64(maxLen)
}

func lcsLength(a, b []string) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else {
				curr[j] = max(prev[j], curr[j-1])
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// smithWatermanSimilarity: local-alignment DP over lines with
// match/mismatch/gap scores, normalized against the best possible score
// for the shorter sequence. Ported from
// compare_text.rs::calculate_token_smith_waterman.
func smithWatermanSimilarity(lines1, lines2 []string) float64 {
	const matchScore = 2.0
	const mismatchScore = -1.0
	const gapScore = -1.0

	n, m := len(lines1), len(lines2)
	if n == 0 || m == 0 {
		if n == 0 && m == 0 {
			return 1.0
		}
		return 0.0
	}

	prev := make([]float64, m+1)
	curr := make([]float64, m+1)
	var best float64
	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			s := mismatchScore
			if lines1[i-1] == lines2[j-1] {
				s = matchScore
			}
			v := prev[j-1] + s
			v = math.Max(v, prev[j]+gapScore)
			v = math.Max(v, curr[j-1]+gapScore)
			v = math.Max(v, 0)
			curr[j] = v
			if v > best {
				best = v
			}
		}
		prev, curr = curr, prev
		for j := range curr {
			curr[j] = 0
		}
	}

	minLen := min(n, m)
	maxPossible := float64(minLen) * matchScore
	if maxPossible <= 0 {
		return 0.0
	}
	return math.Min(best/maxPossible, 1.0)
}

// jaroSimilarity computes the Jaro similarity (not Jaro-Winkler) between
// two strings.
func jaroSimilarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	la, lb := len(ra), len(rb)
	if la == 0 && lb == 0 {
		return 1.0
	}
	if la == 0 || lb == 0 {
		return 0.0
	}

	matchDist := max(la, lb)/2 - 1
	if matchDist < 0 {
		matchDist = 0
	}
	aMatched := make([]bool, la)
	bMatched := make([]bool, lb)

	matches := 0
	for i := 0; i < la; i++ {
		lo := max(0, i-matchDist)
		hi := min(lb-1, i+matchDist)
		for j := lo; j <= hi; j++ {
			if bMatched[j] || ra[i] != rb[j] {
				continue
			}
			aMatched[i] = true
			bMatched[j] = true
			matches++
			break
		}
	}
	if matches == 0 {
		return 0.0
	}

	var transpositions int
	k := 0
	for i := 0; i < la; i++ {
		if !aMatched[i] {
			continue
		}
		for !bMatched[k] {
			k++
		}
		if ra[i] != rb[k] {
			transpositions++
		}
		k++
	}

	m := float64(matches)
	t := float64(transpositions) / 2
	return (m/float64(la) + m/float64(lb) + (m-t)/m) / 3.0
}

func min3(a, b, c int) int { return min(a, min(b, c)) }

// sortedCopy is a small helper used by structured.go to avoid mutating
// caller-owned slices when sorting.
func sortedCopy(ss []string) []string {
	out := make([]string, len(ss))
	copy(out, ss)
	sort.Strings(out)
	return out
}
