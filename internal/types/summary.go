package types

// ComparisonSummary aggregates a run's results (spec.md §3).
type ComparisonSummary struct {
	TotalFilesSet1 int `json:"total_files_set1"`
	TotalFilesSet2 int `json:"total_files_set2"`
	PairsCompared  int `json:"pairs_compared"`
	IdenticalPairs int `json:"identical_pairs"`
	DifferentPairs int `json:"different_pairs"`
	ErrorPairs     int `json:"error_pairs"`

	AverageSimilarity float64 `json:"average_similarity"`
	MinSimilarity     float64 `json:"min_similarity"`
	MaxSimilarity     float64 `json:"max_similarity"`
}

// Summarize computes a ComparisonSummary over a completed result set.
func Summarize(filesSet1, filesSet2 int, results []ComparisonResult) ComparisonSummary {
	s := ComparisonSummary{
		TotalFilesSet1: filesSet1,
		TotalFilesSet2: filesSet2,
		PairsCompared:  len(results),
	}

	var sum float64
	first := true
	for _, r := range results {
		if r.Kind == KindError {
			s.ErrorPairs++
			continue
		}
		if r.IsIdentical() {
			s.IdenticalPairs++
		} else {
			s.DifferentPairs++
		}
		sim := r.SimilarityScore()
		sum += sim
		if first {
			s.MinSimilarity, s.MaxSimilarity = sim, sim
			first = false
		} else {
			if sim < s.MinSimilarity {
				s.MinSimilarity = sim
			}
			if sim > s.MaxSimilarity {
				s.MaxSimilarity = sim
			}
		}
	}

	scored := s.IdenticalPairs + s.DifferentPairs
	if scored > 0 {
		s.AverageSimilarity = sum / float64(scored)
	}
	return s
}
