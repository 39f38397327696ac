package types

import (
	"encoding/json"
	"testing"
)

func TestComparisonResultJSONRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   ComparisonResult
	}{
		{"text", NewTextResult(TextResult{
			File1Path: "a.txt", File2Path: "b.txt", LinkedID: "aaaa:bbbb",
			Identical: false, Similarity: 0.875, Algorithm: AlgoDiff,
			LinesCommon: 10, LinesOnlyLeft: 1, LinesOnlyRight: 2,
			DifferentPositions: "1-3,5",
		})},
		{"structured", NewStructuredResult(StructuredResult{
			File1Path: "a.csv", File2Path: "b.csv", LinkedID: "cccc:dddd",
			Identical: true, Similarity: 1.0,
			Records1Count: 5, Records2Count: 5, CommonRecords: 5,
		})},
		{"hash_only", NewHashOnlyResult(HashOnlyResult{
			File1Path: "a.bin", File2Path: "b.bin", LinkedID: "eeee:ffff",
			Identical: false, Hash1: "eeee", Hash2: "ffff",
		})},
		{"error", NewErrorResult(ErrorResult{
			File1Path: "a", File2Path: "b", Error: "boom",
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.in)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}

			var tag struct {
				Type ResultKind `json:"type"`
			}
			if err := json.Unmarshal(data, &tag); err != nil {
				t.Fatalf("unmarshal tag: %v", err)
			}
			if tag.Type != tt.in.Kind {
				t.Errorf("type tag = %q, want %q", tag.Type, tt.in.Kind)
			}

			var out ComparisonResult
			if err := json.Unmarshal(data, &out); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if out.Kind != tt.in.Kind {
				t.Errorf("Kind = %q, want %q", out.Kind, tt.in.Kind)
			}
			if out.LinkedID() != tt.in.LinkedID() {
				t.Errorf("LinkedID = %q, want %q", out.LinkedID(), tt.in.LinkedID())
			}
			if out.SimilarityScore() != tt.in.SimilarityScore() {
				t.Errorf("SimilarityScore = %v, want %v", out.SimilarityScore(), tt.in.SimilarityScore())
			}
			if out.IsIdentical() != tt.in.IsIdentical() {
				t.Errorf("IsIdentical = %v, want %v", out.IsIdentical(), tt.in.IsIdentical())
			}
		})
	}
}

func TestComparisonResultFilePaths(t *testing.T) {
	r := NewHashOnlyResult(HashOnlyResult{File1Path: "x", File2Path: "y"})
	f1, f2 := r.FilePaths()
	if f1 != "x" || f2 != "y" {
		t.Errorf("FilePaths() = %q, %q, want x, y", f1, f2)
	}
}

func TestCandidatePairLinkedID(t *testing.T) {
	p := CandidatePair{
		Left:  &FileEntry{ContentHash: "0123456789abcdef0000"},
		Right: &FileEntry{ContentHash: "fedc"},
	}
	want := "0123456789abcdef:fedc"
	if got := p.LinkedID(); got != want {
		t.Errorf("LinkedID() = %q, want %q", got, want)
	}
}

func TestSummarize(t *testing.T) {
	results := []ComparisonResult{
		NewHashOnlyResult(HashOnlyResult{Identical: true}),
		NewTextResult(TextResult{Identical: false, Similarity: 0.5}),
		NewTextResult(TextResult{Identical: false, Similarity: 0.9}),
		NewErrorResult(ErrorResult{Error: "oops"}),
	}

	s := Summarize(3, 4, results)
	if s.TotalFilesSet1 != 3 || s.TotalFilesSet2 != 4 {
		t.Errorf("file counts = %d, %d, want 3, 4", s.TotalFilesSet1, s.TotalFilesSet2)
	}
	if s.PairsCompared != 4 {
		t.Errorf("PairsCompared = %d, want 4", s.PairsCompared)
	}
	if s.IdenticalPairs != 1 || s.DifferentPairs != 2 || s.ErrorPairs != 1 {
		t.Errorf("identical=%d different=%d error=%d, want 1,2,1",
			s.IdenticalPairs, s.DifferentPairs, s.ErrorPairs)
	}
	if s.MinSimilarity != 0.5 || s.MaxSimilarity != 1.0 {
		t.Errorf("min=%v max=%v, want 0.5, 1.0", s.MinSimilarity, s.MaxSimilarity)
	}
	wantAvg := (1.0 + 0.5 + 0.9) / 3
	if diff := s.AverageSimilarity - wantAvg; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("AverageSimilarity = %v, want %v", s.AverageSimilarity, wantAvg)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(0, 0, nil)
	if s.PairsCompared != 0 || s.AverageSimilarity != 0 {
		t.Errorf("expected zero-value summary, got %+v", s)
	}
}
