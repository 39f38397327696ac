package exporter

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/foldertools/comparetree/internal/pipeline"
	"github.com/foldertools/comparetree/internal/types"
)

func TestNewRunDirLayout(t *testing.T) {
	base := t.TempDir()
	dir, err := NewRunDir(base)
	if err != nil {
		t.Fatalf("NewRunDir: %v", err)
	}

	for _, sub := range []string{"", "artifacts/patches", "artifacts/mismatches"} {
		if info, err := os.Stat(filepath.Join(dir, sub)); err != nil || !info.IsDir() {
			t.Errorf("expected directory %q to exist", filepath.Join(dir, sub))
		}
	}
}

func TestExportWritesJSONLAndSummary(t *testing.T) {
	base := t.TempDir()
	dir, err := NewRunDir(base)
	if err != nil {
		t.Fatalf("NewRunDir: %v", err)
	}

	results := []types.ComparisonResult{
		types.NewTextResult(types.TextResult{
			File1Path: "a.txt", File2Path: "b.txt", LinkedID: "aaaa:bbbb",
			Identical: false, Similarity: 0.5,
			DetailedDiff: "-old\n+new\n", UnifiedDiff: "--- a.txt\n+++ b.txt\n-old\n+new\n",
		}),
		types.NewStructuredResult(types.StructuredResult{
			File1Path: "a.csv", File2Path: "b.csv", LinkedID: "cccc:dddd",
			Identical: false,
			ColumnMismatches: []types.ColumnMismatch{
				{Column: "amount", MismatchCount: 1, Samples: []types.FieldMismatch{{Key: "1", Value1: "10", Value2: "20"}}},
			},
		}),
	}
	result := &pipeline.Result{
		Results: results,
		Summary: types.Summarize(2, 2, results),
	}

	if err := Export(dir, result); err != nil {
		t.Fatalf("Export: %v", err)
	}

	jsonlPath := filepath.Join(dir, "results.jsonl")
	data, err := os.ReadFile(jsonlPath)
	if err != nil {
		t.Fatalf("reading results.jsonl: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("results.jsonl is empty")
	}

	lines := splitNonEmptyLines(string(data))
	if len(lines) != 2 {
		t.Fatalf("got %d JSONL lines, want 2", len(lines))
	}
	var decoded types.ComparisonResult
	if err := json.Unmarshal([]byte(lines[0]), &decoded); err != nil {
		t.Fatalf("decoding first JSONL line: %v", err)
	}
	if decoded.Kind != types.KindText {
		t.Errorf("decoded.Kind = %v, want %v", decoded.Kind, types.KindText)
	}

	summaryPath := filepath.Join(dir, "summary.csv")
	if info, err := os.Stat(summaryPath); err != nil || info.Size() == 0 {
		t.Error("expected a non-empty summary.csv")
	}

	diffPath := filepath.Join(dir, "artifacts", "patches", "aaaa_bbbb.diff")
	if _, err := os.Stat(diffPath); err != nil {
		t.Errorf("expected a diff artifact at %s: %v", diffPath, err)
	}

	mismatchPath := filepath.Join(dir, "artifacts", "mismatches", "cccc_dddd.json")
	if _, err := os.Stat(mismatchPath); err != nil {
		t.Errorf("expected a mismatch artifact at %s: %v", mismatchPath, err)
	}
}

func TestExportSkipsArtifactsForIdenticalPairs(t *testing.T) {
	base := t.TempDir()
	dir, err := NewRunDir(base)
	if err != nil {
		t.Fatalf("NewRunDir: %v", err)
	}

	results := []types.ComparisonResult{
		types.NewTextResult(types.TextResult{File1Path: "a.txt", File2Path: "b.txt", LinkedID: "ffff:ffff", Identical: true, Similarity: 1.0}),
	}
	result := &pipeline.Result{Results: results, Summary: types.Summarize(1, 1, results)}

	if err := Export(dir, result); err != nil {
		t.Fatalf("Export: %v", err)
	}

	diffPath := filepath.Join(dir, "artifacts", "patches", "ffff_ffff.diff")
	if _, err := os.Stat(diffPath); !os.IsNotExist(err) {
		t.Errorf("expected no diff artifact for an identical pair, stat err = %v", err)
	}
}

func TestSanitizeLinkedID(t *testing.T) {
	got := sanitizeLinkedID(`a/b\c:d*e?f"g<h>i|j`)
	want := "a_b_c_d_e_f_g_h_i_j"
	if got != want {
		t.Errorf("sanitizeLinkedID = %q, want %q", got, want)
	}
}

func splitNonEmptyLines(s string) []string {
	var out []string
	start := 0
	for i, c := range s {
		if c == '\n' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}
