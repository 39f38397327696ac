package comparator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/foldertools/comparetree/internal/types"
)

func writeCSV(t *testing.T, dir, name, content string) *types.FileEntry {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return &types.FileEntry{Path: path, Type: types.FileCsv, Extension: "csv"}
}

// TestCompareStructuredMergeJoinOrdering exercises the sorted merge-join
// with keys arriving out of order on both sides and one side missing a
// record, matching the scenario compare_structured.rs's own merge-join
// ordering test covers.
func TestCompareStructuredMergeJoinOrdering(t *testing.T) {
	dir := t.TempDir()
	left := writeCSV(t, dir, "left.csv", "id,name,amount\n3,charlie,30\n1,alpha,10\n2,bravo,20\n")
	right := writeCSV(t, dir, "right.csv", "id,name,amount\n1,alpha,10\n2,bravo,25\n4,delta,40\n")

	pair := types.CandidatePair{Left: left, Right: right}
	cfg := types.DefaultCompareConfig()
	cfg.KeyColumns = []string{"id"}

	result, err := compareStructured(pair, cfg)
	if err != nil {
		t.Fatalf("compareStructured: %v", err)
	}

	if result.CommonRecords != 2 {
		t.Errorf("CommonRecords = %d, want 2 (ids 1,2)", result.CommonRecords)
	}
	if result.OnlyInFile1 != 1 {
		t.Errorf("OnlyInFile1 = %d, want 1 (id 3)", result.OnlyInFile1)
	}
	if result.OnlyInFile2 != 1 {
		t.Errorf("OnlyInFile2 = %d, want 1 (id 4)", result.OnlyInFile2)
	}
	if result.TotalFieldMismatches != 1 {
		t.Errorf("TotalFieldMismatches = %d, want 1 (amount differs for id 2)", result.TotalFieldMismatches)
	}
	if result.Identical {
		t.Error("expected a non-identical result")
	}
}

// TestKeyColumnSetExcludesEveryConfiguredColumn guards against only the
// first configured key column being excluded from field-mismatch
// comparison (compare_structured.rs:116 excludes every key column in a
// composite key, not just the first).
func TestKeyColumnSetExcludesEveryConfiguredColumn(t *testing.T) {
	set := keyColumnSet([]string{"region", "id", "amount"}, []string{"region", "id"})
	if !set["region"] || !set["id"] {
		t.Errorf("keyColumnSet = %v, want both region and id excluded", set)
	}
	if set["amount"] {
		t.Errorf("keyColumnSet = %v, want amount not excluded", set)
	}
}

func TestKeyColumnSetDefaultsToFirstHeaderColumn(t *testing.T) {
	set := keyColumnSet([]string{"id", "name"}, nil)
	if !set["id"] || set["name"] {
		t.Errorf("keyColumnSet(nil) = %v, want only id excluded", set)
	}
}

func TestCompareStructuredIdentical(t *testing.T) {
	dir := t.TempDir()
	left := writeCSV(t, dir, "left.csv", "id,val\n1,a\n2,b\n")
	right := writeCSV(t, dir, "right.csv", "id,val\n1,a\n2,b\n")

	pair := types.CandidatePair{Left: left, Right: right}
	cfg := types.DefaultCompareConfig()

	result, err := compareStructured(pair, cfg)
	if err != nil {
		t.Fatalf("compareStructured: %v", err)
	}
	if !result.Identical || result.Similarity != 1.0 {
		t.Errorf("expected identical result with similarity 1.0, got identical=%v similarity=%v", result.Identical, result.Similarity)
	}
}

func TestCompareStructuredColumnSetDiff(t *testing.T) {
	dir := t.TempDir()
	left := writeCSV(t, dir, "left.csv", "id,name,extra_left\n1,a,x\n")
	right := writeCSV(t, dir, "right.csv", "id,name,extra_right\n1,a,y\n")

	pair := types.CandidatePair{Left: left, Right: right}
	cfg := types.DefaultCompareConfig()

	result, err := compareStructured(pair, cfg)
	if err != nil {
		t.Fatalf("compareStructured: %v", err)
	}
	if len(result.ColumnsOnlyInFile1) != 1 || result.ColumnsOnlyInFile1[0] != "extra_left" {
		t.Errorf("ColumnsOnlyInFile1 = %v, want [extra_left]", result.ColumnsOnlyInFile1)
	}
	if len(result.ColumnsOnlyInFile2) != 1 || result.ColumnsOnlyInFile2[0] != "extra_right" {
		t.Errorf("ColumnsOnlyInFile2 = %v, want [extra_right]", result.ColumnsOnlyInFile2)
	}
}

func TestValuesEqualNumericTolerance(t *testing.T) {
	tests := []struct {
		v1, v2 string
		tol    float64
		want   bool
	}{
		{"1.0", "1.0", 0, true},
		{"1.0", "1.0001", 0.001, true},
		{"1.0", "1.1", 0.001, false},
		{"not-a-number", "also-not", 0.5, false},
		{"100", "100.00001", 0.0001, true},
	}
	for _, tt := range tests {
		if got := valuesEqual(tt.v1, tt.v2, tt.tol); got != tt.want {
			t.Errorf("valuesEqual(%q,%q,%v) = %v, want %v", tt.v1, tt.v2, tt.tol, got, tt.want)
		}
	}
}

func TestExcelCellToString(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"42.0", "42"},
		{"42.5", "42.5"},
		{"hello", "hello"},
		{"", ""},
		{"  padded  ", "padded"},
		{"1e10", "1e10"},
	}
	for _, tt := range tests {
		if got := excelCellToString(tt.raw); got != tt.want {
			t.Errorf("excelCellToString(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestJoinKeyMultiColumn(t *testing.T) {
	row := []string{"a", "b", "c"}
	got := joinKey(row, []int{0, 2})
	if got != "a|c" {
		t.Errorf("joinKey = %q, want %q", got, "a|c")
	}
}

func TestKeyColumnIndicesDefaultsToFirstColumn(t *testing.T) {
	idx := keyColumnIndices([]string{"id", "name"}, nil)
	if len(idx) != 1 || idx[0] != 0 {
		t.Errorf("keyColumnIndices(nil) = %v, want [0]", idx)
	}
}
