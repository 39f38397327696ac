package fingerprinter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/foldertools/comparetree/internal/progress"
	"github.com/foldertools/comparetree/internal/types"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestFingerprinterContentHash(t *testing.T) {
	dir := t.TempDir()
	p1 := filepath.Join(dir, "a.txt")
	p2 := filepath.Join(dir, "b.txt")
	writeFile(t, p1, "identical content\n")
	writeFile(t, p2, "identical content\n")

	entries := []*types.FileEntry{
		{Path: p1, Rel: "a.txt", Type: types.FileText, Size: 18},
		{Path: p2, Rel: "b.txt", Type: types.FileText, Size: 18},
	}

	cfg := types.DefaultCompareConfig()
	New(entries, cfg, progress.Noop{}, nil).Run()

	if entries[0].ContentHash == "" {
		t.Fatal("ContentHash not set")
	}
	if entries[0].ContentHash != entries[1].ContentHash {
		t.Errorf("identical files got different hashes: %q vs %q", entries[0].ContentHash, entries[1].ContentHash)
	}
	if entries[0].SimHash == nil {
		t.Error("SimHash not computed for text entry")
	}
}

func TestFingerprinterSkipsSimHashAboveMaxSize(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "big.txt")
	writeFile(t, p, "some content that is a bit longer than the cap\n")

	entries := []*types.FileEntry{{Path: p, Rel: "big.txt", Type: types.FileText, Size: 48}}

	cfg := types.DefaultCompareConfig()
	cfg.MaxFingerprintSize = 10
	New(entries, cfg, progress.Noop{}, nil).Run()

	if entries[0].ContentHash == "" {
		t.Error("ContentHash should still be computed above the fingerprint size cap")
	}
	if entries[0].SimHash != nil {
		t.Error("SimHash should be skipped above the fingerprint size cap")
	}
}

func TestFingerprinterCsvSchemaSignature(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "data.csv")
	writeFile(t, p, "id,name\n1,a\n")

	entries := []*types.FileEntry{{
		Path: p, Rel: "data.csv", Type: types.FileCsv, Size: 12,
		Columns: []string{"id", "name"},
	}}

	cfg := types.DefaultCompareConfig()
	New(entries, cfg, progress.Noop{}, nil).Run()

	if entries[0].SchemaSignature == "" {
		t.Error("SchemaSignature not computed for csv entry")
	}
}

func TestFingerprinterErrorOnMissingFile(t *testing.T) {
	entries := []*types.FileEntry{{Path: "/nonexistent/path/x.txt", Rel: "x.txt", Type: types.FileText}}
	errCh := make(chan error, 4)

	cfg := types.DefaultCompareConfig()
	New(entries, cfg, progress.Noop{}, errCh).Run()

	if entries[0].FingerprintErr == nil {
		t.Error("expected FingerprintErr for missing file")
	}
	select {
	case err := <-errCh:
		if err == nil {
			t.Error("expected non-nil error on channel")
		}
	default:
		t.Error("expected an error to be sent on errCh")
	}
}

func TestReadLines(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "lines.txt")
	writeFile(t, p, "one\ntwo\nthree\n")

	lines, err := ReadLines(p)
	if err != nil {
		t.Fatalf("ReadLines: %v", err)
	}
	want := []string{"one", "two", "three"}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d", len(lines), len(want))
	}
	for i, w := range want {
		if lines[i] != w {
			t.Errorf("line %d = %q, want %q", i, lines[i], w)
		}
	}
}
