package indexer

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/foldertools/comparetree/internal/progress"
	"github.com/foldertools/comparetree/internal/types"
)

func TestExtension(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"a.txt", "txt"},
		{"a.TXT", "txt"},
		{"archive.tar.gz", "gz"},
		{"noext", ""},
		{".hidden", "hidden"},
	}
	for _, tt := range tests {
		if got := extension(tt.name); got != tt.want {
			t.Errorf("extension(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestSniffText(t *testing.T) {
	tests := []struct {
		name   string
		sample []byte
		want   bool
	}{
		{"empty", nil, true},
		{"plain ascii", []byte("hello\nworld\n"), true},
		{"nul byte", []byte("hello\x00world"), false},
		{"mostly binary", []byte{0x01, 0x02, 0x03, 0x04, 0x05, 'a'}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sniffText(tt.sample); got != tt.want {
				t.Errorf("sniffText(%q) = %v, want %v", tt.sample, got, tt.want)
			}
		})
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestIndexerClassifiesByExtension(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "notes.txt"), "line one\nline two\n")
	writeFile(t, filepath.Join(root, "data.csv"), "id,name\n1,a\n2,b\n")
	writeFile(t, filepath.Join(root, "photo.bin"), "\x00\x01\x02binary\x00")

	cfg := types.DefaultCompareConfig()
	cfg.Workers = 2
	errCh := make(chan error, 16)

	entries, err := New(root, cfg, progress.Noop{}, errCh).Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}

	byRel := map[string]*types.FileEntry{}
	for _, e := range entries {
		byRel[e.Rel] = e
	}

	if byRel["notes.txt"].Type != types.FileText {
		t.Errorf("notes.txt classified as %v, want text", byRel["notes.txt"].Type)
	}
	if byRel["notes.txt"].Lines != 2 {
		t.Errorf("notes.txt Lines = %d, want 2", byRel["notes.txt"].Lines)
	}
	if byRel["data.csv"].Type != types.FileCsv {
		t.Errorf("data.csv classified as %v, want csv", byRel["data.csv"].Type)
	}
	if got := byRel["data.csv"].Columns; len(got) != 2 || got[0] != "id" || got[1] != "name" {
		t.Errorf("data.csv Columns = %v, want [id name]", got)
	}
	if byRel["data.csv"].Lines != 2 {
		t.Errorf("data.csv Lines = %d, want 2 data rows", byRel["data.csv"].Lines)
	}
}

func TestIndexerMinSizeFilter(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "small.txt"), "x")
	writeFile(t, filepath.Join(root, "big.txt"), "this file is considerably longer than small.txt")

	cfg := types.DefaultCompareConfig()
	cfg.MinSize = 10
	errCh := make(chan error, 16)

	entries, err := New(root, cfg, progress.Noop{}, errCh).Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(entries) != 1 || entries[0].Rel != "big.txt" {
		t.Fatalf("expected only big.txt, got %v", relNames(entries))
	}
}

func TestIndexerExcludeGlob(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "keep.txt"), "keep me")
	writeFile(t, filepath.Join(root, "vendor", "dep.txt"), "excluded")
	writeFile(t, filepath.Join(root, "build", "out.log"), "excluded")

	cfg := types.DefaultCompareConfig()
	cfg.ExcludePatterns = []string{"vendor/**", "**/*.log"}
	errCh := make(chan error, 16)

	entries, err := New(root, cfg, progress.Noop{}, errCh).Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	names := relNames(entries)
	if len(names) != 1 || names[0] != "keep.txt" {
		t.Fatalf("expected only keep.txt, got %v", names)
	}
}

func TestIndexerSingleFileRoot(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "single.txt")
	writeFile(t, path, "one\ntwo\nthree\n")

	cfg := types.DefaultCompareConfig()
	errCh := make(chan error, 16)

	entries, err := New(path, cfg, progress.Noop{}, errCh).Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1 for a single-file root", len(entries))
	}
	if entries[0].Type != types.FileText || entries[0].Lines != 3 {
		t.Errorf("unexpected entry for single-file root: %+v", entries[0])
	}
}

func TestIndexerMissingRootIsFatal(t *testing.T) {
	cfg := types.DefaultCompareConfig()
	errCh := make(chan error, 16)

	_, err := New(filepath.Join(t.TempDir(), "does-not-exist"), cfg, progress.Noop{}, errCh).Run()
	if err == nil {
		t.Fatal("expected an error for a missing root")
	}
	var setupErr *types.SetupError
	if !errors.As(err, &setupErr) {
		t.Errorf("expected a *types.SetupError, got %T: %v", err, err)
	}
}

func relNames(entries []*types.FileEntry) []string {
	var out []string
	for _, e := range entries {
		out = append(out, e.Rel)
	}
	sort.Strings(out)
	return out
}
