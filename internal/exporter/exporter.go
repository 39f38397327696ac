// Package exporter writes a comparison run's results to disk: the JSONL
// result stream, per-pair diff/mismatch artifacts, and a summary.csv.
//
// Run-directory creation and the "drain errors, keep going" posture are
// grounded on cmd/dupedog/dedupe.go's drainErrors and
// internal/deduper/deduper.go's atomic temp-file-then-rename write
// pattern (adapted here for writing plain files rather than hardlinks).
// The <8hex> run-id suffix and JSONL/artifact layout are ported from
// original_source/src/lib.rs's generate_run_id / export_all.
//
// HTML report rendering is intentionally not implemented here: spec.md
// §1 names it an external collaborator, and no HTML/templating library
// appears anywhere in the retrieved example pack to ground one on.
package exporter

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/foldertools/comparetree/internal/pipeline"
	"github.com/foldertools/comparetree/internal/types"
)

// NewRunDir creates and returns a fresh run directory under baseDir,
// named YYYYMMDD_HHMMSS_<8hex> (spec.md §6).
func NewRunDir(baseDir string) (string, error) {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	runID := types.RunID(time.Now(), suffix)
	dir := filepath.Join(baseDir, runID)

	for _, sub := range []string{"", "artifacts/patches", "artifacts/mismatches"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return "", &types.SetupError{Op: "create run directory", Err: err}
		}
	}
	return dir, nil
}

// Export writes results.jsonl, summary.csv, and per-pair artifacts
// (unified diffs for text mismatches, mismatch JSON for structured
// mismatches) into runDir.
func Export(runDir string, result *pipeline.Result) error {
	if err := writeJSONL(filepath.Join(runDir, "results.jsonl"), result.Results); err != nil {
		return err
	}
	if err := writeSummaryCSV(filepath.Join(runDir, "summary.csv"), result.Results); err != nil {
		return err
	}
	for _, r := range result.Results {
		if err := writeArtifacts(runDir, r); err != nil {
			return err
		}
	}
	return nil
}

func writeJSONL(path string, results []types.ComparisonResult) error {
	return atomicWrite(path, func(f *os.File) error {
		enc := json.NewEncoder(f)
		for _, r := range results {
			if err := enc.Encode(r); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeSummaryCSV(path string, results []types.ComparisonResult) error {
	return atomicWrite(path, func(f *os.File) error {
		w := csv.NewWriter(f)
		defer w.Flush()
		if err := w.Write([]string{"file1", "file2", "type", "identical", "similarity", "linked_id"}); err != nil {
			return err
		}
		for _, r := range results {
			f1, f2 := r.FilePaths()
			row := []string{
				f1, f2, string(r.Kind),
				strconv.FormatBool(r.IsIdentical()),
				strconv.FormatFloat(r.SimilarityScore(), 'f', 4, 64),
				r.LinkedID(),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// unsafeFilenameChars replaces filesystem-unsafe characters in a
// LinkedID (which contains ":") before it's used as an artifact file
// name stem (spec.md §6).
var unsafeFilenameChars = strings.NewReplacer(
	"/", "_", `\`, "_", ":", "_", "*", "_", "?", "_", `"`, "_", "<", "_", ">", "_", "|", "_",
)

func sanitizeLinkedID(id string) string {
	return unsafeFilenameChars.Replace(id)
}

func writeArtifacts(runDir string, r types.ComparisonResult) error {
	switch r.Kind {
	case types.KindText:
		if r.Text.Identical || r.Text.DetailedDiff == "" {
			return nil
		}
		path := filepath.Join(runDir, "artifacts", "patches", sanitizeLinkedID(r.Text.LinkedID)+".diff")
		return atomicWrite(path, func(f *os.File) error {
			_, err := f.WriteString(r.Text.UnifiedDiff)
			return err
		})
	case types.KindStructured:
		if r.Structured.Identical || len(r.Structured.ColumnMismatches) == 0 {
			return nil
		}
		path := filepath.Join(runDir, "artifacts", "mismatches", sanitizeLinkedID(r.Structured.LinkedID)+".json")
		return atomicWrite(path, func(f *os.File) error {
			enc := json.NewEncoder(f)
			enc.SetIndent("", "  ")
			return enc.Encode(r.Structured.ColumnMismatches)
		})
	}
	return nil
}

// atomicWrite writes to a temp file in the same directory and renames it
// into place, matching the teacher's deduper atomic-write pattern — a
// crash mid-write never leaves a truncated artifact behind.
func atomicWrite(path string, write func(*os.File) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}
