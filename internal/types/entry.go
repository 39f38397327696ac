package types

import "time"

// FileType classifies a FileEntry for dispatch purposes. Classification is
// extension-first with a content sniff fallback (see internal/indexer).
type FileType string

const (
	FileText    FileType = "text"
	FileCsv     FileType = "csv"
	FileTsv     FileType = "tsv"
	FileExcel   FileType = "excel"
	FileBinary  FileType = "binary"
	FileUnknown FileType = "unknown"
)

// IsStructured reports whether t carries tabular records (columns/rows).
func (t FileType) IsStructured() bool {
	return t == FileCsv || t == FileTsv || t == FileExcel
}

// FileEntry describes one indexed file plus whatever fingerprint data has
// been computed for it so far. Fingerprint fields are zero/nil until
// internal/fingerprinter has run.
type FileEntry struct {
	Path    string    // absolute path on disk
	Rel     string    // path relative to the root it was indexed under
	Size    int64     // bytes
	ModTime time.Time

	Type      FileType
	Extension string // lowercased, without the leading dot

	// Populated only for FileCsv/FileTsv/FileExcel: header row read during
	// indexing (cheap, does not require a full fingerprint pass).
	Columns []string // nil for non-tabular files
	Lines   int64    // line count (text) or data-row count (tabular), streaming count

	// Populated by internal/fingerprinter.
	ContentHash     string  // hex, full-file hash
	SimHash         *uint64 // nil if not computed (binary, oversized, or structured-without-text)
	SchemaSignature string  // hex(16), empty if not tabular

	// IndexErr/FingerprintErr record a non-fatal per-entry failure (see
	// internal/types.IndexError / FingerprintError) without aborting the run.
	IndexErr       error
	FingerprintErr error
}
