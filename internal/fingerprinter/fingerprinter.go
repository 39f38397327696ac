// Package fingerprinter computes, for each indexed file, a content hash
// (exact-match detection), an optional 64-bit SimHash (near-duplicate
// text detection) and an optional schema signature (tabular column-set
// fingerprint). Every entry is independent — unlike the teacher's
// progressive-range verifier, there is no cross-entry state or early
// elimination, so fingerprinting is a flat parallel map rather than a
// job-queue with chunked follow-up work.
package fingerprinter

import (
	"bufio"
	"log"
	"os"
	"sync"

	"github.com/foldertools/comparetree/internal/progress"
	"github.com/foldertools/comparetree/internal/types"
)

// Fingerprinter computes fingerprints for a slice of FileEntry in place.
//
// Single-use: create with New(), call Run() once.
type Fingerprinter struct {
	entries []*types.FileEntry
	norm    types.NormalizationOptions
	maxSize int64
	workers int

	reporter progress.Reporter
	errCh    chan error
}

// New creates a Fingerprinter over entries.
func New(entries []*types.FileEntry, cfg types.CompareConfig, reporter progress.Reporter, errCh chan error) *Fingerprinter {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 8
	}
	return &Fingerprinter{
		entries:  entries,
		norm:     cfg.Normalization,
		maxSize:  cfg.MaxFingerprintSize,
		workers:  workers,
		reporter: reporter,
		errCh:    errCh,
	}
}

// Run computes fingerprints for every entry concurrently, bounded by a
// worker semaphore (the same primitive the teacher's scanner/verifier
// use), and mutates each FileEntry in place.
func (fp *Fingerprinter) Run() {
	sem := types.NewSemaphore(fp.workers)
	var wg sync.WaitGroup

	fp.reporter.Start(int64(len(fp.entries)), "fingerprinting")
	for _, e := range fp.entries {
		wg.Add(1)
		go func(e *types.FileEntry) {
			defer wg.Done()
			sem.Acquire()
			defer sem.Release()
			fp.computeOne(e)
			fp.reporter.Inc(1)
		}(e)
	}
	wg.Wait()
	fp.reporter.Finish("fingerprinting")
}

func (fp *Fingerprinter) computeOne(e *types.FileEntry) {
	hash, err := hashFile(e.Path)
	if err != nil {
		e.FingerprintErr = &types.FingerprintError{Path: e.Path, Err: err}
		fp.sendError(e.FingerprintErr)
		return
	}
	e.ContentHash = hash

	switch e.Type {
	case types.FileText:
		fp.computeSimHash(e)
	case types.FileCsv, types.FileTsv:
		e.SchemaSignature = schemaSignature(e.Columns)
		fp.computeSimHash(e)
	case types.FileExcel:
		// Excel bytes are a compressed container; a byte/line SimHash over
		// them is meaningless, so only the schema signature is computed.
		e.SchemaSignature = schemaSignature(e.Columns)
	case types.FileBinary, types.FileUnknown:
		// Content hash is all a binary/unknown file can offer.
	}
}

func (fp *Fingerprinter) computeSimHash(e *types.FileEntry) {
	if fp.maxSize > 0 && e.Size > fp.maxSize {
		log.Printf("fingerprinter: skipping simhash for %s (%d bytes > max %d)", e.Path, e.Size, fp.maxSize)
		return
	}

	lines, err := ReadLines(e.Path)
	if err != nil {
		e.FingerprintErr = &types.FingerprintError{Path: e.Path, Err: err}
		fp.sendError(e.FingerprintErr)
		return
	}
	h := ComputeSimHash(lines, fp.norm)
	e.SimHash = &h
}

func (fp *Fingerprinter) sendError(err error) {
	if fp.errCh != nil {
		fp.errCh <- err
	}
}

// ReadLines reads a file fully into memory as a line slice. Files large
// enough for this to matter are screened out earlier by maxFingerprintSize.
func ReadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
