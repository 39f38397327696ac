// Package comparator implements the dispatch and identity-shortcut logic
// from spec.md §4.6 plus the text-diff (text.go) and structured-join
// (structured.go, excel.go) backends from §4.4/§4.5.
//
// Run's worker-pool-over-independent-pairs shape is grounded on
// internal/verifier/verifier.go's job-queue/worker-pool pattern
// (ivoronin-dupedog), repurposed from hash confirmation to running a
// backend over each CandidatePair.
package comparator

import (
	"log"
	"sync"

	"github.com/foldertools/comparetree/internal/progress"
	"github.com/foldertools/comparetree/internal/types"
)

// Comparator runs the dispatch+backend logic over a slice of
// CandidatePairs.
//
// Single-use: create with New(), call Run() once.
type Comparator struct {
	pairs    []types.CandidatePair
	cfg      types.CompareConfig
	workers  int
	reporter progress.Reporter
	errCh    chan error
}

// New creates a Comparator over pairs.
func New(pairs []types.CandidatePair, cfg types.CompareConfig, reporter progress.Reporter, errCh chan error) *Comparator {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 8
	}
	return &Comparator{pairs: pairs, cfg: cfg, workers: workers, reporter: reporter, errCh: errCh}
}

// Run compares every pair concurrently, bounded by a worker semaphore,
// and returns one ComparisonResult per pair (order not guaranteed to
// match input order; callers that need stable ordering should sort by
// LinkedID afterward).
func (c *Comparator) Run() []types.ComparisonResult {
	sem := types.NewSemaphore(c.workers)
	var wg sync.WaitGroup
	resultsCh := make(chan types.ComparisonResult, len(c.pairs))

	c.reporter.Start(int64(len(c.pairs)), "comparing")
	for _, p := range c.pairs {
		wg.Add(1)
		go func(p types.CandidatePair) {
			defer wg.Done()
			sem.Acquire()
			defer sem.Release()
			resultsCh <- c.compareOne(p)
			c.reporter.Inc(1)
		}(p)
	}

	go func() {
		wg.Wait()
		close(resultsCh)
	}()

	var results []types.ComparisonResult
	for r := range resultsCh {
		results = append(results, r)
	}
	c.reporter.Finish("comparing")
	return results
}

// compareOne implements the dispatch logic of spec.md §4.6: an
// exact-hash shortcut first, then mode resolution, then the chosen
// backend, with backend failures wrapped as ErrorResult rather than
// aborting the run.
func (c *Comparator) compareOne(pair types.CandidatePair) types.ComparisonResult {
	left, right := pair.Left, pair.Right

	if pair.ExactHashMatch {
		return identicalResult(pair)
	}

	mode := c.cfg.Mode
	if mode == types.ModeAuto {
		mode = resolveAutoMode(left, right)
	}

	var err error
	var result types.ComparisonResult
	switch mode {
	case types.ModeStructured:
		var sr types.StructuredResult
		sr, err = compareStructured(pair, c.cfg)
		if err == nil {
			result = types.NewStructuredResult(sr)
		}
	default:
		if left.Type == types.FileBinary || right.Type == types.FileBinary {
			return hashOnlyResult(pair)
		}
		if limit := c.cfg.MaxFingerprintSize; limit > 0 && (left.Size > limit || right.Size > limit) {
			return hashOnlyResult(pair)
		}
		var tr types.TextResult
		tr, err = compareText(pair, c.cfg)
		if err == nil {
			result = types.NewTextResult(tr)
		}
	}

	if err != nil {
		compareErr := &types.CompareError{Path1: left.Path, Path2: right.Path, Err: err}
		c.sendError(compareErr)
		return types.NewErrorResult(types.ErrorResult{File1Path: left.Path, File2Path: right.Path, Error: compareErr.Error()})
	}
	return result
}

// resolveAutoMode picks Structured when both sides are tabular; Text
// otherwise. Binary sides are handled by the hash-only branch inside
// compareOne, after this resolution, per spec.md §4.6.
func resolveAutoMode(left, right *types.FileEntry) types.CompareMode {
	if left.Type.IsStructured() && right.Type.IsStructured() {
		return types.ModeStructured
	}
	return types.ModeText
}

// identicalResult builds the zero-mismatch variant for a content-hash
// match, matching create_identical_result's dispatch on file type.
func identicalResult(pair types.CandidatePair) types.ComparisonResult {
	left, right := pair.Left, pair.Right

	if left.Type == types.FileBinary || right.Type == types.FileBinary {
		return hashOnlyResult(pair)
	}
	if left.Type.IsStructured() && right.Type.IsStructured() {
		return types.NewStructuredResult(types.StructuredResult{
			File1Path: left.Path, File2Path: right.Path, LinkedID: pair.LinkedID(),
			Identical: true, Similarity: 1.0,
			Records1Count: int(left.Lines), Records2Count: int(right.Lines),
			CommonRecords: int(left.Lines),
		})
	}
	return types.NewTextResult(types.TextResult{
		File1Path: left.Path, File2Path: right.Path, LinkedID: pair.LinkedID(),
		Identical: true, Similarity: 1.0, Algorithm: types.AlgoDiff,
		LinesCommon: int(left.Lines),
	})
}

func hashOnlyResult(pair types.CandidatePair) types.ComparisonResult {
	left, right := pair.Left, pair.Right
	return types.NewHashOnlyResult(types.HashOnlyResult{
		File1Path: left.Path, File2Path: right.Path, LinkedID: pair.LinkedID(),
		Identical: left.ContentHash != "" && left.ContentHash == right.ContentHash,
		Hash1:     left.ContentHash, Hash2: right.ContentHash,
	})
}

func (c *Comparator) sendError(err error) {
	if c.errCh != nil {
		c.errCh <- err
	} else {
		log.Print(err)
	}
}
