// Package pipeline orchestrates the four comparison stages end to end:
// Indexer -> Fingerprinter -> Matcher -> Comparator -> summary.
//
// The stage-chaining shape (one stage's output feeds the next, errors
// drained off a shared channel by a background goroutine) is grounded on
// cmd/dupedog/dedupe.go's runDedupe / drainErrors
// (scanner -> screener -> verifier -> deduper). The explicit state
// machine in state.go and the overall Run() contract are grounded on
// original_source/src/lib.rs's ComparisonEngine.run.
package pipeline

import (
	"fmt"

	"github.com/foldertools/comparetree/internal/comparator"
	"github.com/foldertools/comparetree/internal/fingerprinter"
	"github.com/foldertools/comparetree/internal/indexer"
	"github.com/foldertools/comparetree/internal/matcher"
	"github.com/foldertools/comparetree/internal/progress"
	"github.com/foldertools/comparetree/internal/types"
)

// Engine runs one comparison between two root paths under a fixed
// configuration.
type Engine struct {
	Config   types.CompareConfig
	Reporter progress.Reporter

	state  State
	Errors []error // non-fatal errors accumulated over the whole run
}

// New creates an Engine. If reporter is nil, progress.Noop{} is used.
func New(cfg types.CompareConfig, reporter progress.Reporter) *Engine {
	if reporter == nil {
		reporter = progress.Noop{}
	}
	return &Engine{Config: cfg, Reporter: reporter, state: StateNew}
}

// Result is the full output of one run: every comparison plus the
// aggregate summary.
type Result struct {
	Results []types.ComparisonResult
	Summary types.ComparisonSummary
}

// Run executes the full pipeline over path1 and path2.
func (e *Engine) Run(path1, path2 string) (*Result, error) {
	errCh := make(chan error, 1000)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for err := range errCh {
			e.Errors = append(e.Errors, err)
		}
	}()
	defer func() {
		close(errCh)
		<-done
	}()

	e.state = StateIndexing
	left, err := indexer.New(path1, e.Config, e.Reporter, errCh).Run()
	if err != nil {
		e.state = StateFailed
		return nil, fmt.Errorf("indexing %s: %w", path1, err)
	}
	right, err := indexer.New(path2, e.Config, e.Reporter, errCh).Run()
	if err != nil {
		e.state = StateFailed
		return nil, fmt.Errorf("indexing %s: %w", path2, err)
	}

	e.state = StateFingerprinting
	fingerprinter.New(left, e.Config, e.Reporter, errCh).Run()
	fingerprinter.New(right, e.Config, e.Reporter, errCh).Run()

	e.state = StateMatching
	pairs := matcher.New(left, right, e.Config, e.Reporter).Run()

	e.state = StateComparing
	results := comparator.New(pairs, e.Config, e.Reporter, errCh).Run()

	e.state = StateSummarising
	summary := types.Summarize(len(left), len(right), results)

	e.state = StateDone
	return &Result{Results: results, Summary: summary}, nil
}

// State reports the engine's current position in the state machine.
func (e *Engine) State() State { return e.state }
