// Package progress provides a small stage-based progress-reporting bus,
// decoupled from any particular UI. It generalizes the teacher's
// enabled/disabled progressbar wrapper into the Reporter interface
// spec.md §9 asks for, so the pipeline can run headless (no-op), under a
// terminal bar, or — in principle — behind any other sink.
package progress

import (
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

const updateInterval = 50 * time.Millisecond

// Reporter is the progress-bus contract every pipeline stage reports
// through: Start once per stage, Inc as units complete, Finish once the
// stage is done.
type Reporter interface {
	Start(total int64, label string)
	Inc(delta int64)
	Finish(label string)
}

// Noop discards every event. It is used when --quiet is given, and by
// pipeline.New when no reporter is passed.
type Noop struct{}

func (Noop) Start(int64, string) {}
func (Noop) Inc(int64)           {}
func (Noop) Finish(string)       {}

// Bar reports progress through a terminal bar (or spinner, for
// indeterminate totals), wrapping github.com/schollz/progressbar/v3
// exactly as the teacher's internal/progress.Bar does.
type Bar struct {
	bar *progressbar.ProgressBar
}

// NewBar constructs a Bar. Calling Start with total<0 selects spinner
// mode (unknown total).
func NewBar() *Bar { return &Bar{} }

func (b *Bar) Start(total int64, label string) {
	opts := []progressbar.Option{
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionThrottle(updateInterval),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetDescription(label),
	}
	if total < 0 {
		opts = append(opts,
			progressbar.OptionSpinnerType(14),
			progressbar.OptionSetElapsedTime(false),
		)
		b.bar = progressbar.NewOptions64(-1, opts...)
		return
	}
	opts = append(opts, progressbar.OptionSetWidth(40))
	b.bar = progressbar.NewOptions64(total, opts...)
}

func (b *Bar) Inc(delta int64) {
	if b.bar != nil {
		_ = b.bar.Add64(delta)
	}
}

func (b *Bar) Finish(label string) {
	if b.bar != nil {
		_ = b.bar.Finish()
		fmt.Fprintln(os.Stderr, "done: "+label)
		b.bar = nil
	}
}
