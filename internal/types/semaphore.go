// Package types holds the data model shared across every pipeline stage:
// FileEntry, CandidatePair, ComparisonResult and friends, plus a couple of
// small concurrency primitives reused by every stage's worker pool.
package types

// Semaphore implements a counting semaphore using a buffered channel.
// It limits concurrent access to a resource by blocking when the limit is
// reached.
type Semaphore chan struct{}

// NewSemaphore creates a semaphore that allows up to n concurrent
// acquisitions. n <= 0 is treated as 1.
func NewSemaphore(n int) Semaphore {
	if n <= 0 {
		n = 1
	}
	return make(chan struct{}, n)
}

// Acquire blocks until a slot is available, then claims it.
func (s Semaphore) Acquire() { s <- struct{}{} }

// Release frees a slot, unblocking one waiting Acquire call.
func (s Semaphore) Release() { <-s }
