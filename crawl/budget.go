package crawl

import "sync"

// FailureBudget tracks the outcome of the most recent fetch attempts in a
// sliding window. When the window is full and the failure rate exceeds the
// threshold, the crawl should abort rather than keep hammering a dead site.
// It is safe for concurrent use.
type FailureBudget struct {
	mu        sync.Mutex
	window    []bool // true marks a failure
	next      int
	filled    int
	failures  int
	threshold float64
}

// NewFailureBudget creates a budget over the last size attempts with the
// given failure-rate threshold in (0, 1]. A size of zero disables the
// budget entirely.
func NewFailureBudget(size int, threshold float64) *FailureBudget {
	b := &FailureBudget{threshold: threshold}
	if size > 0 {
		b.window = make([]bool, size)
	}
	return b
}

// Record adds one fetch outcome to the window.
func (b *FailureBudget) Record(failed bool) {
	if b.window == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.filled == len(b.window) {
		if b.window[b.next] {
			b.failures--
		}
	} else {
		b.filled++
	}
	b.window[b.next] = failed
	if failed {
		b.failures++
	}
	b.next = (b.next + 1) % len(b.window)
}

// Exceeded reports whether the window is full and the failure rate is
// above the threshold.
func (b *FailureBudget) Exceeded() bool {
	if b.window == nil {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.filled < len(b.window) {
		return false
	}
	return float64(b.failures)/float64(len(b.window)) > b.threshold
}
