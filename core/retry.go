package core

import "sync"

// RetryTracker holds per-tool retry counters for a single run. Keeping the
// counters here instead of on shared tool definitions keeps concurrent runs
// of one agent instance independent. Safe for concurrent use: a model turn
// may dispatch its calls in parallel.
type RetryTracker struct {
	mu     sync.Mutex
	counts map[string]int
}

// NewRetryTracker returns a tracker with all counters at zero.
func NewRetryTracker() *RetryTracker {
	return &RetryTracker{counts: make(map[string]int)}
}

// Increment bumps the counter for name and returns the new value.
func (t *RetryTracker) Increment(name string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.counts[name]++
	return t.counts[name]
}

// Count returns the current counter for name.
func (t *RetryTracker) Count(name string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counts[name]
}

// Reset zeroes the counter for name. Called after a successful invocation.
func (t *RetryTracker) Reset(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.counts[name] = 0
}
