package core

import "sync"

// RoundLimiter enforces a maximum number of model rounds per run. The
// original loop had no cap; the limiter is the safety valve against a model
// that never converges.
type RoundLimiter struct {
	max   int
	count int
	mu    sync.Mutex
}

// NewRoundLimiter creates a limiter allowing max rounds. If max == 0,
// unlimited rounds are allowed.
func NewRoundLimiter(max int) *RoundLimiter {
	return &RoundLimiter{max: max}
}

// Increment counts one round and returns ErrMaxRoundsExceeded past the limit.
func (rl *RoundLimiter) Increment() error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.count++
	if rl.max > 0 && rl.count > rl.max {
		return ErrMaxRoundsExceeded
	}

	return nil
}

// Count returns the number of rounds counted so far.
func (rl *RoundLimiter) Count() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	return rl.count
}

// Remaining returns how many rounds are left, or -1 when unlimited.
func (rl *RoundLimiter) Remaining() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.max == 0 {
		return -1
	}

	return rl.max - rl.count
}
