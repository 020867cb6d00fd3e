// Package testutil holds deterministic fixtures shared by tests and the
// scenario harness: a logical clock for entry dates and owner keypairs
// derived from names.
package testutil

import "sync"

// DeterministicClock hands out Unix-second entry dates one second apart.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type DeterministicClock struct {
	mu    sync.Mutex
	start int64
	now   int64
}

// NewDeterministicClock creates a clock whose first Next() returns start+1.
func NewDeterministicClock(start int64) *DeterministicClock {
	return &DeterministicClock{start: start, now: start}
}

// Next advances the clock one second and returns the new time.
func (c *DeterministicClock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now++
	return c.now
}

// Current returns the last value handed out (start if none).
func (c *DeterministicClock) Current() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Reset rewinds the clock to its start.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.start
}
