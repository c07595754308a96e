// Package testutils provides deterministic generators for reproducible
// sessions. Tests and the stub backend's test mode use them in place of random
// UUIDs and the wall clock so that transcripts and golden output stay stable.
package testutils

import (
	"fmt"
	"sync"
	"time"
)

// BaseTime is the instant before the first Clock tick.
var BaseTime = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// Sequence yields deterministic ids in UUID v4 layout.
type Sequence struct {
	mu sync.Mutex
	n  uint64
}

// NewSequence creates a sequence starting at 1.
func NewSequence() *Sequence {
	return &Sequence{}
}

// UUID returns the next id: 00000001-0000-4000-8000-000000000001,
// 00000002-0000-4000-8000-000000000002 and so on.
func (s *Sequence) UUID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.n++
	// xxxxxxxx-xxxx-4xxx-8xxx-xxxxxxxxxxxx
	return fmt.Sprintf("%08x-0000-4000-8000-%012x", s.n, s.n)
}

// Reset restarts the sequence.
func (s *Sequence) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n = 0
}

// Clock is a fake clock advancing one second per reading.
type Clock struct {
	mu sync.Mutex
	n  int64
}

// NewClock creates a clock whose first reading is BaseTime plus one second.
func NewClock() *Clock {
	return &Clock{}
}

// Now returns the next instant.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.n++
	return BaseTime.Add(time.Duration(c.n) * time.Second)
}

// Reset restarts the clock.
func (c *Clock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n = 0
}
