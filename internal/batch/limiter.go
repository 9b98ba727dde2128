package batch

// limiter.go bounds how many documents are generated at once.
//
// Each document task holds one slot from loading its roster until its
// output file is written. A queued task waits for as long as the run's
// context allows; waiting alone never fails it.

import (
	"context"
	"sync"
)

// DefaultMaxConcurrent is the slot count used when none is configured.
const DefaultMaxConcurrent = 4

// Limiter is a counting semaphore over document tasks.
type Limiter struct {
	slots chan struct{}

	mu     sync.Mutex
	active int
	peak   int
}

// NewLimiter creates a limiter with maxConcurrent slots.
func NewLimiter(maxConcurrent int) *Limiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	return &Limiter{slots: make(chan struct{}, maxConcurrent)}
}

// Acquire blocks until a slot is free or ctx is done. The caller must
// Release the slot when done.
func (l *Limiter) Acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	select {
	case l.slots <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.peak = max(l.peak, l.active)
		l.mu.Unlock()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns a slot taken by Acquire.
func (l *Limiter) Release() {
	l.mu.Lock()
	l.active--
	l.mu.Unlock()
	<-l.slots
}

// ActiveCount returns the number of slots in use.
func (l *Limiter) ActiveCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

// Available returns the number of free slots.
func (l *Limiter) Available() int {
	return cap(l.slots) - l.ActiveCount()
}

// LimiterStatus is a snapshot of slot usage.
type LimiterStatus struct {
	Active        int `json:"active"`
	Peak          int `json:"peak"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status returns the current slot usage.
func (l *Limiter) Status() LimiterStatus {
	l.mu.Lock()
	defer l.mu.Unlock()
	return LimiterStatus{Active: l.active, Peak: l.peak, MaxConcurrent: cap(l.slots)}
}
