package httpx

import (
	"context"
	"sync"
	"time"
)

// LowWaterMark is the remaining-quota threshold below which the client
// proactively waits for the quota window to reset instead of risking a 429.
const LowWaterMark = 100

// RateLimitState tracks the remote API's request quota. It is the only
// mutable state shared across concurrent operations: all access goes
// through the mutex, and decisions are read-before-write so two concurrent
// requests cannot both conclude quota is sufficient when it is not.
type RateLimitState struct {
	mu        sync.Mutex
	remaining int
	resetAt   time.Time
	known     bool

	clock func() time.Time
}

// NewRateLimitState builds a tracker. A nil clock uses time.Now.
func NewRateLimitState(clock func() time.Time) *RateLimitState {
	if clock == nil {
		clock = time.Now
	}
	return &RateLimitState{clock: clock}
}

// Update records the quota headers from a response.
func (s *RateLimitState) Update(remaining int, resetAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remaining = remaining
	s.resetAt = resetAt
	s.known = true
}

// Snapshot returns the current quota view. known is false until the first
// response has been observed.
func (s *RateLimitState) Snapshot() (remaining int, resetAt time.Time, known bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining, s.resetAt, s.known
}

// WaitIfLow sleeps until the quota window resets when the remaining budget
// is below the low-water mark. Converting a likely 429 into a guaranteed
// delay improves throughput under sustained load. Returns the wait applied,
// zero if none was needed.
func (s *RateLimitState) WaitIfLow(ctx context.Context, sleep SleepFunc) (time.Duration, error) {
	s.mu.Lock()
	now := s.clock()
	wait := time.Duration(0)
	if s.known && s.remaining < LowWaterMark && s.resetAt.After(now) {
		wait = s.resetAt.Sub(now)
	}
	s.mu.Unlock()

	if wait <= 0 {
		return 0, nil
	}
	if err := sleep(ctx, wait); err != nil {
		return 0, err
	}
	return wait, nil
}
