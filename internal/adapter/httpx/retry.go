package httpx

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"
)

// RetryPolicy is the immutable retry configuration shared by all API
// operations. It is a value object and is never mutated at runtime.
type RetryPolicy struct {
	MaxAttempts    int
	BaseDelay      time.Duration
	MaxDelay       time.Duration
	Multiplier     float64
	JitterFraction float64
}

// DefaultRetryPolicy returns the standard policy for API calls.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    3,
		BaseDelay:      1 * time.Second,
		MaxDelay:       32 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.10,
	}
}

// SleepFunc waits for the given duration or until the context is done.
// Injected so tests run without real delays.
type SleepFunc func(ctx context.Context, d time.Duration) error

// ContextSleep is the production SleepFunc: a timer-based wait that never
// blocks a thread and honors cancellation.
func ContextSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Backoff computes the delay before the next attempt:
// min(base * multiplier^attempt, max) ± jitterFraction, where attempt is
// zero-based. jitterUnit must be uniform in [0,1).
func Backoff(attempt int, policy RetryPolicy, jitterUnit float64) time.Duration {
	delay := float64(policy.BaseDelay) * math.Pow(policy.Multiplier, float64(attempt))
	if delay > float64(policy.MaxDelay) {
		delay = float64(policy.MaxDelay)
	}

	jitterRange := policy.JitterFraction * delay
	jitter := (jitterUnit * 2 * jitterRange) - jitterRange
	result := delay + jitter

	if result > float64(policy.MaxDelay) {
		result = float64(policy.MaxDelay)
	}
	if result < 0 {
		result = 0
	}

	return time.Duration(result)
}

// ShouldRetry determines if an error is retryable.
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.IsRetryable()
	}

	// Generic errors are not retryable.
	return false
}

// retryAfterOf extracts server-specified delay guidance, if any.
func retryAfterOf(err error) time.Duration {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.RetryAfter
	}
	return 0
}

// Operation is a function that can be retried.
type Operation func(ctx context.Context) error

// Retrier executes operations under a RetryPolicy. The zero value is not
// usable; construct with NewRetrier.
type Retrier struct {
	policy RetryPolicy
	sleep  SleepFunc
	jitter func() float64
	logger *Logger
}

// RetrierOption customizes a Retrier.
type RetrierOption func(*Retrier)

// WithSleep replaces the sleep function. Tests use this to observe and
// skip backoff waits.
func WithSleep(sleep SleepFunc) RetrierOption {
	return func(r *Retrier) { r.sleep = sleep }
}

// WithJitterSource replaces the jitter source. Must return values in [0,1).
func WithJitterSource(jitter func() float64) RetrierOption {
	return func(r *Retrier) { r.jitter = jitter }
}

// WithLogger attaches a logger for per-attempt diagnostics.
func WithLogger(logger *Logger) RetrierOption {
	return func(r *Retrier) { r.logger = logger }
}

// NewRetrier builds a Retrier with the given policy.
func NewRetrier(policy RetryPolicy, opts ...RetrierOption) *Retrier {
	r := &Retrier{
		policy: policy,
		sleep:  ContextSleep,
		jitter: rand.Float64,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Do executes the operation with retry. The attempt loop is an explicit
// state machine: attempting → success, or attempting → backoff →
// attempting, until the error is non-retryable or attempts are exhausted.
// The caller receives the last error on exhaustion.
func (r *Retrier) Do(ctx context.Context, op Operation) error {
	var lastErr error

	for attempt := 0; attempt < r.policy.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !ShouldRetry(err) {
			return err
		}
		if attempt == r.policy.MaxAttempts-1 {
			// Exhausted.
			return err
		}

		delay := Backoff(attempt, r.policy, r.jitter())
		if serverDelay := retryAfterOf(err); serverDelay > 0 {
			// Server guidance takes precedence over local backoff math.
			delay = serverDelay
		}

		if r.logger != nil {
			r.logger.Warn(ctx, "request failed, backing off", Fields{
				"attempt": attempt + 1,
				"max":     r.policy.MaxAttempts,
				"delay":   delay.String(),
				"error":   err.Error(),
			})
		}

		if err := r.sleep(ctx, delay); err != nil {
			return err
		}
	}

	return lastErr
}
