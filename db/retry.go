package db

import (
	"context"
	"fmt"
	"time"
)

// RetryConfig controls WithRetry.
type RetryConfig struct {
	MaxAttempts int
	Delay       time.Duration
	// RetryOn reports whether err is transient. Defaults to deadlocks and
	// timeouts.
	RetryOn func(error) bool
}

// WithRetry calls fn until it succeeds, returns a non-transient error, the
// attempts are exhausted or ctx is done. fn must be idempotent.
func WithRetry(ctx context.Context, cfg RetryConfig, fn func() error) error {
	retryOn := cfg.RetryOn
	if retryOn == nil {
		retryOn = func(err error) bool { return IsDeadlock(err) || IsTimeout(err) }
	}
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(cfg.Delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
		if lastErr = fn(); lastErr == nil {
			return nil
		}
		if !retryOn(lastErr) {
			return lastErr
		}
	}
	return fmt.Errorf("lambok/db: all %d attempts failed: %w", attempts, lastErr)
}
