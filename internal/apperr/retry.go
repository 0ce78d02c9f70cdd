package apperr

// retry.go implements bounded exponential backoff for transient failures.
//
// An operation is retried only when its normalized error is both self-marked
// retryable and carries a code present in the config's allow-list. Requiring
// both conditions means a caller cannot make a non-idempotent operation
// retryable by mis-tagging a single flag.

import (
	"context"
	"errors"
	"time"
)

// RetryConfig controls retry behavior for a wrapped operation.
type RetryConfig struct {
	// MaxAttempts is the total number of invocations, including the first.
	MaxAttempts int

	// BaseDelay is the wait before the second attempt.
	BaseDelay time.Duration

	// MaxDelay caps the computed backoff delay.
	MaxDelay time.Duration

	// Multiplier scales the delay after each failed attempt.
	Multiplier float64

	// RetryableCodes is the allow-list of error codes eligible for retry.
	RetryableCodes map[string]bool
}

// DefaultRetryConfig returns the standard policy: 3 attempts, 1s base delay
// doubling up to a 10s cap, retrying only known-transient codes.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		MaxDelay:    10 * time.Second,
		Multiplier:  2,
		RetryableCodes: map[string]bool{
			CodeNetworkError:       true,
			CodeTimeout:            true,
			CodeRateLimitExceeded:  true,
			CodeServiceUnavailable: true,
			CodeConnectionFailed:   true,
			CodeDBConnectionFailed: true,
		},
	}
}

// NoRetry returns a policy that always gives up after the first attempt.
func NoRetry() RetryConfig {
	return RetryConfig{MaxAttempts: 1}
}

// Retryable reports whether err qualifies for retry under cfg. Both the
// error's own flag and allow-list membership are required.
func Retryable(err error, cfg RetryConfig) bool {
	app := Normalize(err)
	if app == nil || !app.Retryable {
		return false
	}
	return cfg.RetryableCodes[app.Code]
}

// RetryDelay computes the backoff delay before the given 1-based attempt's
// successor: min(BaseDelay * Multiplier^(attempt-1), MaxDelay).
func RetryDelay(attempt int, cfg RetryConfig) time.Duration {
	delay := float64(cfg.BaseDelay)
	for i := 1; i < attempt; i++ {
		delay *= cfg.Multiplier
	}
	if max := float64(cfg.MaxDelay); cfg.MaxDelay > 0 && delay > max {
		delay = max
	}
	return time.Duration(delay)
}

// RetryNotify is invoked before each backoff wait, for observability.
type RetryNotify func(attempt int, err *AppError, delay time.Duration)

// Retry invokes op until it succeeds, fails permanently, or attempts are
// exhausted. At most cfg.MaxAttempts invocations are made. The backoff wait
// respects context cancellation; no other work is blocked during the wait.
func Retry[T any](ctx context.Context, cfg RetryConfig, op func(context.Context) (T, error), notify RetryNotify) (T, error) {
	var zero T

	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	for attempt := 1; ; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}

		app := Normalize(err)
		if !Retryable(app, cfg) || attempt >= cfg.MaxAttempts {
			// Row-addressed import errors are already one of the two
			// canonical shapes; flattening them would lose the addressing.
			var ie ImportError
			if errors.As(err, &ie) {
				return zero, ie
			}
			return zero, app
		}

		delay := RetryDelay(attempt, cfg)
		if notify != nil {
			notify(attempt, app, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, Normalize(ctx.Err())
		case <-timer.C:
		}
	}
}
