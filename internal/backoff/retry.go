package backoff

import (
	"context"
)

// Retryable is satisfied by any error that can classify itself; callers
// typically pass *agenterr.Error values here without needing to import
// agenterr from this package.
type Retryable interface {
	Retryable() bool
}

// RetryResult holds the result of a retry sequence.
type RetryResult[T any] struct {
	Value     T
	Attempts  int
	LastError error
}

// Run executes fn with exponential backoff, retrying only errors that
// report themselves as Retryable (errors that don't implement Retryable
// are treated as non-retryable and fail fast). It retries up to
// maxAttempts times total and returns the literal last error on
// exhaustion or on a non-retryable failure (never a wrapped sentinel),
// so callers can inspect the original error's kind with errors.As.
//
// Context cancellation is checked before each attempt and during sleeps;
// ctx.Err() is returned immediately in that case.
func Run[T any](
	ctx context.Context,
	policy Policy,
	maxAttempts int,
	fn func(ctx context.Context, attempt int) (T, error),
) (RetryResult[T], error) {
	var result RetryResult[T]

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result.Attempts = attempt

		if err := ctx.Err(); err != nil {
			result.LastError = err
			return result, err
		}

		value, err := fn(ctx, attempt)
		if err == nil {
			result.Value = value
			result.LastError = nil
			return result, nil
		}
		result.LastError = err

		if r, ok := err.(Retryable); !ok || !r.Retryable() {
			return result, err
		}
		if attempt == maxAttempts {
			return result, err
		}
		if sleepErr := SleepWithBackoff(ctx, policy, attempt); sleepErr != nil {
			result.LastError = sleepErr
			return result, sleepErr
		}
	}

	return result, result.LastError
}
