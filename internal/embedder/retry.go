package embedder

import (
	"context"
	"math/rand/v2"
	"time"
)

// RetryConfig configures exponential backoff retry behavior
type RetryConfig struct {
	MaxRetries int           // Maximum number of attempts
	BaseDelay  time.Duration // Initial delay between attempts
	MaxDelay   time.Duration // Cap on the backoff delay
}

// DefaultRetryConfig returns the defaults used for provider calls.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: DefaultMaxRetries,
		BaseDelay:  DefaultBaseDelay,
		MaxDelay:   MaxBackoffDelay,
	}
}

// retryWithBackoff executes fn up to MaxRetries times with jittered
// exponential backoff between attempts. Context cancellation stops the
// loop immediately; the last provider error is returned once attempts
// are exhausted.
func retryWithBackoff[T any](ctx context.Context, config RetryConfig, fn func() (T, error)) (T, error) {
	var lastErr error
	var zero T

	for attempt := 0; attempt < config.MaxRetries; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return zero, ctx.Err()
		}

		if attempt < config.MaxRetries-1 {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(backoffDelay(config, attempt)):
			}
		}
	}

	return zero, lastErr
}

// backoffDelay computes the delay before the next attempt: BaseDelay
// doubled per attempt, capped at MaxDelay, with +-25% random jitter so
// concurrent workers do not retry in lockstep.
func backoffDelay(config RetryConfig, attempt int) time.Duration {
	backoff := config.BaseDelay * (1 << attempt)
	if backoff > config.MaxDelay {
		backoff = config.MaxDelay
	}
	if backoff < time.Millisecond {
		return backoff
	}

	jitter := rand.Int64N(int64(backoff)/2) - int64(backoff)/4
	return backoff + time.Duration(jitter)
}
