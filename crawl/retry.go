package crawl

import (
	"context"
	"time"
)

// DefaultRetryDelays returns the backoff delays for retried operations:
// 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// Do attempts op with bounded exponential backoff. It makes one initial
// attempt plus one retry per delay, waiting delays[i] before retry i+1.
// The zero value of T and the last error are returned if every attempt
// fails. Context cancellation aborts the wait between attempts.
func Do[T any](ctx context.Context, delays []time.Duration, op func(context.Context) (T, error)) (T, error) {
	var zero T
	maxAttempts := len(delays) + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if attempt >= maxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}

	return zero, lastErr
}
