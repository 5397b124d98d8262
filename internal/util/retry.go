package util

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Permanent marks err as not worth retrying; Retry returns it immediately.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Retry calls fn up to maxAttempts times with exponential backoff starting at
// baseDelay. It returns nil on the first successful call, or the last error
// if all attempts fail. The function respects context cancellation between
// retries.
func Retry(ctx context.Context, maxAttempts int, baseDelay time.Duration, fn func() error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = baseDelay
	eb.RandomizationFactor = 0
	eb.Multiplier = 2
	eb.MaxElapsedTime = 0
	if baseDelay <= 0 {
		eb.InitialInterval = time.Nanosecond
		eb.MaxInterval = time.Nanosecond
	}

	b := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(maxAttempts-1)), ctx)
	err := backoff.Retry(fn, b)

	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		return perm.Err
	}
	return err
}
