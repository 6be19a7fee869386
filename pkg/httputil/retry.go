package httputil

import (
	"context"
	"errors"
	"time"
)

// RetryableError marks a failure worth another attempt: transport errors and
// 5xx responses from a layout server.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Backoff is the retry policy for remote layout reads. The wait doubles
// after every failed attempt.
type Backoff struct {
	Attempts int
	Delay    time.Duration
	// OnRetry is called before each wait with the 1-based attempt that
	// failed, its error and the wait that follows.
	OnRetry func(attempt int, err error, wait time.Duration)
}

// DefaultBackoff tries three times, waiting one then two seconds.
var DefaultBackoff = Backoff{Attempts: 3, Delay: time.Second}

// Do runs fn until it succeeds, returns an error that is not a
// [RetryableError], or runs out of attempts. It returns the last error, or
// ctx.Err() when the context ends first.
func (b Backoff) Do(ctx context.Context, fn func(context.Context) error) error {
	attempts := max(b.Attempts, 1)
	wait := b.Delay

	var err error
	for attempt := 1; ; attempt++ {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if err = fn(ctx); err == nil || !isRetryable(err) || attempt == attempts {
			return err
		}
		if b.OnRetry != nil {
			b.OnRetry(attempt, err, wait)
		}

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		wait *= 2
	}
}

func isRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}
