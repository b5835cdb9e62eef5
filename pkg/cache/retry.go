package cache

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable is returned when a remote backend cannot be reached.
var ErrUnavailable = errors.New("cache backend unavailable")

type retryableError struct{ error }

func (e retryableError) Unwrap() error { return e.error }

// Retryable marks err as transient for [Backoff.Do]. It returns nil for a
// nil err.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return retryableError{err}
}

// IsRetryable reports whether err, or an error it wraps, was marked with
// [Retryable].
func IsRetryable(err error) bool {
	var re retryableError
	return errors.As(err, &re)
}

// Backoff is a retry schedule: up to Attempts calls, sleeping Base, then
// twice as long after every failure.
type Backoff struct {
	Attempts int
	Base     time.Duration
}

// connectBackoff governs the startup ping of remote backends.
var connectBackoff = Backoff{Attempts: 3, Base: 200 * time.Millisecond}

// Do calls fn until it succeeds or returns an error not marked Retryable,
// the attempts run out, or ctx ends. It returns the last error from fn, or
// ctx.Err() when cancelled while waiting.
func (b Backoff) Do(ctx context.Context, fn func() error) error {
	var err error
	for attempt := range max(b.Attempts, 1) {
		if attempt > 0 {
			t := time.NewTimer(b.Base << (attempt - 1))
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
			}
		}
		if err = fn(); err == nil || !IsRetryable(err) {
			return err
		}
	}
	return err
}
