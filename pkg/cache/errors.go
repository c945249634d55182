package cache

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable marks a remote cache (Redis) that could not be reached
// after retrying. The pipeline treats it like a miss and keeps going.
var ErrUnavailable = errors.New("cache unavailable")

// redisAttempts bounds how often one Redis command is sent.
const redisAttempts = 3

// redisBackoff is the pause after the first failed attempt. Each further
// pause doubles it.
var redisBackoff = 100 * time.Millisecond

// transientError is a Redis failure that may succeed when sent again, such
// as a refused dial or a closed pooled connection.
type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

func transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

func isTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}

// withRetry sends a Redis command until it succeeds, fails with a
// non-transient error, or runs out of attempts. A cancelled ctx ends the
// wait between attempts.
func withRetry(ctx context.Context, command func() error) error {
	pause := redisBackoff
	var err error
	for attempt := 1; attempt <= redisAttempts; attempt++ {
		if err = command(); err == nil || !isTransient(err) {
			return err
		}
		if attempt == redisAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pause):
			pause *= 2
		}
	}
	return err
}
