// Package retry provides exponential backoff for redialing a query
// server that is not accepting connections yet.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

const (
	defaultInitialDelay = 200 * time.Millisecond
	defaultMaxDelay     = 5 * time.Second
	defaultMultiplier   = 2.0
)

// PermanentError marks a failure that another attempt cannot fix, such
// as a host that does not resolve.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent wraps err so that Backoff.Do returns it at once.  A nil err
// stays nil.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err carries a PermanentError.
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}

// Backoff spaces out redial attempts.  Zero fields fall back to the
// package defaults, except MaxAttempts where zero means no limit.
type Backoff struct {
	InitialDelay time.Duration // wait after the first failure
	MaxDelay     time.Duration // upper bound for any single wait
	Multiplier   float64       // growth factor between waits
	MaxAttempts  int           // dials in total, retries+1
	Jitter       bool          // spread waits by ±25%

	// OnRetry, if set, sees every failed attempt before its wait.
	OnRetry func(attempt int, err error, wait time.Duration)
}

// DefaultBackoff is the client's redial policy: four dials, 200ms
// growing to at most 5s, jittered so restarted clients spread out.
func DefaultBackoff() *Backoff {
	return &Backoff{
		InitialDelay: defaultInitialDelay,
		MaxDelay:     defaultMaxDelay,
		Multiplier:   defaultMultiplier,
		MaxAttempts:  4,
		Jitter:       true,
	}
}

// WithRetries is DefaultBackoff with retries+1 dials and the given
// delay bounds.
func WithRetries(retries int, initial, max time.Duration) *Backoff {
	b := DefaultBackoff()
	b.InitialDelay = initial
	b.MaxDelay = max
	b.MaxAttempts = retries + 1
	return b
}

// Do calls fn with 1-based attempt numbers until it returns nil, returns
// a Permanent error (unwrapped on the way out), runs out of attempts, or
// ctx ends during a wait.
func (b *Backoff) Do(ctx context.Context, fn func(attempt int) error) error {
	delay := orDefault(b.InitialDelay, defaultInitialDelay)
	limit := orDefault(b.MaxDelay, defaultMaxDelay)
	growth := b.Multiplier
	if growth <= 0 {
		growth = defaultMultiplier
	}

	for attempt := 1; ; attempt++ {
		err := fn(attempt)
		switch {
		case err == nil:
			return nil
		case IsPermanent(err):
			return errors.Unwrap(err)
		case b.MaxAttempts > 0 && attempt >= b.MaxAttempts:
			return fmt.Errorf("gave up after %d attempts: %w", attempt, err)
		}

		wait := delay
		if b.Jitter {
			wait = addJitter(delay)
		}
		if b.OnRetry != nil {
			b.OnRetry(attempt, err, wait)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-timer.C:
		}

		delay = min(time.Duration(float64(delay)*growth), limit)
	}
}

func orDefault(d, def time.Duration) time.Duration {
	if d == 0 {
		return def
	}
	return d
}

// addJitter moves d by a random amount within ±25%, never below 1ms.
func addJitter(d time.Duration) time.Duration {
	spread := float64(d) / 4
	j := float64(d) + (rand.Float64()*2-1)*spread
	return time.Duration(math.Max(j, float64(time.Millisecond)))
}
