package transport

import (
	"context"
	"net"

	"modefind/internal/errors"
	"modefind/internal/retry"
)

// RedialDialer wraps another Dialer and retries failed dials with
// exponential backoff.  Only retryable failures (refused, reset,
// temporary DNS) are retried, so a client started alongside its server
// waits for the listener instead of failing on the first attempt.
type RedialDialer struct {
	Dialer  Dialer
	Backoff *retry.Backoff
}

// Dial tries d.Dialer until it succeeds, fails permanently, or the
// backoff budget runs out.
func (d *RedialDialer) Dial(ctx context.Context, network, address string) (net.Conn, error) {
	var conn net.Conn
	err := d.Backoff.Do(ctx, func(int) error {
		c, err := d.Dialer.Dial(ctx, network, address)
		if err == nil {
			conn = c
			return nil
		}
		ne := errors.Wrap("dial", address, err)
		if !errors.IsRetryable(ne) || ctx.Err() != nil {
			return retry.Permanent(ne)
		}
		return ne
	})
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Close closes the wrapped dialer.
func (d *RedialDialer) Close() error { return d.Dialer.Close() }
