package capability

import (
	"context"
	"io"

	"modefind/internal/errors"
	"modefind/internal/session"
	"modefind/util"
)

// Relay is the client side of the query protocol: query lines from the
// session's stdin go to the server and its answers go to stdout.
type Relay struct{}

// Handle shuttles bytes between the network connection and the local
// I/O endpoints until one side closes or the context is cancelled.
func (r *Relay) Handle(ctx context.Context, sess *session.Session) error {
	if sess.Conn == nil {
		return errors.ErrNotConnected
	}
	in := &countingReader{r: sess.Stdin, n: sess.Metrics.BytesSent}
	out := &countingWriter{w: sess.Stdout, n: sess.Metrics.BytesReceived}
	return util.BidirectionalCopy(ctx, sess.Conn, in, out)
}

type countingReader struct {
	r io.Reader
	n func(int64)
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n(int64(n))
	return n, err
}

type countingWriter struct {
	w io.Writer
	n func(int64)
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n(int64(n))
	return n, err
}
