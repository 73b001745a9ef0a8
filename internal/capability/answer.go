package capability

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"

	"modefind/finder"
	"modefind/internal/cache"
	"modefind/internal/errors"
	"modefind/internal/query"
	"modefind/internal/session"
	"modefind/util"
)

// Answer is the server side of the query protocol: every query line
// read from the connection is answered with one line, in order.  Blank
// lines and comments get no answer; malformed lines get an
// "error: ..." line and the connection stays open.
type Answer struct {
	Finder *finder.Finder
	Cache  *cache.Cache // nil disables memoization
	JSON   bool
}

// Handle serves queries until the peer half-closes, the connection
// fails, or ctx is cancelled.
func (a *Answer) Handle(ctx context.Context, sess *session.Session) error {
	if sess.Conn == nil {
		return errors.ErrNotConnected
	}
	stop := context.AfterFunc(ctx, func() { sess.Conn.Close() })
	defer stop()

	sess.Metrics.ConnectionOpened()
	defer sess.Metrics.ConnectionClosed()

	w := bufio.NewWriter(sess.Conn)
	buf := util.GetSeq()
	defer util.PutSeq(buf)

	var served int
	err := util.ReadLines(ctx, sess.Conn, func(n int, line string) error {
		sess.Metrics.BytesReceived(int64(len(line) + 1))
		out, ok := a.answer(sess, line, buf)
		if !ok {
			return nil
		}
		served++
		sess.Metrics.BytesSent(int64(len(out) + 1))
		if _, err := w.WriteString(out + "\n"); err != nil {
			return err
		}
		// Answer as soon as the peer has nothing more buffered.
		return w.Flush()
	})
	sess.Logger.Verbose("%s: %d queries answered", sess.Peer(), served)
	if ctx.Err() != nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("serve %s: %w", sess.Peer(), err)
	}
	return w.Flush()
}

// AnswerPacket answers every query line in one datagram and returns the
// reply payload, or nil when the datagram held no query.
func (a *Answer) AnswerPacket(sess *session.Session, data []byte) []byte {
	buf := util.GetSeq()
	defer util.PutSeq(buf)

	sess.Metrics.BytesReceived(int64(len(data)))
	var reply bytes.Buffer
	for _, line := range strings.Split(string(data), "\n") {
		out, ok := a.answer(sess, line, buf)
		if !ok {
			continue
		}
		reply.WriteString(out)
		reply.WriteByte('\n')
	}
	sess.Metrics.BytesSent(int64(reply.Len()))
	if reply.Len() == 0 {
		return nil
	}
	return reply.Bytes()
}

// answer evaluates one line.  ok is false for lines that carry no
// query.
func (a *Answer) answer(sess *session.Session, line string, buf *[]int32) (out string, ok bool) {
	if query.Skip(line) {
		return "", false
	}
	q, err := query.ParseInto(line, *buf)
	if err != nil {
		sess.Metrics.RecordError(err.Error())
		sess.Logger.Debug("%s: %v", sess.Peer(), err)
		return query.FormatError(err), true
	}
	*buf = q.Seq

	r := a.Cache.Evaluate(a.Finder, q)
	sess.Metrics.QueryAnswered(r.Tie, r.Counts.Total(), q.Size)
	return query.Formatter(a.JSON)(q, r), true
}
