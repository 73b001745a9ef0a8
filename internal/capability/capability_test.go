package capability

import (
	"bytes"
	"context"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"modefind/finder"
	"modefind/internal/cache"
	"modefind/internal/errors"
	"modefind/internal/metrics"
	"modefind/internal/session"
	"modefind/util"
)

// serveOnce accepts one connection on a loopback listener and runs cap
// on it.
func serveOnce(t *testing.T, ctx context.Context, cap Capability, m *metrics.Collector) (addr string, done <-chan error) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ln.Close() })

	errCh := make(chan error, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			errCh <- err
			return
		}
		defer conn.Close()
		sess := session.New(conn, nil, nil, util.NewLogger(0))
		sess.Metrics = m
		errCh <- cap.Handle(ctx, sess)
	}()
	return ln.Addr().String(), errCh
}

// ask sends input, half-closes, and returns everything the server
// wrote back.
func ask(t *testing.T, addr, input string) string {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(3 * time.Second)) //nolint:errcheck

	if _, err := io.WriteString(conn, input); err != nil {
		t.Fatal(err)
	}
	conn.(*net.TCPConn).CloseWrite() //nolint:errcheck
	out, err := io.ReadAll(conn)
	if err != nil {
		t.Fatalf("read answers: %v", err)
	}
	return string(out)
}

// TestAnswer_Protocol verifies one answer line per query line.
func TestAnswer_Protocol(t *testing.T) {
	m := metrics.New()
	ctx, cancel := context.WithTimeout(context.Background(), 4*time.Second)
	defer cancel()

	addr, done := serveOnce(t, ctx, &Answer{Finder: finder.New(nil)}, m)
	got := ask(t, addr, "0 1 1 1 2 3\n# comment\n\n0 1 2 3 4 5 6\nnope\n2 21 21 22\n")

	want := "1\n10\nerror: parse \"nope\": syntax error\n21\n"
	if got != want {
		t.Errorf("answers = %q, want %q", got, want)
	}
	if err := <-done; err != nil {
		t.Errorf("Handle: %v", err)
	}
	if m.Queries() != 3 || m.ErrorCount() != 1 {
		t.Errorf("queries/errors = %d/%d, want 3/1", m.Queries(), m.ErrorCount())
	}
	if m.ActiveConnections() != 0 || m.TotalConnections() != 1 {
		t.Errorf("connections active/total = %d/%d", m.ActiveConnections(), m.TotalConnections())
	}
}

// TestAnswer_JSONWithCache verifies JSON answers and cache reuse.
func TestAnswer_JSONWithCache(t *testing.T) {
	m := metrics.New()
	c, err := cache.New(8, "forward", m)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 4*time.Second)
	defer cancel()

	addr, done := serveOnce(t, ctx, &Answer{Finder: finder.New(nil), Cache: c, JSON: true}, m)
	got := ask(t, addr, "1 11 12 12\n1 11 12 12\n")
	<-done

	lines := strings.Split(strings.TrimSpace(got), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines: %q", len(lines), got)
	}
	want := `{"flag":1,"size":3,"mode":12,"tie":false,"counts":[1,2,0,0,0,0]}`
	for _, l := range lines {
		if l != want {
			t.Errorf("line = %s, want %s", l, want)
		}
	}
	if m.CacheHits() != 1 || m.CacheMisses() != 1 {
		t.Errorf("cache hits/misses = %d/%d, want 1/1", m.CacheHits(), m.CacheMisses())
	}
}

// TestAnswer_ContextCancel verifies Handle returns once ctx is done
// even while the peer keeps the connection open.
func TestAnswer_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	addr, done := serveOnce(t, ctx, &Answer{Finder: finder.New(nil)}, nil)

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Handle after cancel: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Handle did not return after cancel")
	}
}

func TestAnswer_Packet(t *testing.T) {
	a := &Answer{Finder: finder.New(finder.Bidirectional{})}
	sess := session.New(nil, nil, nil, util.NewLogger(0))

	got := a.AnswerPacket(sess, []byte("2 21 21 22\n1 100 200\n"))
	if string(got) != "21\n10\n" {
		t.Errorf("reply = %q", got)
	}
	if a.AnswerPacket(sess, []byte("# nothing\n")) != nil {
		t.Error("comment-only datagram should get no reply")
	}
}

// TestRelay_BidirectionalCopy verifies Relay shuttles data via the
// session's I/O endpoints.
func TestRelay_BidirectionalCopy(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 4*time.Second)
	defer cancel()
	addr, _ := serveOnce(t, ctx, &Answer{Finder: finder.New(nil)}, nil)

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatal(err)
	}

	m := metrics.New()
	input := bytes.NewBufferString("2 21 21 22\n1 11 12 13\n")
	output := &bytes.Buffer{}

	sess := session.New(conn, input, output, util.NewLogger(0))
	sess.Metrics = m
	if err := (&Relay{}).Handle(ctx, sess); err != nil {
		t.Fatalf("Relay.Handle: %v", err)
	}

	if got := output.String(); got != "21\n10\n" {
		t.Errorf("output = %q, want %q", got, "21\n10\n")
	}
	if m.Snapshot().BytesOut != int64(len("2 21 21 22\n1 11 12 13\n")) {
		t.Errorf("bytes out = %d", m.Snapshot().BytesOut)
	}
}

func TestHandle_NoConnection(t *testing.T) {
	sess := session.New(nil, nil, nil, util.NewLogger(0))
	for _, c := range []Capability{&Relay{}, &Answer{}} {
		if err := c.Handle(context.Background(), sess); !errors.Is(err, errors.ErrNotConnected) {
			t.Errorf("%T: err = %v, want ErrNotConnected", c, err)
		}
	}
}
