package transport

import (
	"context"
	"fmt"
	"io"
	"net"
	"testing"
	"time"

	"modefind/internal/errors"
	"modefind/internal/retry"
	"modefind/util"
)

// TestTCPDialer_Connect verifies that TCPDialer can reach a local
// TCP server and exchange data.
func TestTCPDialer_Connect(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	// Server: accept, send an answer, close.
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		conn.Write([]byte("21\n")) //nolint:errcheck
	}()

	d := &TCPDialer{Timeout: 2 * time.Second}
	conn, err := d.Dial(context.Background(), "tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	buf := make([]byte, 256)
	n, err := conn.Read(buf)
	if err != nil && err != io.EOF {
		t.Fatalf("read: %v", err)
	}
	if got := string(buf[:n]); got != "21\n" {
		t.Errorf("got %q, want %q", got, "21\n")
	}
}

// TestTCPDialer_ContextCancel verifies that a cancelled context stops the dial.
func TestTCPDialer_ContextCancel(t *testing.T) {
	d := &TCPDialer{Timeout: 5 * time.Second}

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancel immediately

	_, err := d.Dial(ctx, "tcp", "127.0.0.1:1")
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

// TestTCPDialer_Close verifies Close is a no-op and returns nil.
func TestTCPDialer_Close(t *testing.T) {
	d := &TCPDialer{}
	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

// TestUDPDialer_Connect verifies that UDPDialer returns a connection.
func TestUDPDialer_Connect(t *testing.T) {
	ua, err := net.ResolveUDPAddr("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ln, err := net.ListenUDP("udp", ua)
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	d := &UDPDialer{Timeout: 2 * time.Second}
	conn, err := d.Dial(context.Background(), "udp", ln.LocalAddr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("2 21 21 22\n")); err != nil {
		t.Fatalf("write: %v", err)
	}

	buf := make([]byte, 64)
	ln.SetReadDeadline(time.Now().Add(2 * time.Second)) //nolint:errcheck
	n, _, err := ln.ReadFromUDP(buf)
	if err != nil {
		t.Fatalf("server read: %v", err)
	}
	if got := string(buf[:n]); got != "2 21 21 22\n" {
		t.Errorf("server got %q", got)
	}
}

// fakeDialer fails a fixed number of times before delegating.
type fakeDialer struct {
	failures int
	err      error
	calls    int
	inner    Dialer
}

func (f *fakeDialer) Dial(ctx context.Context, network, address string) (net.Conn, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, f.err
	}
	return f.inner.Dial(ctx, network, address)
}

func (f *fakeDialer) Close() error { return nil }

func quickBackoff(retries int) *retry.Backoff {
	return retry.WithRetries(retries, time.Millisecond, 5*time.Millisecond)
}

// TestRedialDialer_RetriesRefused verifies that refused dials are
// retried until the server answers.
func TestRedialDialer_RetriesRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	go func() {
		if c, err := ln.Accept(); err == nil {
			c.Close()
		}
	}()

	fake := &fakeDialer{
		failures: 2,
		err:      &net.OpError{Op: "dial", Net: "tcp", Err: fmt.Errorf("connection refused")},
		inner:    &TCPDialer{Timeout: time.Second},
	}
	d := &RedialDialer{Dialer: fake, Backoff: quickBackoff(3)}

	conn, err := d.Dial(context.Background(), "tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	conn.Close()
	if fake.calls != 3 {
		t.Errorf("calls = %d, want 3", fake.calls)
	}
}

// TestRedialDialer_GivesUp verifies the retry budget is honoured.
func TestRedialDialer_GivesUp(t *testing.T) {
	port, err := util.FindFreePort()
	if err != nil {
		t.Fatal(err)
	}
	d := &RedialDialer{Dialer: &TCPDialer{Timeout: time.Second}, Backoff: quickBackoff(2)}

	_, err = d.Dial(context.Background(), "tcp", util.FormatAddr("127.0.0.1", port))
	if err == nil {
		t.Fatal("expected error dialing a closed port")
	}
	var ne *errors.NetworkError
	if !errors.As(err, &ne) {
		t.Errorf("error %v should carry a NetworkError", err)
	}
}

// TestRedialDialer_PermanentStopsEarly verifies non-retryable errors
// are not retried.
func TestRedialDialer_PermanentStopsEarly(t *testing.T) {
	fake := &fakeDialer{failures: 10, err: fmt.Errorf("bad address")}
	d := &RedialDialer{Dialer: fake, Backoff: quickBackoff(5)}

	if _, err := d.Dial(context.Background(), "tcp", "x:1"); err == nil {
		t.Fatal("expected error")
	}
	if fake.calls != 1 {
		t.Errorf("calls = %d, want 1", fake.calls)
	}
}

// TestRedialDialer_UnknownHostStopsEarly verifies a host that does not
// resolve is reported after one attempt.
func TestRedialDialer_UnknownHostStopsEarly(t *testing.T) {
	fake := &fakeDialer{
		failures: 10,
		err: &net.OpError{Op: "dial", Net: "tcp", Err: &net.DNSError{
			Err: "no such host", Name: "query-server.invalid", IsNotFound: true,
		}},
	}
	d := &RedialDialer{Dialer: fake, Backoff: quickBackoff(5)}

	if _, err := d.Dial(context.Background(), "tcp", "query-server.invalid:7100"); err == nil {
		t.Fatal("expected error")
	}
	if fake.calls != 1 {
		t.Errorf("calls = %d, want 1", fake.calls)
	}
}
