package core

import (
	"context"
	"fmt"
	"io"
	"os"

	"modefind/internal/capability"
	"modefind/internal/metrics"
	"modefind/internal/session"
	"modefind/internal/transport"
	"modefind/util"
)

// ConnectMode is the query client: it reaches a server through Dialer
// (which may redial) and hands the connection to Capability, normally
// a Relay from Stdin to Stdout.
type ConnectMode struct {
	Dialer     transport.Dialer
	Capability capability.Capability
	Network    string // "tcp" or "udp"
	Address    string // host:port
	Logger     *util.Logger
	Metrics    *metrics.Collector

	Stdin  io.Reader // nil means os.Stdin
	Stdout io.Writer // nil means os.Stdout
}

// Run sends every query line from Stdin and copies the answers to
// Stdout.  It returns when the server closes its side, the relay fails,
// or ctx ends.
func (m *ConnectMode) Run(ctx context.Context) error {
	defer m.Dialer.Close()

	in, out := m.Stdin, m.Stdout
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}

	m.Logger.Verbose("dialing query server %s over %s", m.Address, m.Network)
	conn, err := m.Dialer.Dial(ctx, m.Network, m.Address)
	if err != nil {
		return fmt.Errorf("query server %s: %w", m.Address, err)
	}
	defer conn.Close()

	m.Metrics.ConnectionOpened()
	defer m.Metrics.ConnectionClosed()
	m.Logger.Verbose("sending queries to %s", conn.RemoteAddr())

	sess := session.New(conn, in, out, m.Logger)
	sess.Metrics = m.Metrics
	return m.Capability.Handle(ctx, sess)
}
