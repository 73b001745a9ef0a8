package core

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"modefind/config"
	"modefind/internal/capability"
	"modefind/internal/errors"
	"modefind/internal/metrics"
	"modefind/internal/session"
	"modefind/util"
)

// ListenMode serves the query protocol.  Over TCP it answers one
// connection, or with KeepOpen=true every connection concurrently.
// Over UDP every datagram is answered with one reply datagram.
type ListenMode struct {
	Address  string // ":port"
	Network  string // "tcp" or "udp"
	KeepOpen bool
	Timeout  time.Duration // per-connection deadline (TCP), idle limit (UDP)
	Answer   *capability.Answer
	Logger   *util.Logger
	Metrics  *metrics.Collector

	// ready, if set, receives the bound address once listening.
	ready chan<- net.Addr
}

// Run starts listening and answers queries until ctx is cancelled or,
// without KeepOpen, the first TCP peer is done.
func (m *ListenMode) Run(ctx context.Context) error {
	if m.Network == "udp" {
		return m.listenUDP(ctx)
	}
	return m.listenTCP(ctx)
}

func (m *ListenMode) announce(addr net.Addr) {
	m.Logger.Verbose("listening on %s (%s)", addr, m.Network)
	if m.ready != nil {
		m.ready <- addr
	}
}

// ── TCP ──────────────────────────────────────────────────────────────

func (m *ListenMode) listenTCP(ctx context.Context) error {
	ln, err := net.Listen("tcp", m.Address)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", m.Address, err)
	}
	defer ln.Close()
	m.announce(ln.Addr())

	// Shut the listener down when the context expires.
	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}

		m.Logger.Verbose("connection from %s", conn.RemoteAddr())

		if !m.KeepOpen {
			return m.serveConn(ctx, conn)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := m.serveConn(ctx, conn); err != nil {
				m.Logger.Warn("%v", err)
			}
		}()
	}
}

func (m *ListenMode) serveConn(ctx context.Context, conn net.Conn) error {
	defer conn.Close()

	if m.Timeout > 0 {
		conn.SetDeadline(time.Now().Add(m.Timeout)) //nolint:errcheck
	}

	sess := session.New(conn, nil, nil, m.Logger)
	sess.Metrics = m.Metrics
	err := m.Answer.Handle(ctx, sess)
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		m.Logger.Verbose("%s: timed out", sess.Peer())
		return nil
	}
	return err
}

// ── UDP ──────────────────────────────────────────────────────────────

func (m *ListenMode) listenUDP(ctx context.Context) error {
	ua, err := net.ResolveUDPAddr("udp", m.Address)
	if err != nil {
		return fmt.Errorf("resolve UDP: %w", err)
	}
	conn, err := net.ListenUDP("udp", ua)
	if err != nil {
		return fmt.Errorf("listen UDP on %s: %w", m.Address, err)
	}
	defer conn.Close()
	m.announce(conn.LocalAddr())

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	sess := session.New(nil, nil, nil, m.Logger)
	sess.Metrics = m.Metrics

	buf := make([]byte, config.DefaultMaxDatagram)
	for {
		if m.Timeout > 0 {
			conn.SetReadDeadline(time.Now().Add(m.Timeout)) //nolint:errcheck
		}
		n, peer, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				m.Logger.Verbose("idle for %s, stopping", m.Timeout)
				return nil
			}
			return fmt.Errorf("read UDP: %w", err)
		}

		reply := m.Answer.AnswerPacket(sess, buf[:n])
		if reply == nil {
			continue
		}
		if _, err := conn.WriteToUDP(reply, peer); err != nil {
			m.Metrics.RecordError(err.Error())
			m.Logger.Warn("reply to %s: %v", peer, err)
		}
	}
}
