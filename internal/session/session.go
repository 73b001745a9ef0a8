// Package session represents a single connection lifecycle, binding a
// network connection with I/O endpoints and shared context.
//
// Sessions decouple capabilities from concrete I/O sources: a
// capability doesn't need to know whether it's reading from os.Stdin
// or a test buffer, it just uses the session's Reader/Writer.
package session

import (
	"io"
	"net"

	"modefind/internal/metrics"
	"modefind/util"
)

// Session encapsulates the runtime context for a single connection.
type Session struct {
	Conn    net.Conn
	Stdin   io.Reader
	Stdout  io.Writer
	Logger  *util.Logger
	Metrics *metrics.Collector // may be nil
}

// New creates a Session bound to the given connection and I/O pair.
func New(conn net.Conn, stdin io.Reader, stdout io.Writer, logger *util.Logger) *Session {
	return &Session{
		Conn:   conn,
		Stdin:  stdin,
		Stdout: stdout,
		Logger: logger,
	}
}

// Peer returns the remote address for log lines, or "-" when the
// session has no connection.
func (s *Session) Peer() string {
	if s.Conn == nil || s.Conn.RemoteAddr() == nil {
		return "-"
	}
	return s.Conn.RemoteAddr().String()
}
