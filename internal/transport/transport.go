// Package transport provides abstractions for network connection
// establishment.  Transports handle the "how" of reaching a query
// server (TCP or UDP, with or without redial) independent of what
// happens over the connection, which is the capability layer's job.
package transport

import (
	"context"
	"net"
)

// Dialer opens outbound network connections.
type Dialer interface {
	// Dial establishes a connection to the given network address.
	Dial(ctx context.Context, network, address string) (net.Conn, error)

	// Close releases any long-lived resources held by the dialer.
	// Stateless dialers return nil.
	Close() error
}
