package config

import "time"

// ── Default values ───────────────────────────────────────────────────
//
// All tuneable defaults live here so they are easy to audit and reuse
// across CLI flags and environment variable loading.

const (
	// DefaultPort is the query server port when -p is not given.
	DefaultPort = 7100

	// DefaultStrategy is the tie-detection strategy.
	DefaultStrategy = "forward"

	// DefaultWorkers of 0 means one batch worker per GOMAXPROCS.
	DefaultWorkers = 0

	// DefaultCacheSize is the number of memoized answers a server keeps.
	DefaultCacheSize = 4096

	// DefaultRetries is how many times a client redials a server that
	// refused the first connection.
	DefaultRetries = 3

	// DefaultRetryDelay is the first backoff delay between redials.
	DefaultRetryDelay = 200 * time.Millisecond

	// DefaultMaxRetryDelay caps the exponential backoff between redials.
	DefaultMaxRetryDelay = 5 * time.Second

	// DefaultConnTimeout is the TCP connection timeout.
	DefaultConnTimeout = 10 * time.Second

	// DefaultMaxDatagram is the largest UDP query datagram accepted.
	DefaultMaxDatagram = 64 * 1024

	// DefaultMaxWorkers bounds -j to keep a typo from spawning a
	// goroutine storm.
	DefaultMaxWorkers = 1024
)
