// Package config defines the runtime configuration for modefind and
// provides helpers for parsing the positional query and port values.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"modefind/internal/query"
)

// Mode names the operation a Config selects.
type Mode string

const (
	ModeEval    Mode = "eval"
	ModeBatch   Mode = "batch"
	ModeListen  Mode = "listen"
	ModeConnect Mode = "connect"
)

// Config holds every tuneable for a single modefind run.
type Config struct {
	// ── Query (eval mode) ────────────────────────────────────────────
	Query    *query.Query // positional FLAG SEQ...; nil when absent
	Size     int          // -s: counted prefix, -1 = whole sequence
	Strategy string

	// ── Batch ────────────────────────────────────────────────────────
	Batch   bool
	Input   string // -i: query file, "-" = stdin
	Workers int
	Strict  bool

	// ── Server ───────────────────────────────────────────────────────
	Listen    bool
	LocalPort int
	UDP       bool
	KeepOpen  bool
	Timeout   time.Duration
	CacheSize int

	// ── Client ───────────────────────────────────────────────────────
	Connect string // raw host:port from -c
	Host    string
	Port    int
	Retries int

	// ── Output ───────────────────────────────────────────────────────
	JSON    bool
	Verbose int
	Stats   bool
}

// Default returns a Config populated from defaults.go.
func Default() *Config {
	return &Config{
		Size:      -1,
		Strategy:  DefaultStrategy,
		LocalPort: DefaultPort,
		Workers:   DefaultWorkers,
		CacheSize: DefaultCacheSize,
		Retries:   DefaultRetries,
	}
}

// Mode reports which operation the configuration selects.  Listen wins
// over connect, connect over batch, and batch over a single query.
func (c *Config) Mode() Mode {
	switch {
	case c.Listen:
		return ModeListen
	case c.Connect != "":
		return ModeConnect
	case c.Batch || c.Input != "":
		return ModeBatch
	default:
		return ModeEval
	}
}

// ParseQueryArgs builds the eval query from positional arguments
// ("FLAG V1 V2 ..." split across argv, commas allowed).
func ParseQueryArgs(args []string) (*query.Query, error) {
	q, err := query.Parse(strings.Join(args, " "))
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// ParsePort accepts a decimal port in 1-65535.
func ParsePort(spec string) (int, error) {
	port, err := strconv.Atoi(spec)
	if err != nil {
		return 0, fmt.Errorf("invalid port %q", spec)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("port %d out of range 1-65535", port)
	}
	return port, nil
}

// ApplySize truncates the eval query to Size when one was given.
func (c *Config) ApplySize() {
	if c.Query == nil || c.Size < 0 {
		return
	}
	c.Query.Size = int32(c.Size)
}
