package core

import (
	"context"
	"fmt"
	"io"
	"os"

	"modefind/finder"
	"modefind/internal/batch"
	"modefind/internal/metrics"
	"modefind/util"
)

// BatchMode answers a stream of query lines from a file or stdin.
type BatchMode struct {
	Input   string // path, "" or "-" for stdin
	Workers int
	Strict  bool
	JSON    bool
	Finder  *finder.Finder
	Logger  *util.Logger
	Metrics *metrics.Collector

	// Stdin/Stdout default to os.Stdin/os.Stdout when nil.
	Stdin  io.Reader
	Stdout io.Writer
}

// Run streams every query through batch.Run.
func (m *BatchMode) Run(ctx context.Context) error {
	in := m.Stdin
	if in == nil {
		in = os.Stdin
	}
	out := m.Stdout
	if out == nil {
		out = os.Stdout
	}

	if m.Input != "" && m.Input != "-" {
		f, err := os.Open(m.Input)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		in = f
	}

	_, err := batch.Run(ctx, in, out, batch.Options{
		Workers: m.Workers,
		Strict:  m.Strict,
		JSON:    m.JSON,
		Finder:  m.Finder,
		Logger:  m.Logger,
		Metrics: m.Metrics,
	})
	return err
}
