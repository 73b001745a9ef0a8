package core

import (
	"context"
	"fmt"
	"io"
	"os"

	"modefind/finder"
	"modefind/internal/metrics"
	"modefind/internal/query"
)

// EvalMode answers a single query given on the command line.
type EvalMode struct {
	Query   query.Query
	JSON    bool
	Finder  *finder.Finder
	Metrics *metrics.Collector

	Stdout io.Writer // defaults to os.Stdout
}

// Run evaluates the query and prints one answer line.
func (m *EvalMode) Run(context.Context) error {
	out := m.Stdout
	if out == nil {
		out = os.Stdout
	}
	r := query.Evaluate(m.Finder, m.Query)
	m.Metrics.QueryAnswered(r.Tie, r.Counts.Total(), m.Query.Size)
	_, err := fmt.Fprintln(out, query.Formatter(m.JSON)(m.Query, r))
	return err
}
