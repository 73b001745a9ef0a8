// Package batch evaluates a stream of query lines in parallel while
// keeping the answers in input order.
//
// Input is consumed in chunks.  Each chunk is parsed and evaluated by
// up to Workers goroutines, then written out before the next chunk is
// read, so memory stays bounded by ChunkSize regardless of input size.
package batch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"runtime"

	"golang.org/x/sync/errgroup"

	"modefind/finder"
	"modefind/internal/errors"
	"modefind/internal/metrics"
	"modefind/internal/query"
	"modefind/util"
)

// DefaultChunkSize is the number of lines evaluated per round.
const DefaultChunkSize = 4096

// Options tunes a batch run.
type Options struct {
	Workers   int  // parallel evaluators; <= 0 means GOMAXPROCS
	ChunkSize int  // lines per round; <= 0 means DefaultChunkSize
	Strict    bool // abort on the first malformed line
	JSON      bool // emit JSON answers instead of bare numbers
	Finder    *finder.Finder
	Logger    *util.Logger
	Metrics   *metrics.Collector
}

// Stats summarises a run.
type Stats struct {
	Lines   int // lines read, including blanks and comments
	Queries int // queries answered
	Ties    int // answers that were the tie sentinel
	Errors  int // malformed lines (lenient mode)
}

type line struct {
	n    int
	text string
	out  string
	tie  bool
	err  error
}

// Run reads query lines from r and writes one answer line to w for
// every non-blank, non-comment input line.
func Run(ctx context.Context, r io.Reader, w io.Writer, opts Options) (Stats, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = util.NewLogger(0)
	}
	f := opts.Finder
	if f == nil {
		f = finder.New(nil)
	}
	format := query.Formatter(opts.JSON)

	bw := bufio.NewWriter(w)
	var stats Stats
	chunk := make([]line, 0, chunkSize)

	flush := func() error {
		if len(chunk) == 0 {
			return nil
		}
		logger.Debug("evaluating %d lines with %d workers", len(chunk), workers)
		evaluate(chunk, workers, f, format, opts.Metrics)
		for i := range chunk {
			l := &chunk[i]
			if l.err != nil {
				if opts.Strict {
					bw.Flush() //nolint:errcheck
					return l.err
				}
				stats.Errors++
				opts.Metrics.RecordError(l.err.Error())
				logger.Warn("%v", l.err)
				l.out = query.FormatError(l.err)
			} else {
				stats.Queries++
				if l.tie {
					stats.Ties++
				}
			}
			if _, err := bw.WriteString(l.out + "\n"); err != nil {
				return fmt.Errorf("write answers: %w", err)
			}
		}
		chunk = chunk[:0]
		return bw.Flush()
	}

	err := util.ReadLines(ctx, r, func(n int, text string) error {
		stats.Lines = n
		if query.Skip(text) {
			return nil
		}
		chunk = append(chunk, line{n: n, text: text})
		if len(chunk) == chunkSize {
			return flush()
		}
		return nil
	})
	if err == nil {
		err = ctx.Err()
	}
	if err == nil {
		err = flush()
	}
	if err != nil {
		return stats, err
	}
	logger.Verbose("%d lines, %d queries, %d ties, %d errors",
		stats.Lines, stats.Queries, stats.Ties, stats.Errors)
	return stats, nil
}

// stripeSize is the number of lines one worker claims at a time.
const stripeSize = 256

// evaluate fills in out/tie/err for every line of chunk.  Lines are
// handed out in contiguous stripes so each goroutine reuses one
// scratch buffer for its whole stripe.
func evaluate(chunk []line, workers int, f *finder.Finder,
	format func(query.Query, finder.Result) string, m *metrics.Collector) {
	var g errgroup.Group
	g.SetLimit(workers)
	for start := 0; start < len(chunk); start += stripeSize {
		part := chunk[start:min(start+stripeSize, len(chunk))]
		g.Go(func() error {
			buf := util.GetSeq()
			defer util.PutSeq(buf)
			for i := range part {
				l := &part[i]
				q, err := query.ParseInto(l.text, *buf)
				if err != nil {
					var pe *errors.ParseError
					if errors.As(err, &pe) {
						pe.Line = l.n
					}
					l.err = err
					continue
				}
				*buf = q.Seq
				r := query.Evaluate(f, q)
				m.QueryAnswered(r.Tie, r.Counts.Total(), q.Size)
				l.out = format(q, r)
				l.tie = r.Tie
			}
			return nil
		})
	}
	g.Wait() //nolint:errcheck // workers never fail; errors are per line
}
