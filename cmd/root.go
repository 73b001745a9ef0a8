// Package cmd wires up the CLI flags and dispatches to the core modes.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	flag "github.com/spf13/pflag"
	"golang.org/x/term"

	"modefind/config"
	"modefind/internal/core"
	"modefind/internal/metrics"
	"modefind/util"
)

// version is overridable at link time:
//
//	go build -ldflags "-X modefind/cmd.version=2.0.0"
var version = "1.0.0" //nolint:gochecknoglobals

// streams are the process I/O endpoints, replaced in tests.
type streams struct {
	in          io.Reader
	out         io.Writer
	errOut      io.Writer
	interactive bool // stdin is a terminal
}

// Execute parses args and runs the selected modefind mode.
func Execute(ctx context.Context, args []string) error {
	return run(ctx, args, streams{
		in:          os.Stdin,
		out:         os.Stdout,
		errOut:      os.Stderr,
		interactive: term.IsTerminal(int(os.Stdin.Fd())),
	})
}

func run(ctx context.Context, args []string, s streams) error {
	cfg := config.Default()
	config.LoadFromEnv(cfg)

	fs := flag.NewFlagSet("modefind", flag.ContinueOnError)
	fs.SetOutput(s.errOut)

	// ── query ────────────────────────────────────────────────────
	fs.IntVarP(&cfg.Size, "size", "s", cfg.Size, "Count only the first N values (-1 = all)")
	fs.StringVar(&cfg.Strategy, "strategy", cfg.Strategy, "Tie-resolution strategy: forward or bidirectional")

	// ── batch ────────────────────────────────────────────────────
	fs.BoolVarP(&cfg.Batch, "batch", "b", cfg.Batch, "Answer query lines read from stdin")
	fs.StringVarP(&cfg.Input, "input", "i", cfg.Input, "Answer query lines read from a file (- = stdin)")
	fs.IntVarP(&cfg.Workers, "workers", "j", cfg.Workers, "Parallel evaluators (0 = one per CPU)")
	fs.BoolVar(&cfg.Strict, "strict", cfg.Strict, "Stop at the first malformed line")

	// ── server ───────────────────────────────────────────────────
	fs.BoolVarP(&cfg.Listen, "listen", "l", cfg.Listen, "Serve queries over the network")
	fs.IntVarP(&cfg.LocalPort, "port", "p", cfg.LocalPort, "Listen port")
	fs.BoolVarP(&cfg.UDP, "udp", "u", cfg.UDP, "Use UDP, one reply datagram per query datagram")
	fs.BoolVarP(&cfg.KeepOpen, "keep-open", "k", cfg.KeepOpen, "Accept multiple connections (with -l)")
	fs.IntVar(&cfg.CacheSize, "cache", cfg.CacheSize, "Server answer cache entries (0 = off)")

	timeoutSec := int(cfg.Timeout / time.Second)
	fs.IntVarP(&timeoutSec, "timeout", "w", timeoutSec, "Timeout in seconds")

	// ── client ───────────────────────────────────────────────────
	fs.StringVarP(&cfg.Connect, "connect", "c", cfg.Connect, "Send queries to a server at host:port")
	fs.IntVar(&cfg.Retries, "retries", cfg.Retries, "Redial attempts while the server is unreachable")

	// ── output ───────────────────────────────────────────────────
	fs.BoolVar(&cfg.JSON, "json", cfg.JSON, "Print answers as JSON objects")
	fs.BoolVar(&cfg.Stats, "stats", cfg.Stats, "Print run metrics as JSON to stderr on exit")
	fs.CountVarP(&cfg.Verbose, "verbose", "v", "Increase verbosity (repeatable)")

	var showVersion, showHelp, dryRun bool
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	fs.BoolVarP(&showHelp, "help", "h", false, "Show this help")
	fs.BoolVar(&dryRun, "dry-run", false, "Validate the configuration and exit")

	fs.Usage = func() { printUsage(s.errOut, fs) }

	// ── parse ────────────────────────────────────────────────────
	if err := fs.Parse(args); err != nil {
		return err
	}

	if showHelp {
		printUsage(s.errOut, fs)
		return nil
	}
	if showVersion {
		fmt.Fprintf(s.out, "modefind %s\n", version)
		return nil
	}
	if fs.Changed("timeout") {
		cfg.Timeout = time.Duration(timeoutSec) * time.Second
	}

	// ── positional query ─────────────────────────────────────────
	if rest := fs.Args(); len(rest) > 0 {
		q, err := config.ParseQueryArgs(rest)
		if err != nil {
			return fmt.Errorf("query: %w", err)
		}
		cfg.Query = q
	} else if cfg.Mode() == config.ModeEval {
		if s.interactive {
			printUsage(s.errOut, fs)
			return nil
		}
		// Piped input with no query: answer it line by line.
		cfg.Batch = true
	}

	// ── validate ─────────────────────────────────────────────────
	if err := cfg.Validate(); err != nil {
		return err
	}
	if dryRun {
		fmt.Fprintf(s.errOut, "configuration ok: %s mode\n", cfg.Mode())
		return nil
	}

	// ── build and run ────────────────────────────────────────────
	logger := util.NewLogger(cfg.Verbose)
	logger.SetOutput(s.errOut)
	m := metrics.New()

	mode, err := core.Build(cfg, logger, m)
	if err != nil {
		return err
	}
	bindIO(mode, s)

	err = mode.Run(ctx)
	if cfg.Stats {
		fmt.Fprintln(s.errOut, m.JSON())
	}
	return err
}

// bindIO points the modes that read or print at the process streams.
func bindIO(mode core.Mode, s streams) {
	switch m := mode.(type) {
	case *core.EvalMode:
		m.Stdout = s.out
	case *core.BatchMode:
		m.Stdin, m.Stdout = s.in, s.out
	case *core.ConnectMode:
		m.Stdin, m.Stdout = s.in, s.out
	}
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintf(w, `modefind – bucketed mode finder v%s

Counts the values of a sequence that fall in FLAG*10+1 .. FLAG*10+6 and
prints the most frequent one, or 10 when the highest count is shared.

Usage:
  modefind [options] FLAG V1 V2 ...           Answer one query
  modefind [options] < queries.txt            Answer one query per line
  modefind -i queries.txt [options]           Answer a query file
  modefind -l -p <port> [options]             Serve queries
  modefind -c <host:port> [options]           Query a server

Options:
`, version)
	fs.PrintDefaults()
	fmt.Fprintf(w, `
Examples:
  modefind 2 21 21 22                         prints 21
  modefind -s 2 0 1 2 1 1                     counts only 1 2
  modefind -- -1 -9 -9 -8                     negative values after --
  modefind -l -k -p 7100                      serve on 7100
  echo "1 11 12 12" | modefind -c :7100       prints 12
`)
}
