package core

import (
	"fmt"
	"time"

	"modefind/config"
	"modefind/finder"
	"modefind/internal/cache"
	"modefind/internal/capability"
	"modefind/internal/metrics"
	"modefind/internal/retry"
	"modefind/internal/transport"
	"modefind/util"
)

// Build constructs the Mode selected by cfg.  cfg must already have
// passed Validate.  m may be nil.
func Build(cfg *config.Config, logger *util.Logger, m *metrics.Collector) (Mode, error) {
	strategy, err := finder.StrategyByName(cfg.Strategy)
	if err != nil {
		return nil, err
	}
	f := finder.New(strategy)

	switch cfg.Mode() {
	case config.ModeListen:
		return buildListen(cfg, f, logger, m)
	case config.ModeConnect:
		return buildConnect(cfg, logger, m), nil
	case config.ModeBatch:
		return &BatchMode{
			Input:   cfg.Input,
			Workers: cfg.Workers,
			Strict:  cfg.Strict,
			JSON:    cfg.JSON,
			Finder:  f,
			Logger:  logger.With("batch"),
			Metrics: m,
		}, nil
	default:
		if cfg.Query == nil {
			return nil, fmt.Errorf("eval mode needs a query")
		}
		cfg.ApplySize()
		return &EvalMode{
			Query:   *cfg.Query,
			JSON:    cfg.JSON,
			Finder:  f,
			Metrics: m,
		}, nil
	}
}

// ── mode builders ────────────────────────────────────────────────────

func buildListen(cfg *config.Config, f *finder.Finder, logger *util.Logger, m *metrics.Collector) (Mode, error) {
	c, err := cache.New(cfg.CacheSize, f.Strategy.Name(), m)
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}

	network := "tcp"
	if cfg.UDP {
		network = "udp"
	}
	return &ListenMode{
		Address:  fmt.Sprintf(":%d", cfg.LocalPort),
		Network:  network,
		KeepOpen: cfg.KeepOpen,
		Timeout:  cfg.Timeout,
		Answer:   &capability.Answer{Finder: f, Cache: c, JSON: cfg.JSON},
		Logger:   logger.With("listen"),
		Metrics:  m,
	}, nil
}

func buildConnect(cfg *config.Config, logger *util.Logger, m *metrics.Collector) Mode {
	network := "tcp"
	if cfg.UDP {
		network = "udp"
	}
	logger = logger.With("connect")
	return &ConnectMode{
		Dialer:     buildDialer(cfg, logger),
		Capability: &capability.Relay{},
		Network:    network,
		Address:    util.FormatAddr(cfg.Host, cfg.Port),
		Logger:     logger,
		Metrics:    m,
	}
}

// ── shared helpers ───────────────────────────────────────────────────

// buildDialer creates the transport.Dialer for connect mode.  TCP
// dials are retried so a client can be started before its server.
func buildDialer(cfg *config.Config, logger *util.Logger) transport.Dialer {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = config.DefaultConnTimeout
	}
	if cfg.UDP {
		return &transport.UDPDialer{Timeout: timeout}
	}

	b := retry.WithRetries(cfg.Retries, config.DefaultRetryDelay, config.DefaultMaxRetryDelay)
	b.OnRetry = func(attempt int, err error, wait time.Duration) {
		logger.Verbose("attempt %d: %v; retrying in %s", attempt, err, wait.Truncate(time.Millisecond))
	}
	return &transport.RedialDialer{
		Dialer:  &transport.TCPDialer{Timeout: timeout},
		Backoff: b,
	}
}
