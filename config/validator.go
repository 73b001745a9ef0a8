package config

import (
	"modefind/finder"
	"modefind/internal/errors"
	"modefind/util"
)

// Validate checks that the configuration is internally consistent and
// resolves derived fields (Host/Port from Connect).  Failures are
// *errors.ConfigError values carrying a hint where one helps.
func (c *Config) Validate() error {
	if c.Listen && c.Connect != "" {
		return &errors.ConfigError{
			Field:   "connect",
			Value:   c.Connect,
			Message: "-l and -c are mutually exclusive",
			Hint:    "run the server and the client as separate processes",
		}
	}

	if _, err := finder.StrategyByName(c.Strategy); err != nil {
		return &errors.ConfigError{
			Field:   "strategy",
			Value:   c.Strategy,
			Message: "unknown strategy",
			Hint:    "use forward or bidirectional",
		}
	}

	if c.Workers < 0 || c.Workers > DefaultMaxWorkers {
		return &errors.ConfigError{
			Field:   "workers",
			Value:   c.Workers,
			Message: "out of range",
			Hint:    "use 0 for one worker per CPU",
		}
	}
	if c.CacheSize < 0 {
		return &errors.ConfigError{Field: "cache", Value: c.CacheSize, Message: "must not be negative"}
	}
	if c.Retries < 0 {
		return &errors.ConfigError{Field: "retries", Value: c.Retries, Message: "must not be negative"}
	}
	if c.Timeout < 0 {
		return &errors.ConfigError{Field: "timeout", Value: c.Timeout, Message: "must not be negative"}
	}

	mode := c.Mode()
	if mode != ModeEval && c.Query != nil {
		return &errors.ConfigError{
			Field:   "query",
			Value:   c.Query.String(),
			Message: "positional query is not used in " + string(mode) + " mode",
			Hint:    "pipe queries on stdin or pass them with -i",
		}
	}
	if c.UDP && mode != ModeListen && mode != ModeConnect {
		return &errors.ConfigError{Field: "udp", Message: "only valid with -l or -c"}
	}
	if c.KeepOpen && mode != ModeListen {
		return &errors.ConfigError{Field: "keep-open", Message: "only valid with -l"}
	}

	switch mode {
	case ModeEval:
		return c.validateEval()
	case ModeListen:
		if c.LocalPort < 1 || c.LocalPort > 65535 {
			return &errors.ConfigError{
				Field:   "port",
				Value:   c.LocalPort,
				Message: "out of range 1-65535",
				Hint:    "use a port between 1 and 65535",
			}
		}
	case ModeConnect:
		host, port, err := util.ParseAddr(c.Connect)
		if err != nil {
			return &errors.ConfigError{
				Field:   "connect",
				Value:   c.Connect,
				Message: err.Error(),
				Hint:    "expected host:port, e.g. -c 127.0.0.1:7100",
			}
		}
		c.Host, c.Port = host, port
	}
	return nil
}

func (c *Config) validateEval() error {
	if c.Query == nil {
		return &errors.ConfigError{
			Field:   "query",
			Message: "FLAG is required",
			Hint:    "e.g. modefind 2 21 21 22, or -b to read queries from stdin",
		}
	}
	if c.Size >= 0 && c.Size > len(c.Query.Seq) {
		return &errors.ConfigError{
			Field:   "size",
			Value:   c.Size,
			Message: "exceeds the number of sequence values",
			Hint:    "size counts a prefix of the values given after FLAG",
		}
	}
	return nil
}
