// Package errors provides domain-specific error types for modefind.
//
// These types carry structured context (operation, field, line number,
// retryability) that helps callers decide how to handle failures and
// provides better diagnostics than plain string wrapping.
package errors

import (
	"errors"
	"fmt"
	"net"
)

// ── Sentinel errors ──────────────────────────────────────────────────

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrEmptyQuery      = errors.New("empty query")
	ErrSyntax          = errors.New("syntax error")
	ErrUnknownStrategy = errors.New("unknown strategy")
	ErrNotConnected    = errors.New("not connected")
)

// ── Structured error types ───────────────────────────────────────────

// ArgumentError reports a violated precondition of a finder call.
type ArgumentError struct {
	Op    string // "find", "decode"
	Field string // "size", "seq", "buf"
	Value interface{}
	Err   error // usually ErrInvalidArgument
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%s: %s=%v: %v", e.Op, e.Field, e.Value, e.Err)
}

func (e *ArgumentError) Unwrap() error { return e.Err }

// ParseError represents a malformed query line.  Line is 1-based and
// zero when the input was not read from a multi-line source.
type ParseError struct {
	Line  int
	Field string // offending token, if any
	Err   error
}

func (e *ParseError) Error() string {
	s := "parse"
	if e.Line > 0 {
		s += fmt.Sprintf(" line %d", e.Line)
	}
	if e.Field != "" {
		s += fmt.Sprintf(" %q", e.Field)
	}
	return s + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }

// NetworkError represents a failure in a network operation.
type NetworkError struct {
	Op        string // operation: "dial", "listen", "accept", "write", "read"
	Addr      string // network address involved
	Err       error  // underlying error
	Retryable bool   // whether the caller should retry
}

func (e *NetworkError) Error() string {
	s := fmt.Sprintf("%s %s: %v", e.Op, e.Addr, e.Err)
	if e.Retryable {
		s += " (retryable)"
	}
	return s
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ConfigError represents an invalid configuration value.
type ConfigError struct {
	Field   string      // config field name
	Value   interface{} // the invalid value (nil if missing)
	Message string      // human-readable explanation
	Hint    string      // suggestion for the user (optional)
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("config: --%s", e.Field)
	if e.Value != nil {
		msg += fmt.Sprintf("=%v", e.Value)
	}
	msg += ": " + e.Message
	if e.Hint != "" {
		msg += "\n  hint: " + e.Hint
	}
	return msg
}

// ── Constructors ─────────────────────────────────────────────────────

// Invalid creates an ArgumentError wrapping ErrInvalidArgument.
func Invalid(op, field string, value interface{}) *ArgumentError {
	return &ArgumentError{Op: op, Field: field, Value: value, Err: ErrInvalidArgument}
}

// Wrap creates a NetworkError, automatically detecting retryability
// from the underlying error.
func Wrap(op, addr string, err error) *NetworkError {
	return &NetworkError{
		Op:        op,
		Addr:      addr,
		Err:       err,
		Retryable: classifyRetryable(err),
	}
}

// ── Classification helpers ───────────────────────────────────────────

// IsInvalidArgument reports whether err stems from a violated
// precondition.
func IsInvalidArgument(err error) bool { return errors.Is(err, ErrInvalidArgument) }

// IsRetryable reports whether err is worth retrying.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var ne *NetworkError
	if errors.As(err, &ne) {
		return ne.Retryable
	}
	return classifyRetryable(err)
}

// classifyRetryable inspects standard library error types.  Refused
// and reset connections count as retryable so a client can wait for a
// server that is still starting.  A host that does not resolve never
// will, so DNS errors are judged before the dial shortcut.
func classifyRetryable(err error) bool {
	if err == nil {
		return false
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsNotFound {
			return false
		}
		return dnsErr.Temporary() //nolint:staticcheck // Temporary is deprecated but still useful
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Op == "dial" {
			return true
		}
		return opErr.Temporary() //nolint:staticcheck
	}
	return false
}

// ── Re-exports for convenience ───────────────────────────────────────
//
// These allow callers to use modefind/internal/errors as a drop-in
// replacement for the standard library in common operations.

// As is [errors.As].
func As(err error, target interface{}) bool { return errors.As(err, target) }

// Is is [errors.Is].
func Is(err, target error) bool { return errors.Is(err, target) }

// New is [errors.New].
func New(text string) error { return errors.New(text) }

// Unwrap is [errors.Unwrap].
func Unwrap(err error) error { return errors.Unwrap(err) }

// Join is [errors.Join].
func Join(errs ...error) error { return errors.Join(errs...) }
