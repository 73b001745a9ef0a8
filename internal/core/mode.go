// Package core is the orchestration layer.  It composes transports
// and capabilities into complete operational modes and provides a
// builder that selects the right mode from a Config.
//
// Architecture layers (bottom → top):
//
//	finder  →  query/cache/batch  →  transport/capability/session  →  core  →  cmd
//
// Build is the single dispatch point between a validated Config and
// the mode that runs it.
package core

import "context"

// Mode represents a complete operational mode of modefind (eval,
// batch, listen or connect).  Each mode owns its full lifecycle from
// reading input to flushing the last answer.
type Mode interface {
	Run(ctx context.Context) error
}
