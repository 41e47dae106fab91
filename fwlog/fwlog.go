// Package fwlog wraps log/slog the way the teacher's core package does
// (core/util.go): a custom trace level plus a qualified-name-scoped
// logger for every framework element, so log lines read "element path:
// message" without every call site formatting that by hand.
package fwlog

import (
	"context"
	"log/slog"
)

// LevelTrace sits below Debug, for the publish/pull hot path — noisy
// enough that it stays off by default in any real deployment.
const LevelTrace = slog.Level(-8)

// Scoped returns a logger that tags every record with the owning
// element's qualified name, the way a finstructable group's descendants
// should be traceable back to where they live in the tree.
func Scoped(base *slog.Logger, qualifiedName string) *slog.Logger {
	if base == nil {
		base = slog.Default()
	}
	return base.With(slog.String("element", qualifiedName))
}

// Trace logs at LevelTrace against the given logger.
func Trace(logger *slog.Logger, msg string, args ...any) {
	logger.Log(context.Background(), LevelTrace, msg, args...)
}
