// Package logging defines the structured-logging interface used across the
// client. The default implementation wraps log/slog.
package logging

import "context"

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "dream synced", "dream_id", id, "status", status)
type Logger interface {
	// Debug logs diagnostic detail (request traces, cache hits).
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs best-effort failures that are swallowed by design
	// (background sync, usage reporting, plan fallback).
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs failures surfaced to the user.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}
