// Package logging is the structured-logging contract of the sync core. Every
// component takes a Logger; production wires SlogLogger, tests use Nop.
package logging

import "context"

// Logger is a context-aware, structured logger.
//
// Args are key/value pairs:
//
//	log.Info(ctx, "drain finished", "delivered", n, "failed", f)
//
// Components tag themselves once with With("component", name) at wiring time.
type Logger interface {
	// Debug is for chatty state: throttled status hits, skipped drains,
	// unsuccessful cache lookups.
	Debug(ctx context.Context, msg string, args ...any)

	// Info records lifecycle and transitions.
	Info(ctx context.Context, msg string, args ...any)

	// Warn records degraded but recoverable paths, such as a fallback store
	// answering or a flag that could not be persisted.
	Warn(ctx context.Context, msg string, args ...any)

	// Error records failures the caller cannot hide.
	Error(ctx context.Context, msg string, args ...any)

	With(args ...any) Logger
}
