// Package logging declares the structured logger the service components are
// wired with. Keeping it an interface keeps the slog dependency at the edges;
// the rest of the tree only sees Logger.
package logging

import "context"

// Logger is a context-aware structured logger. Variadic args are key–value
// pairs:
//
//	log.Info(ctx, "starting HTTP server", "address", addr)
type Logger interface {
	// Info records normal operational events.
	Info(ctx context.Context, msg string, args ...any)

	// Warn records unusual but recoverable conditions (e.g. a rejected
	// verification token).
	Warn(ctx context.Context, msg string, args ...any)

	// Error records failures that need attention.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a derived logger carrying the given key–value pairs on
	// every record; components tag themselves with With("module", ...).
	With(args ...any) Logger
}
