// Package logging defines the small structured-logging contract the server
// components depend on, decoupled from any concrete logging backend.
package logging

import "context"

// Logger is a context-aware structured logger. The variadic args are
// alternating key-value pairs:
//
//	log.Info(ctx, "starting server", "addr", addr)
type Logger interface {
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger carrying the given key-value pairs on
	// every record.
	With(args ...any) Logger
}
