// Package svcctx carries shared services through context so components
// don't need wiring-specific constructors.
package svcctx

import (
	"context"
	"log/slog"
)

type loggerKey struct{}

// WithLogger returns a new context with the logger attached.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// LoggerFrom extracts the logger from context.
// Returns slog.Default() if none is attached so callers can always log.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return slog.Default()
}
