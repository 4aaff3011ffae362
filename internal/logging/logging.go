// Package logging configures the process logger and carries it through
// contexts.
package logging

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the root logger. Format "json" emits structured lines for log
// shippers; anything else gets a human readable console writer.
func New(level, format string) zerolog.Logger {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil || parsed == zerolog.NoLevel {
		parsed = zerolog.InfoLevel
	}

	var out io.Writer = os.Stderr
	if format != "json" {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).Level(parsed).With().Timestamp().Logger()
}

type contextKey struct{}

// ContextWithLogger returns a derived context that carries the provided logger.
func ContextWithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	if ctx == nil {
		return ctx
	}
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext extracts a logger previously attached to the context, falling
// back to a disabled logger.
func FromContext(ctx context.Context) zerolog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(contextKey{}).(zerolog.Logger); ok {
			return logger
		}
	}
	return zerolog.Nop()
}
