// Package logctx carries a zerolog logger through context.Context.
//
// The harness attaches a logger enriched with the strategy name and the
// iteration number; strategies pick it up to emit debug events:
//
//	ctx = logctx.ForStrategy(ctx, st.Name())
//	ctx = logctx.ForIteration(ctx, i)
//	...
//	logctx.FromContext(ctx).Debug().Int("chunks", n).Msg("chunked lookup done")
package logctx

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/eunmann/pg-keybench/pkg/logging"
)

// loggerKey is the private key type for storing loggers in context.
type loggerKey struct{}

// WithLogger returns a new context with the given logger attached.
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext extracts the logger from the context. Without one it returns
// the process-wide logger from pkg/logging.
func FromContext(ctx context.Context) zerolog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(loggerKey{}).(zerolog.Logger); ok {
			return logger
		}
	}
	return *logging.L()
}

// WithStr returns a new context with a logger that has the specified string field added.
func WithStr(ctx context.Context, key, value string) context.Context {
	logger := FromContext(ctx).With().Str(key, value).Logger()
	return WithLogger(ctx, logger)
}

// WithInt returns a new context with a logger that has the specified int field added.
func WithInt(ctx context.Context, key string, value int) context.Context {
	logger := FromContext(ctx).With().Int(key, value).Logger()
	return WithLogger(ctx, logger)
}

// ForStrategy tags the context logger with the strategy being measured.
func ForStrategy(ctx context.Context, name string) context.Context {
	return WithStr(ctx, "strategy", name)
}

// ForIteration tags the context logger with a 1-based iteration number.
func ForIteration(ctx context.Context, iteration int) context.Context {
	return WithInt(ctx, "iteration", iteration)
}
