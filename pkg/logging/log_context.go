package logging

import (
	"context"

	"go.uber.org/zap"
)

type loggerKey struct{}

// GetLogger returns the logger carried by `ctx`, falling back to the global logger.
func GetLogger(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok && l != nil {
		return l
	}
	return zap.L()
}

func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// WithFields returns a context whose logger adds `fields` to every entry, so collaborators called with it
// log which resource they are working on without being told.
func WithFields(ctx context.Context, fields ...zap.Field) context.Context {
	if len(fields) == 0 {
		return ctx
	}
	return WithLogger(ctx, GetLogger(ctx).With(fields...))
}
