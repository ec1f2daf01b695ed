package logger

import (
	"context"

	"go.uber.org/zap"
)

// loggerKey keys the request-scoped logger in a context.
type loggerKey struct{}

// ContextWithLogger returns a child context carrying l.
func ContextWithLogger(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// FromContext returns the logger stored in ctx, or a no-op logger when
// none is present.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}
