package logger

import (
	"context"

	"go.uber.org/zap"
)

type loggerKey struct{}

// ToContext stores a request-scoped logger in the context.
func ToContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// FromContext extracts the request-scoped logger, or a no-op logger when
// none was stored.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}
