package logger

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"cakewatch/pkg/logbuf"
	"cakewatch/pkg/trace"
)

// New builds the production logger. When buf is non-nil every entry is also
// appended to the diagnostic ring served by the status endpoint.
func New(buf *logbuf.Buffer) *zap.Logger {
	l, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	if buf == nil {
		return l
	}
	return l.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return zapcore.NewTee(c, logbuf.NewCore(buf, zapcore.InfoLevel))
	}))
}

// WithTrace attaches the request trace ID from ctx, if any.
func WithTrace(ctx context.Context, logger *zap.Logger) *zap.Logger {
	traceID := trace.FromContext(ctx)
	if traceID != "" {
		return logger.With(zap.String("trace_id", traceID))
	}
	return logger
}
