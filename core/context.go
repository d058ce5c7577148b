package core

import (
	"context"

	"github.com/shrek82/arecord/logger"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	traceIDKey
)

// WithRequestID tags statements run under ctx with a request id in the log.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// WithTraceID tags statements run under ctx with a trace id in the log.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceIDKey, id)
}

func loggerFrom(ctx context.Context, l logger.Logger) logger.Logger {
	fields := make(map[string]any)
	if id, ok := ctx.Value(requestIDKey).(string); ok && id != "" {
		fields["request_id"] = id
	}
	if id, ok := ctx.Value(traceIDKey).(string); ok && id != "" {
		fields["trace_id"] = id
	}
	if len(fields) == 0 {
		return l
	}
	return l.WithFields(fields)
}
