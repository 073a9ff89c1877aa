package requestctx

import (
	"context"
	"log/slog"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	toolKey
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func GetRequestID(ctx context.Context) string {
	if value, ok := ctx.Value(requestIDKey).(string); ok {
		return value
	}
	return ""
}

// WithTool records which operation is being served, for log correlation.
func WithTool(ctx context.Context, tool string) context.Context {
	return context.WithValue(ctx, toolKey, tool)
}

func GetTool(ctx context.Context) string {
	if value, ok := ctx.Value(toolKey).(string); ok {
		return value
	}
	return ""
}

// LogAttrs returns the correlation attributes present on ctx.
func LogAttrs(ctx context.Context) []slog.Attr {
	var attrs []slog.Attr
	if id := GetRequestID(ctx); id != "" {
		attrs = append(attrs, slog.String("requestId", id))
	}
	if tool := GetTool(ctx); tool != "" {
		attrs = append(attrs, slog.String("tool", tool))
	}
	return attrs
}
