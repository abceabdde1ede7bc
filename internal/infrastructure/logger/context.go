package logger

import (
	"context"

	"go.uber.org/zap"
)

// contextKey is a type for context keys used by the logger package
type contextKey string

const (
	// LoggerKey is the context key for the logger
	LoggerKey contextKey = "logger"
	// RunIDKey is the context key for the sync run id
	RunIDKey contextKey = "run_id"
	// ShopKey is the context key for the shop a run is working on behalf of
	ShopKey contextKey = "shop"
)

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// FromContext retrieves the logger from context; a missing logger degrades to
// a no-op logger rather than a nil panic somewhere downstream
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(LoggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// WithRunID tags the context and logger with the sync run id. Every log line
// of one run carries the same id, which is how operators stitch a run's story
// back together.
func WithRunID(ctx context.Context, logger *zap.Logger, runID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, RunIDKey, runID)
	enriched := logger.With(zap.String("run_id", runID))
	return WithContext(ctx, enriched), enriched
}

// WithShop tags the context and logger with the shop identifier
func WithShop(ctx context.Context, logger *zap.Logger, shop string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, ShopKey, shop)
	enriched := logger.With(zap.String("shop", shop))
	return WithContext(ctx, enriched), enriched
}

// GetRunID retrieves the sync run id from context
func GetRunID(ctx context.Context) string {
	if runID, ok := ctx.Value(RunIDKey).(string); ok {
		return runID
	}
	return ""
}

// GetShop retrieves the shop identifier from context
func GetShop(ctx context.Context) string {
	if shop, ok := ctx.Value(ShopKey).(string); ok {
		return shop
	}
	return ""
}

// L returns the context's logger. The WithRunID and WithShop helpers already
// fold their fields into the stored logger, so L is a plain accessor.
// Usage: logger.L(ctx).Info("message", ...).
func L(ctx context.Context) *zap.Logger {
	return FromContext(ctx)
}
