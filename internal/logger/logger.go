package logger

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	// Global logger instance
	globalLogger *slog.Logger
	// Log level controlled by environment variable
	logLevel slog.Level
	// Whether detailed logging is enabled
	detailedLogging bool
)

// LogConfig holds logging configuration
type LogConfig struct {
	Level           string // DEBUG, INFO, WARN, ERROR
	Format          string // json or text
	DetailedLogging bool   // Enable detailed logs
}

// Init initializes the global logger based on environment variables
func Init() error {
	return InitWithConfig(LoadConfigFromEnv())
}

// LoadConfigFromEnv loads logging configuration from environment variables
func LoadConfigFromEnv() LogConfig {
	return LogConfig{
		Level:           getEnvOrDefault("LOG_LEVEL", "INFO"),
		Format:          getEnvOrDefault("LOG_FORMAT", "json"),
		DetailedLogging: getEnvOrDefault("LOG_DETAILED", "false") == "true",
	}
}

// InitWithConfig initializes the logger with specific configuration
func InitWithConfig(config LogConfig) error {
	logLevel = parseLogLevel(config.Level)
	detailedLogging = config.DetailedLogging

	// Source information is added manually in logWithTrace so the caller
	// location survives the wrapper functions.
	opts := &slog.HandlerOptions{
		Level:     logLevel,
		AddSource: false,
	}

	var handler slog.Handler
	if config.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
	return nil
}

// parseLogLevel converts string log level to slog.Level
func parseLogLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// getEnvOrDefault gets environment variable or returns default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getTraceAttrs extracts trace ID and span ID from context for logging
func getTraceAttrs(ctx context.Context) []any {
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return nil
	}

	return []any{
		"trace_id", span.SpanContext().TraceID().String(),
		"span_id", span.SpanContext().SpanID().String(),
	}
}

// Debug logs a debug message
func Debug(ctx context.Context, msg string, args ...any) {
	if !detailedLogging {
		return
	}
	logWithTrace(ctx, slog.LevelDebug, msg, 2, args...)
}

// DebugSkip logs a debug message attributed to a caller further up the
// stack; middleware wrappers pass extra=1 to report their own caller.
func DebugSkip(ctx context.Context, extra int, msg string, args ...any) {
	if !detailedLogging {
		return
	}
	logWithTrace(ctx, slog.LevelDebug, msg, 2+extra, args...)
}

// Info logs an info message
func Info(ctx context.Context, msg string, args ...any) {
	logWithTrace(ctx, slog.LevelInfo, msg, 2, args...)
}

// InfoSkip logs an info message attributed to a caller further up the stack
func InfoSkip(ctx context.Context, extra int, msg string, args ...any) {
	logWithTrace(ctx, slog.LevelInfo, msg, 2+extra, args...)
}

// Warn logs a warning message
func Warn(ctx context.Context, msg string, args ...any) {
	logWithTrace(ctx, slog.LevelWarn, msg, 2, args...)
}

// WarnSkip logs a warning message attributed to a caller further up the stack
func WarnSkip(ctx context.Context, extra int, msg string, args ...any) {
	logWithTrace(ctx, slog.LevelWarn, msg, 2+extra, args...)
}

// Error logs an error message
func Error(ctx context.Context, msg string, args ...any) {
	logWithTrace(ctx, slog.LevelError, msg, 2, args...)
}

// ErrorWithErr logs an error message with an error object
func ErrorWithErr(ctx context.Context, msg string, err error, args ...any) {
	recordSpanError(ctx, err)
	allArgs := append([]any{"error", err}, args...)
	logWithTrace(ctx, slog.LevelError, msg, 2, allArgs...)
}

// ErrorWithErrSkip is ErrorWithErr attributed to a caller further up the stack
func ErrorWithErrSkip(ctx context.Context, extra int, msg string, err error, args ...any) {
	recordSpanError(ctx, err)
	allArgs := append([]any{"error", err}, args...)
	logWithTrace(ctx, slog.LevelError, msg, 2+extra, allArgs...)
}

func recordSpanError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// logWithTrace logs a message with trace ID and span ID if available
// skip parameter indicates how many stack frames to skip to get the actual caller
func logWithTrace(ctx context.Context, level slog.Level, msg string, skip int, args ...any) {
	if traceAttrs := getTraceAttrs(ctx); traceAttrs != nil {
		args = append(traceAttrs, args...)
	}

	// Add source information if detailed logging is enabled
	if detailedLogging {
		if pc, file, line, ok := runtime.Caller(skip); ok {
			fn := runtime.FuncForPC(pc)
			if fn != nil {
				args = append(args, "source", slog.GroupValue(
					slog.String("function", fn.Name()),
					slog.String("file", file),
					slog.Int("line", line),
				))
			}
		}
	}

	if globalLogger == nil {
		slog.Log(ctx, level, msg, args...)
		return
	}
	globalLogger.Log(ctx, level, msg, args...)
}

// Decision logs a trading decision (always logged regardless of level)
func Decision(ctx context.Context, symbol string, side string, reason string, fields ...any) {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		span.AddEvent("trading_decision", trace.WithAttributes(
			attribute.String("symbol", symbol),
			attribute.String("side", side),
			attribute.String("reason", reason),
		))
	}

	allFields := append([]any{
		"type", "DECISION",
		"symbol", symbol,
		"side", side,
		"reason", reason,
	}, fields...)
	logWithTrace(ctx, slog.LevelInfo, "Trading decision made", 2, allFields...)
}

// Trade logs an order submission (always logged regardless of level)
func Trade(ctx context.Context, symbol string, side string, qty, price float64, orderID int64, fields ...any) {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		span.AddEvent("order_submitted", trace.WithAttributes(
			attribute.String("symbol", symbol),
			attribute.String("side", side),
			attribute.Float64("quantity", qty),
			attribute.Float64("price", price),
			attribute.Int64("order_id", orderID),
		))
	}

	allFields := append([]any{
		"type", "TRADE",
		"symbol", symbol,
		"side", side,
		"quantity", qty,
		"price", price,
		"order_id", orderID,
	}, fields...)
	logWithTrace(ctx, slog.LevelInfo, "Order submitted", 2, allFields...)
}

// IsDebugEnabled returns whether debug logging is enabled
func IsDebugEnabled() bool {
	return detailedLogging
}
