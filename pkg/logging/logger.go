package logging

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
)

// Logger wraps slog.Logger and attaches the request's correlation ID to every
// record when one is present in the context.
type Logger struct {
	*slog.Logger
}

// Config holds logger settings.
type Config struct {
	Level  string // "debug", "info", "warn", "error"
	Format string // "json", "text"
	Output io.Writer
}

type contextKey string

const correlationIDKey contextKey = "correlation_id"

func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	opts := &slog.HandlerOptions{
		Level: parseLevel(cfg.Level),
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(cfg.Output, opts)
	} else {
		handler = slog.NewTextHandler(cfg.Output, opts)
	}

	return &Logger{Logger: slog.New(handler)}
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithCorrelationID returns a context carrying a fresh correlation ID, unless
// one is already set.
func WithCorrelationID(ctx context.Context) context.Context {
	if GetCorrelationID(ctx) != "" {
		return ctx
	}
	return context.WithValue(ctx, correlationIDKey, uuid.New().String())
}

// GetCorrelationID retrieves the correlation ID from context, or "".
func GetCorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey).(string); ok {
		return id
	}
	return ""
}

func (l *Logger) Debug(ctx context.Context, msg string, args ...any) {
	l.Logger.Debug(msg, withCorrelation(ctx, args)...)
}

func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	l.Logger.Info(msg, withCorrelation(ctx, args)...)
}

func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	l.Logger.Warn(msg, withCorrelation(ctx, args)...)
}

func (l *Logger) Error(ctx context.Context, msg string, args ...any) {
	l.Logger.Error(msg, withCorrelation(ctx, args)...)
}

func withCorrelation(ctx context.Context, args []any) []any {
	if id := GetCorrelationID(ctx); id != "" {
		return append(args, "correlation_id", id)
	}
	return args
}

// LogLinkOperation records a link mutation. Codes are safe to log; target
// URLs are not logged on this path.
func (l *Logger) LogLinkOperation(ctx context.Context, operation, code string, success bool) {
	l.Info(ctx, "link operation",
		"operation", operation,
		"code", code,
		"success", success,
	)
}
