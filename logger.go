package logpool

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with logpool-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithPool adds the pool name to every record.
func (l *Logger) WithPool(pool string) *Logger {
	return &Logger{
		Logger: l.Logger.With("pool", pool),
	}
}

// LogRotation logs a staging file rotation.
func (l *Logger) LogRotation(ctx context.Context, path, reason string, size int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "rotation failed",
			"path", path,
			"reason", reason,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "rotated staging file",
			"path", path,
			"reason", reason,
			"bytes", size,
		)
	}
}

// LogUpload logs the outcome of one upload job.
func (l *Logger) LogUpload(ctx context.Context, key string, size int64, took time.Duration, skipped bool, err error) {
	switch {
	case err != nil:
		l.ErrorContext(ctx, "upload failed",
			"key", key,
			"bytes", size,
			"error", err,
		)
	case skipped:
		l.DebugContext(ctx, "discarded empty staging file",
			"key", key,
		)
	default:
		l.InfoContext(ctx, "uploaded staging file",
			"key", key,
			"bytes", size,
			"duration", took,
		)
	}
}

// LogRecovery logs a crash recovery pass.
func (l *Logger) LogRecovery(ctx context.Context, dir string, files int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "recovery failed",
			"dir", dir,
			"files", files,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "recovery completed",
			"dir", dir,
			"files", files,
		)
	}
}
