package frozen

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with frozen-specific context.
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
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithTable adds a table field to the logger.
func (l *Logger) WithTable(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("table", name),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogLoad logs the initial load of a table.
func (l *Logger) LogLoad(ctx context.Context, table string, records int, checksum uint32, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load failed",
			"table", table,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "table loaded",
			"table", table,
			"records", records,
			"checksum", checksum,
		)
	}
}

// LogReload logs a reload attempt.
func (l *Logger) LogReload(ctx context.Context, table string, changed bool, records int, err error) {
	switch {
	case err != nil:
		l.ErrorContext(ctx, "reload failed",
			"table", table,
			"error", err,
		)
	case changed:
		l.InfoContext(ctx, "table reloaded",
			"table", table,
			"records", records,
		)
	default:
		l.DebugContext(ctx, "table unchanged",
			"table", table,
		)
	}
}

// LogQuery logs a terminal query operation.
func (l *Logger) LogQuery(ctx context.Context, table, op string, rows int, d time.Duration, err error) {
	if err != nil {
		l.DebugContext(ctx, "query failed",
			"table", table,
			"op", op,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "query completed",
			"table", table,
			"op", op,
			"rows", rows,
			"duration", d,
		)
	}
}
