package scanfilter

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with scan-specific context.
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
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithBlocklet adds a blocklet field to the logger.
func (l *Logger) WithBlocklet(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("blocklet", name),
	}
}

// WithPredicate adds the filtered column to the logger.
func (l *Logger) WithPredicate(column string) *Logger {
	return &Logger{
		Logger: l.Logger.With("column", column),
	}
}

// LogScan logs a scan over a set of blocklets.
func (l *Logger) LogScan(ctx context.Context, blocks, skipped, predicates int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "scan failed",
			"blocks", blocks,
			"predicates", predicates,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "scan completed",
			"blocks", blocks,
			"skipped", skipped,
			"predicates", predicates,
		)
	}
}

// LogEvaluate logs the evaluation of one predicate over one blocklet.
func (l *Logger) LogEvaluate(ctx context.Context, survivors int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "evaluate failed",
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "evaluate completed",
			"survivors", survivors,
		)
	}
}
