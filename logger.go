package scango

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with scango-specific context.
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

// WithGraph adds vertex and edge count fields to the logger.
func (l *Logger) WithGraph(vertices, edges int) *Logger {
	return &Logger{
		Logger: l.Logger.With("vertices", vertices, "edges", edges),
	}
}

// WithMeasure adds a similarity measure field to the logger.
func (l *Logger) WithMeasure(measure string) *Logger {
	return &Logger{
		Logger: l.Logger.With("measure", measure),
	}
}

// LogBuild logs an index construction.
func (l *Logger) LogBuild(ctx context.Context, vertices, edges int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "index build failed",
			"vertices", vertices,
			"edges", edges,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "index build completed",
			"vertices", vertices,
			"edges", edges,
			"duration", duration,
		)
	}
}

// LogCluster logs a clustering query.
func (l *Logger) LogCluster(ctx context.Context, mu int, epsilon float32, clusters int, duration time.Duration) {
	l.DebugContext(ctx, "cluster query completed",
		"mu", mu,
		"epsilon", epsilon,
		"clusters", clusters,
		"duration", duration,
	)
}

// LogSnapshot logs a snapshot save or load.
func (l *Logger) LogSnapshot(ctx context.Context, op, name string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot "+op+" failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot "+op+" completed",
			"name", name,
		)
	}
}
