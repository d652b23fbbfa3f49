package vecsearch

import (
	"context"
	"log/slog"
	"os"

	"github.com/hupe1980/vecsearch/index"
)

// Logger wraps slog.Logger with engine-specific context.
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

// WithLibrary adds a library field to the logger.
func (l *Logger) WithLibrary(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("library", id),
	}
}

// WithIndex adds an index type field to the logger.
func (l *Logger) WithIndex(t index.Type) *Logger {
	return &Logger{
		Logger: l.Logger.With("index", t.String()),
	}
}

// WithK adds a k (result count) field to the logger.
func (l *Logger) WithK(k int) *Logger {
	return &Logger{
		Logger: l.Logger.With("k", k),
	}
}

// WithDimension adds a dimension field to the logger.
func (l *Logger) WithDimension(dim int) *Logger {
	return &Logger{
		Logger: l.Logger.With("dimension", dim),
	}
}

// LogBuild logs an index build operation.
func (l *Logger) LogBuild(ctx context.Context, libraryID string, indexed, skipped int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "index build failed",
			"library", libraryID,
			"error", err,
		)
	} else if skipped > 0 {
		l.WarnContext(ctx, "index build completed with skipped records",
			"library", libraryID,
			"indexed", indexed,
			"skipped", skipped,
		)
	} else {
		l.InfoContext(ctx, "index build completed",
			"library", libraryID,
			"indexed", indexed,
		)
	}
}

// LogSearch logs a search operation.
func (l *Logger) LogSearch(ctx context.Context, libraryID string, k, resultsFound int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "search failed",
			"library", libraryID,
			"k", k,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "search completed",
			"library", libraryID,
			"k", k,
			"results", resultsFound,
		)
	}
}

// LogSkippedRecord logs a record excluded from an index build.
func (l *Logger) LogSkippedRecord(ctx context.Context, libraryID, recordID, reason string) {
	l.WarnContext(ctx, "record skipped",
		"library", libraryID,
		"record", recordID,
		"reason", reason,
	)
}

// LogEmbedding logs an embedding call.
func (l *Logger) LogEmbedding(ctx context.Context, chars int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "embedding failed",
			"chars", chars,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "embedding completed",
			"chars", chars,
		)
	}
}
