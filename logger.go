package supercluster

import (
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with engine-specific helpers.
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

// WithZoom adds a zoom field to the logger.
func (l *Logger) WithZoom(zoom float64) *Logger {
	return &Logger{
		Logger: l.Logger.With("zoom", zoom),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogLoad logs a load operation.
func (l *Logger) LogLoad(rows, indexed int, duration time.Duration, err error) {
	if err != nil {
		l.Error("load failed",
			"rows", rows,
			"error", err,
		)
	} else {
		l.Debug("load completed",
			"rows", rows,
			"indexed", indexed,
			"duration", duration,
		)
	}
}

// LogClusters logs a cluster query.
func (l *Logger) LogClusters(zoom float64, results int, duration time.Duration) {
	l.Debug("clusters query completed",
		"zoom", zoom,
		"results", results,
		"duration", duration,
	)
}

// LogChildren logs a children lookup.
func (l *Logger) LogChildren(clusterID int64, results int, duration time.Duration) {
	l.Debug("children lookup completed",
		"cluster_id", clusterID,
		"results", results,
		"duration", duration,
	)
}

// LogLeaves logs a leaves lookup.
func (l *Logger) LogLeaves(clusterID int64, results int, duration time.Duration) {
	l.Debug("leaves lookup completed",
		"cluster_id", clusterID,
		"results", results,
		"duration", duration,
	)
}

// LogExpansionZoom logs an expansion zoom lookup.
func (l *Logger) LogExpansionZoom(clusterID int64, zoom int, duration time.Duration) {
	l.Debug("expansion zoom lookup completed",
		"cluster_id", clusterID,
		"zoom", zoom,
		"duration", duration,
	)
}

// LogTile logs a tile query.
func (l *Logger) LogTile(z, x, y, results int, duration time.Duration) {
	l.Debug("tile query completed",
		"z", z,
		"x", x,
		"y", y,
		"results", results,
		"duration", duration,
	)
}
