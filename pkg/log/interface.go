// Package log provides the structured logging interface used across nameml.
//
// The Logger interface is slog-compatible so the backend can be swapped
// without touching call sites. The default backend is zerolog; a slog JSON
// backend emitting Cloud Logging field names is available through
// SetupLogger. Standard attribute keys live in attributes.go.
//
// Example usage:
//
//	logger := log.GetLoggerWithName("ensemble.random_forest").With(
//	    log.ModelNameKey, "RandomForestClassifier",
//	)
//	logger.Info("Training started",
//	    log.OperationKey, log.OperationFit,
//	    log.SamplesKey, 16,
//	)
package log

import (
	"context"
)

// Logger is a structured logger with slog-style key/value fields.
//
// Errors are passed as ordinary values, conventionally under ErrAttrKey:
//
//	logger.Error("Training failed", log.ErrAttrKey, err)
//
// Backends attach the cockroachdb/errors stack trace when one is present.
type Logger interface {
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Warn(msg string, fields ...any)
	Error(msg string, fields ...any)

	// With returns a Logger that adds fields to every record.
	With(fields ...any) Logger

	// Enabled reports whether records at level would be emitted, so callers
	// can skip building expensive fields.
	Enabled(ctx context.Context, level Level) bool
}

// Level is a logging level. Values match slog.Level.
type Level int

const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

// String returns the upper-case level name.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LoggerProvider creates loggers sharing one backend and level.
type LoggerProvider interface {
	// GetLogger returns the root logger.
	GetLogger() Logger

	// GetLoggerWithName returns a logger tagged with ComponentKey=name.
	GetLoggerWithName(name string) Logger

	// SetLevel sets the minimum level for loggers created afterwards.
	SetLevel(level Level)
}
