package log

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/rs/zerolog"

	scierrors "github.com/YuminosukeSato/nameml/pkg/errors"
)

// Output formats accepted by SetupLogger.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
	FormatCloud   = "cloud"
)

// SetupLogger installs the process-wide provider for the given level name
// ("debug", "info", "warn", "error") and format.
//
// json and console use zerolog on stderr. cloud uses a slog JSON handler on
// stdout with Cloud Logging field names, wrapped by ErrFmtHandler.
func SetupLogger(level, format string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}

	switch strings.ToLower(format) {
	case "", FormatJSON:
		SetProvider(NewZerologProvider(os.Stderr, lvl))
	case FormatConsole:
		SetProvider(NewZerologProvider(zerolog.ConsoleWriter{Out: os.Stderr}, lvl))
	case FormatCloud:
		p := NewSlogProvider(newCloudHandler(lvl), lvl)
		slog.SetDefault(slog.New(p.handler))
		SetProvider(p)
	default:
		return scierrors.NewValidationError("log_format", "must be one of json, console, cloud", format)
	}
	return nil
}

// ParseLevel converts a level name into a Level.
func ParseLevel(level string) (Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, scierrors.NewValidationError("log_level", "must be one of debug, info, warn, error", level)
	}
}

func newCloudHandler(level Level) slog.Handler {
	ops := slog.HandlerOptions{
		AddSource: true,
		Level:     slog.Level(level),
		// Cloud Logging field names.
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.LevelKey:
				attr = slog.Attr{Key: "severity", Value: attr.Value}
			case slog.MessageKey:
				attr = slog.Attr{Key: "message", Value: attr.Value}
			case slog.SourceKey:
				attr = slog.Attr{Key: "logging.googleapis.com/sourceLocation", Value: attr.Value}
			}
			return attr
		},
	}
	return WrapByErrFmtHandler(slog.NewJSONHandler(os.Stdout, &ops))
}

// SlogLogger adapts a *slog.Logger to Logger.
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger wraps handler in a Logger.
func NewSlogLogger(handler slog.Handler) *SlogLogger {
	return &SlogLogger{logger: slog.New(handler)}
}

// Debug implements Logger.Debug.
func (l *SlogLogger) Debug(msg string, fields ...any) { l.logger.Debug(msg, fields...) }

// Info implements Logger.Info.
func (l *SlogLogger) Info(msg string, fields ...any) { l.logger.Info(msg, fields...) }

// Warn implements Logger.Warn.
func (l *SlogLogger) Warn(msg string, fields ...any) { l.logger.Warn(msg, fields...) }

// Error implements Logger.Error.
func (l *SlogLogger) Error(msg string, fields ...any) { l.logger.Error(msg, fields...) }

// With implements Logger.With.
func (l *SlogLogger) With(fields ...any) Logger {
	return &SlogLogger{logger: l.logger.With(fields...)}
}

// Enabled implements Logger.Enabled.
func (l *SlogLogger) Enabled(ctx context.Context, level Level) bool {
	return l.logger.Enabled(ctx, slog.Level(level))
}

// SlogProvider is a LoggerProvider backed by a slog.Handler. The level is
// enforced by a leveled handler so SetLevel takes effect immediately.
type SlogProvider struct {
	handler slog.Handler
	level   *slog.LevelVar
}

// NewSlogProvider creates a provider that filters handler at level.
func NewSlogProvider(handler slog.Handler, level Level) *SlogProvider {
	lv := new(slog.LevelVar)
	lv.Set(slog.Level(level))
	return &SlogProvider{handler: &leveledHandler{Handler: handler, level: lv}, level: lv}
}

// GetLogger implements LoggerProvider.GetLogger.
func (p *SlogProvider) GetLogger() Logger { return NewSlogLogger(p.handler) }

// GetLoggerWithName implements LoggerProvider.GetLoggerWithName.
func (p *SlogProvider) GetLoggerWithName(name string) Logger {
	return p.GetLogger().With(ComponentKey, name)
}

// SetLevel implements LoggerProvider.SetLevel.
func (p *SlogProvider) SetLevel(level Level) { p.level.Set(slog.Level(level)) }

type leveledHandler struct {
	slog.Handler
	level slog.Leveler
}

func (h *leveledHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return l >= h.level.Level() && h.Handler.Enabled(ctx, l)
}

func (h *leveledHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &leveledHandler{Handler: h.Handler.WithAttrs(attrs), level: h.level}
}

func (h *leveledHandler) WithGroup(name string) slog.Handler {
	return &leveledHandler{Handler: h.Handler.WithGroup(name), level: h.level}
}

const (
	// ErrAttrKey is the conventional key for error values.
	ErrAttrKey = "error"
	// StacktraceAttrKey is added by ErrFmtHandler.
	StacktraceAttrKey = "stacktrace"
	// WarningKey carries a warning passed to errors.Warn.
	WarningKey = "warning"
)

// ErrAttr is a helper to pass err to slog.
func ErrAttr(err error) slog.Attr {
	return slog.Any(ErrAttrKey, err)
}
