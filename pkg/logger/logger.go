package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	LevelCritical = slog.Level(12)
)

type Logger interface {
	Debug(message string, args ...any)
	Info(message string, args ...any)
	Warn(message string, args ...any)
	Error(message string, args ...any)
	Critical(message string, args ...any)
	BusinessError(message string, err error, args ...any)
	InternalError(message string, err error, args ...any)
	With(args ...any) Logger
}

type slogLogger struct {
	base *slog.Logger
}

// NewFromEnv builds the bootstrap logger used before configuration is loaded.
func NewFromEnv() Logger {
	return NewFromConfig(os.Getenv("ENV"), os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
}

// NewFromConfig builds the stdout logger from the loaded LOG_ settings. An
// empty level means debug in development and info elsewhere.
func NewFromConfig(env, level, format string) Logger {
	return New(os.Stdout, parseLevel(level, normalizeValue(env)), parseFormat(format))
}

// Discard returns a logger that writes nowhere, for tests and tooling.
func Discard() Logger {
	return New(io.Discard, slog.LevelError, "text")
}

func New(output io.Writer, level slog.Level, format string) Logger {
	options := &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceAttr,
	}

	var handler slog.Handler
	switch normalizeValue(format) {
	case "json":
		handler = slog.NewJSONHandler(output, options)
	default:
		handler = slog.NewTextHandler(output, options)
	}

	return &slogLogger{base: slog.New(handler)}
}

func (l *slogLogger) Debug(message string, args ...any) {
	l.base.Debug(message, args...)
}

func (l *slogLogger) Info(message string, args ...any) {
	l.base.Info(message, args...)
}

func (l *slogLogger) Warn(message string, args ...any) {
	l.base.Warn(message, args...)
}

func (l *slogLogger) Error(message string, args ...any) {
	l.base.Error(message, args...)
}

func (l *slogLogger) Critical(message string, args ...any) {
	l.base.Log(context.Background(), LevelCritical, message, args...)
}

func (l *slogLogger) BusinessError(message string, err error, args ...any) {
	if err == nil {
		return
	}

	attrs := append([]any{"err", err}, args...)
	l.base.Warn(message, attrs...)
}

func (l *slogLogger) InternalError(message string, err error, args ...any) {
	if err == nil {
		return
	}

	attrs := append([]any{"err", err}, args...)
	l.base.Error(message, attrs...)
}

func (l *slogLogger) With(args ...any) Logger {
	return &slogLogger{base: l.base.With(args...)}
}

func parseLevel(value string, env string) slog.Level {
	switch normalizeValue(value) {
	case "debug":
		return slog.LevelDebug
	case "info", "":
		if env == "development" {
			return slog.LevelDebug
		}
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "critical", "fatal":
		return LevelCritical
	default:
		if env == "development" {
			return slog.LevelDebug
		}
		return slog.LevelInfo
	}
}

func parseFormat(value string) string {
	switch normalizeValue(value) {
	case "json", "text":
		return normalizeValue(value)
	default:
		return "json"
	}
}

func normalizeValue(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// Attributes dropped from every record. Invitation codes and email addresses
// are masked instead so operators can still correlate entries.
var secretKeys = map[string]struct{}{
	"apikey":        {},
	"authorization": {},
	"password":      {},
	"token":         {},
}

func replaceAttr(_ []string, attr slog.Attr) slog.Attr {
	if _, ok := secretKeys[strings.ToLower(attr.Key)]; ok {
		return slog.String(attr.Key, "[redacted]")
	}

	switch attr.Key {
	case slog.LevelKey:
		return levelName(attr)
	case "code":
		return slog.String(attr.Key, MaskCode(attr.Value.String()))
	case "email", "to":
		return slog.String(attr.Key, maskEmail(attr.Value.String()))
	}
	return attr
}

func levelName(attr slog.Attr) slog.Attr {
	level, ok := attr.Value.Any().(slog.Level)
	if !ok {
		return attr
	}

	if level == LevelCritical {
		attr.Value = slog.StringValue("CRITICAL")
	}
	return attr
}

// MaskCode keeps the first two symbols of an invitation code and hides the
// rest, leaving separators in place.
func MaskCode(code string) string {
	var b strings.Builder
	kept := 0
	for _, r := range code {
		switch {
		case r == '-' || r == ' ':
			b.WriteRune(r)
		case kept < 2:
			b.WriteRune(r)
			kept++
		default:
			b.WriteByte('*')
		}
	}
	return b.String()
}

func maskEmail(address string) string {
	at := strings.LastIndex(address, "@")
	if at <= 0 {
		return MaskCode(address)
	}
	return address[:1] + "***" + address[at:]
}
