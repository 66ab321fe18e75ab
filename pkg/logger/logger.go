package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger is a thin structured logger. Args are slog key/value pairs.
type Logger struct {
	l *slog.Logger
}

// New returns an info-level text logger on stderr.
func New() *Logger { return NewWithOptions(os.Stderr, "info", "text") }

// NewWithOptions builds a logger writing to w at level ("debug", "info",
// "warn", "error") using the "text" or "json" format.
func NewWithOptions(w io.Writer, level, format string) *Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	var h slog.Handler
	if strings.EqualFold(format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return &Logger{l: slog.New(h)}
}

// Discard drops everything. Handy in tests.
func Discard() *Logger { return NewWithOptions(io.Discard, "error", "text") }

// ParseLevel maps a level name to slog; unknown names mean info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// With returns a logger that adds args to every record.
func (l *Logger) With(args ...any) *Logger { return &Logger{l: l.l.With(args...)} }

func (l *Logger) Debug(msg string, args ...any) { l.l.Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.l.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.l.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.l.Error(msg, args...) }
