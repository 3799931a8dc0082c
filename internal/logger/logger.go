// Package logger provides structured logging for moodlens.
//
// It wraps log/slog with a process-wide logger configured from the LOG_LEVEL
// environment variable and adjustable from command-line flags.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

var (
	current atomic.Pointer[slog.Logger]
	level   slog.LevelVar
)

func init() {
	level.Set(ParseLevel(os.Getenv("LOG_LEVEL")))
	SetOutput(os.Stderr)
}

// ParseLevel maps a level name to a slog level. Unknown or empty names are info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetOutput redirects log output to w using a text handler.
func SetOutput(w io.Writer) {
	current.Store(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: &level})))
}

// SetLevel changes the minimum level for all subsequent log calls.
func SetLevel(l slog.Level) {
	level.Set(l)
}

// Level returns the current minimum level.
func Level() slog.Level {
	return level.Level()
}

// SetVerbose enables debug logging when verbose is true, otherwise info.
func SetVerbose(verbose bool) {
	if verbose {
		SetLevel(slog.LevelDebug)
	} else {
		SetLevel(slog.LevelInfo)
	}
}

// Logger returns the process-wide logger.
func Logger() *slog.Logger {
	return current.Load()
}

// With returns a logger carrying the given attributes, e.g. a component name.
func With(args ...any) *slog.Logger {
	return Logger().With(args...)
}

// Info logs at info level. Args are key/value pairs.
func Info(msg string, args ...any) {
	Logger().Info(msg, args...)
}

// Debug logs at debug level.
func Debug(msg string, args ...any) {
	Logger().Debug(msg, args...)
}

// Warn logs recoverable problems such as a skipped frame.
func Warn(msg string, args ...any) {
	Logger().Warn(msg, args...)
}

// Error logs failures that stop an operation.
func Error(msg string, args ...any) {
	Logger().Error(msg, args...)
}
