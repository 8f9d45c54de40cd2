// Package logger provides the process-wide structured logger.
//
// It wraps log/slog with a text handler on stderr whose level is read from OXY_LOG_LEVEL
// (debug, info, warn, error) at startup and can be changed at runtime with SetLevel.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// LevelEnv is the environment variable consulted for the initial log level.
const LevelEnv = "OXY_LOG_LEVEL"

var (
	level   = &slog.LevelVar{}
	current atomic.Pointer[slog.Logger]
)

func init() {
	if l, ok := ParseLevel(os.Getenv(LevelEnv)); ok {
		level.Set(l)
	}
	SetOutput(os.Stderr)
}

// ParseLevel maps a level name to a slog.Level.
//
// Parameters:
//   - name: debug, info, warn/warning or error, case-insensitive
//
// Returns:
//   - slog.Level: the parsed level
//   - bool: false if name is not recognized
func ParseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

// SetLevel changes the minimum level of every subsequent log call.
func SetLevel(l slog.Level) {
	level.Set(l)
}

// SetVerbose switches between debug and info level.
func SetVerbose(verbose bool) {
	if verbose {
		SetLevel(slog.LevelDebug)
		return
	}
	SetLevel(slog.LevelInfo)
}

// SetOutput redirects the logger to w, keeping the current level.
func SetOutput(w io.Writer) {
	current.Store(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// Logger returns the current process-wide logger.
func Logger() *slog.Logger {
	return current.Load()
}

// With returns a child logger that adds args to every record.
func With(args ...any) *slog.Logger {
	return Logger().With(args...)
}

// Debug logs at debug level. Args are key-value pairs.
func Debug(msg string, args ...any) {
	Logger().Debug(msg, args...)
}

// Info logs at info level. Args are key-value pairs.
func Info(msg string, args ...any) {
	Logger().Info(msg, args...)
}

// Warn logs at warn level. Args are key-value pairs.
func Warn(msg string, args ...any) {
	Logger().Warn(msg, args...)
}

// Error logs at error level. Args are key-value pairs.
func Error(msg string, args ...any) {
	Logger().Error(msg, args...)
}
