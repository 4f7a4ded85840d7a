// Package logging provides structured logging using Go's slog package.
//
// Loggers are created once per process by the command entry point and passed
// to every component that logs; nothing in this package keeps global state.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Level represents a log level.
type Level int

const (
	// LevelDebug is for debug messages.
	LevelDebug Level = iota
	// LevelInfo is for informational messages.
	LevelInfo
	// LevelWarn is for warning messages.
	LevelWarn
	// LevelError is for error messages.
	LevelError
)

// Format represents a log output format.
type Format int

const (
	// FormatJSON outputs logs in JSON format.
	FormatJSON Format = iota
	// FormatText outputs logs in human-readable text format.
	FormatText
)

// Options configures a logger.
type Options struct {
	Level  Level
	Format Format
	// Writer receives log records. Defaults to os.Stderr so that commands
	// printing results on stdout stay pipeable.
	Writer io.Writer
}

// ParseLevel maps a level name (as found in RG_LOG_LEVEL) to a Level.
// The empty string yields LevelInfo.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error", "fatal":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// ParseFormat maps a format name (as found in RG_LOG_FORMAT) to a Format.
// The empty string yields FormatText.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	}
	return FormatText, fmt.Errorf("unknown log format %q", s)
}

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New creates a logger with the specified level and format.
func New(o Options) *slog.Logger {
	w := o.Writer
	if w == nil {
		w = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level: o.Level.slogLevel(),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Customize timestamp format
			if a.Key == slog.TimeKey {
				return slog.String(slog.TimeKey, a.Value.Time().Format(time.RFC3339))
			}
			return a
		},
	}

	var handler slog.Handler
	if o.Format == FormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// Component returns a child logger tagged with the component name.
func Component(logger *slog.Logger, name string) *slog.Logger {
	if logger == nil {
		logger = Discard()
	}
	return logger.With("component", name)
}

// Helper functions for common logging patterns

// PageFetched logs one page fetch of a paged query.
func PageFetched(logger *slog.Logger, offset, limit, rows int, args ...any) {
	allArgs := []any{
		"offset", offset,
		"limit", limit,
		"rows", rows,
	}
	allArgs = append(allArgs, args...)
	logger.Debug("page_fetched", allArgs...)
}

// ResourceWritten logs a completed resource file.
func ResourceWritten(logger *slog.Logger, variant, path string, lines, skipped int, args ...any) {
	allArgs := []any{
		"variant", variant,
		"path", path,
		"lines", lines,
		"skipped", skipped,
	}
	allArgs = append(allArgs, args...)
	logger.Info("resource_written", allArgs...)
}

// RunError logs the error that aborted a run.
func RunError(logger *slog.Logger, operation string, err error, args ...any) {
	allArgs := []any{
		"operation", operation,
		"error", err.Error(),
	}
	allArgs = append(allArgs, args...)
	logger.Error("run_error", allArgs...)
}
