// Package logger builds the slog logger used throughout the
// vector-database service from the logging configuration.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Log formats accepted by New.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config holds the options used to construct a logger.
type Config struct {
	// Level is the minimum level to emit ("debug", "info", "warn", "error").
	Level string

	// Format selects the handler ("text" or "json").
	Format string

	// Output overrides the destination. Defaults to stderr.
	Output io.Writer
}

// New creates a slog.Logger from the given configuration. Unknown levels
// fall back to info, unknown formats to text.
func New(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, FormatJSON) {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	return slog.New(handler).With("service", "vector-database")
}

// ParseLevel converts a level string to a slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
