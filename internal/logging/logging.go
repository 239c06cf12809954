// Package logging builds the slog loggers used across sassdef.
package logging

import (
	"io"
	"log/slog"
	"strings"
)

// Format selects the slog handler.
type Format string

const (
	TextFormat Format = "text"
	JSONFormat Format = "json"
)

// levelSilent is above every standard level.
const levelSilent = slog.Level(100)

// New returns a logger writing to w at level in the given format. Unknown
// formats fall back to text.
func New(w io.Writer, level slog.Level, format Format) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == JSONFormat {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// LevelFromString converts debug, info, warn or error (case-insensitive) to a
// slog.Level. "off" and "quiet" silence logging. Anything else is warn.
func LevelFromString(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "off", "quiet":
		return levelSilent
	default:
		return slog.LevelWarn
	}
}

// ParseFormat converts "json" or "text" to a Format, defaulting to text.
func ParseFormat(s string) Format {
	if strings.EqualFold(strings.TrimSpace(s), string(JSONFormat)) {
		return JSONFormat
	}
	return TextFormat
}
