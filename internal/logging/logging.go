// Package logging configures the slog default logger for folio.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	// LevelEnvVar overrides the log level (debug, info, warn, error).
	LevelEnvVar = "FOLIO_LOG_LEVEL"
	// FormatEnvVar selects the handler (text or json).
	FormatEnvVar = "FOLIO_LOG_FORMAT"
)

// Format is the handler encoding.
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

// Options configures the default logger.
type Options struct {
	Level  slog.Level
	Format Format
	Writer io.Writer
}

var levels = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"":        slog.LevelInfo,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// ParseLevel maps a level name to a slog.Level. Unknown names yield ok=false.
func ParseLevel(s string) (slog.Level, bool) {
	lvl, ok := levels[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return slog.LevelInfo, false
	}
	return lvl, true
}

// Configure installs a logger built from opts as the slog default and returns it.
func Configure(opts Options) *slog.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	hopts := &slog.HandlerOptions{Level: opts.Level}

	var handler slog.Handler
	switch opts.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(w, hopts)
	default:
		handler = slog.NewTextHandler(w, hopts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// FromEnv builds Options from --debug and the FOLIO_LOG_* variables.
// --debug always wins over a quieter FOLIO_LOG_LEVEL.
func FromEnv(debug bool, w io.Writer) Options {
	opts := Options{Level: slog.LevelInfo, Writer: w}
	if lvl, ok := ParseLevel(os.Getenv(LevelEnvVar)); ok {
		opts.Level = lvl
	}
	if debug {
		opts.Level = slog.LevelDebug
	}
	if strings.EqualFold(strings.TrimSpace(os.Getenv(FormatEnvVar)), "json") {
		opts.Format = FormatJSON
	}
	return opts
}
