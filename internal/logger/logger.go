// Package logger builds the process-wide zerolog logger.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New returns a logger tagged with the service name.  format "console" (or
// "pretty") writes human-readable lines; anything else writes JSON.  An
// unknown level falls back to info.
func New(level, format, service string) zerolog.Logger {
	return NewWithWriter(os.Stdout, level, format, service)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, level, format, service string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	out := w
	switch strings.ToLower(format) {
	case "console", "pretty":
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).
		Level(lvl).
		With().
		Timestamp().
		Str("service", service).
		Logger()
}
