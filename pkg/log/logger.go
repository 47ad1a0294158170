// Package log configures zerolog for the blade pipeline binaries.
package log

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New returns a JSON logger writing to w at the given level, tagged with the
// component name. Unknown levels fall back to info.
func New(w io.Writer, component, level string) zerolog.Logger {
	return zerolog.New(w).
		Level(ToLevel(level)).
		With().
		Timestamp().
		Str("component", component).
		Logger()
}

// NewConsole returns a human-readable logger for the CLI binaries.
func NewConsole(component, level string) zerolog.Logger {
	cw := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	return zerolog.New(cw).
		Level(ToLevel(level)).
		With().
		Timestamp().
		Str("component", component).
		Logger()
}

// ToLevel parses a level string. Unknown values map to info.
func ToLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
