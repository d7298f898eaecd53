// Package logging builds the slog loggers handed to every component.
package logging

import (
	"log/slog"
	"os"
)

// BuildLogger creates a structured text logger writing to stderr.
// Unrecognized level names fall back to info.
func BuildLogger(level string) *slog.Logger {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		l = slog.LevelInfo
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})
	return slog.New(handler)
}

// Discard returns a logger that drops everything; tests and optional
// component loggers use it instead of nil checks.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
