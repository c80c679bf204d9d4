// Package logging builds the diagnostic logger shared by longrun commands.
//
// Diagnostics are key/value structured and always go to stderr, so they
// never mix with command output on stdout (including --json output).
package logging

import (
	"io"
	"log/slog"
)

// Logger is the subset of *slog.Logger that longrun packages depend on.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// New returns a text logger writing to w. Only warnings and errors are
// emitted unless debug is set.
func New(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// OrDiscard returns l, or a discarding logger when l is nil.
func OrDiscard(l Logger) Logger {
	if l == nil {
		return Discard()
	}
	return l
}
