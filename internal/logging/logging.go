// Package logging builds the slog loggers used by the daemon and CLI. Records
// are rendered by charmbracelet/log.
package logging

import (
	"fmt"
	"io"
	"log/slog"

	charmlog "github.com/charmbracelet/log"
)

// New returns a logger writing to w at the named level (debug, info, warn or
// error).
func New(w io.Writer, level string) (*slog.Logger, error) {
	lvl, err := charmlog.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	return slog.New(newHandler(w, lvl)), nil
}

// MustNew is New for levels that have already been validated; unknown levels
// fall back to info.
func MustNew(w io.Writer, level string) *slog.Logger {
	l, err := New(w, level)
	if err != nil {
		return slog.New(newHandler(w, charmlog.InfoLevel))
	}
	return l
}

// SetLevel changes the level of a logger built by New or MustNew. Loggers
// with any other handler are reported as an error and left alone.
func SetLevel(l *slog.Logger, level string) error {
	lvl, err := charmlog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	h, ok := l.Handler().(*charmlog.Logger)
	if !ok {
		return fmt.Errorf("logger handler %T has no adjustable level", l.Handler())
	}
	h.SetLevel(lvl)
	return nil
}

// Nop discards everything.
func Nop() *slog.Logger {
	return slog.New(newHandler(io.Discard, charmlog.FatalLevel))
}

func newHandler(w io.Writer, level charmlog.Level) *charmlog.Logger {
	return charmlog.NewWithOptions(w, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// Or returns l, or slog.Default when l is nil.
func Or(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
