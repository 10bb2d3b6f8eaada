package logger

import (
	"log/slog"
	"os"
)

// New returns the process logger. Text output to stdout; services and
// handlers receive this and add their own attributes.
func New() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}
