package observability

import (
	"log/slog"
	"os"
)

// Logger is a thin wrapper over slog so callers depend on two methods rather
// than the full slog surface.
type Logger struct {
	log *slog.Logger
}

func NewLogger() *Logger {
	return &Logger{log: slog.New(slog.NewJSONHandler(os.Stdout, nil))}
}

func (l *Logger) Info(msg string) {
	l.log.Info(msg)
}

func (l *Logger) Error(msg string) {
	l.log.Error(msg)
}
