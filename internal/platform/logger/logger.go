package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New returns a JSON slog logger on stdout. ZKVAULT_LOG_LEVEL selects the level.
func New() *slog.Logger {
	return NewWithWriter(os.Stdout, os.Getenv("ZKVAULT_LOG_LEVEL"))
}

// NewWithWriter builds the same logger over an arbitrary writer.
func NewWithWriter(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: parseLevel(level)}))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
