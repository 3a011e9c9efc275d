// Package logger builds the slog logger used across the pipeline.
package logger

import (
	"io"
	"log/slog"
	"strings"
)

// New returns a text-handler logger writing to w at the given level.
// Unknown level strings fall back to info.
func New(level string, w io.Writer) *slog.Logger {
	var lvl slog.Level

	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})
	return slog.New(handler)
}
