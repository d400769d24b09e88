package app

import (
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/previewgo/internal/config"
)

// newLogger builds the application's own logger from the log settings. It
// does not touch the global logger. Every record carries the framework.
func newLogger(cfg *config.Config, outW io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch cfg.LogFormat {
	case "json":
		handler = slog.NewJSONHandler(outW, opts)
	default:
		handler = slog.NewTextHandler(outW, opts)
	}

	return slog.New(handler).With("framework", cfg.Framework)
}
