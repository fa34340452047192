// Package logger builds the structured JSON logger shared by all tubegrab
// components and installs it as the slog default.
package logger

import (
	"log/slog"
	"os"
	"strings"
)

type Options struct {
	AddSource bool
	// Level is one of debug, info, warn or error. Anything else falls back
	// to info.
	Level string
}

// New builds a JSON logger writing to stdout and installs it as the slog
// default, so library code logging through the default logger ends up in the
// same stream.
func New(opt Options) *slog.Logger {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: opt.AddSource,
		Level:     parseLevel(opt.Level),
	}))
	slog.SetDefault(log)

	return log
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
