package logging

import (
	"log/slog"
	"os"
	"strings"
)

var Logger *slog.Logger

func init() {
	Logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// Configure rebuilds the root logger from the configured level and format.
func Configure(level, format string) {
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

	opts := &slog.HandlerOptions{Level: lvl}
	if strings.ToLower(format) == "text" {
		Logger = slog.New(slog.NewTextHandler(os.Stdout, opts))
		return
	}
	Logger = slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func WithComponent(component string) *slog.Logger {
	return Logger.With("component", component)
}
