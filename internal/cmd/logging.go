package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/inkwell-sh/inkwell/internal/config"
)

// setupLogging opens the log file and installs it as the slog default.
// The TUI owns the terminal, so nothing is ever logged to stdout/stderr
// while the editor runs. The returned closer flushes the file on exit.
func setupLogging(cfg *config.Config, paths *config.Paths) (*slog.Logger, io.Closer, error) {
	path := cfg.Log.File
	if path == "" {
		path = paths.LogFile()
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	handler := slog.NewTextHandler(f, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger, f, nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
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
