// Package log sets up the process-wide structured logger.
package log

import (
	"log/slog"
	"os"
)

// Setup builds a text slog logger tagged with the component name, installs
// it as the default and returns it. LOG_LEVEL=debug enables debug output.
func Setup(component string) *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})).With("component", component)
	slog.SetDefault(logger)
	return logger
}
