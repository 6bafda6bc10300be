package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Setup installs the base JSON logger so startup code can log before the
// database-backed handler exists. main swaps in the multi handler afterwards.
func Setup() {
	slog.SetDefault(slog.New(StdoutHandler()))
}

// StdoutHandler returns the JSON stdout handler at the level chosen by
// LOG_LEVEL. Unrecognized values mean info.
func StdoutHandler() slog.Handler {
	return slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: levelFromEnv(),
	})
}

func levelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
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
