package logger

import (
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// New constructs a JSON slog logger. When LOG_FILE is set the records are also
// written to a size-rotated file.
func New() *slog.Logger {
	level := parseLevel(os.Getenv("LOG_LEVEL"))
	handler := slog.NewJSONHandler(output(), &slog.HandlerOptions{Level: level})
	return slog.New(handler).With("service", "usergate")
}

func output() io.Writer {
	path := strings.TrimSpace(os.Getenv("LOG_FILE"))
	if path == "" {
		return os.Stdout
	}
	return io.MultiWriter(os.Stdout, rotatingFile(path))
}

func rotatingFile(path string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    envInt("LOG_FILE_MAX_SIZE_MB", 100),
		MaxBackups: envInt("LOG_FILE_MAX_BACKUPS", 3),
		MaxAge:     envInt("LOG_FILE_MAX_AGE_DAYS", 28),
		Compress:   true,
	}
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}

func parseLevel(level string) slog.Leveler {
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
