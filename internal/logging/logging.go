package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/shocklateboy92/bonarr/internal/config"
)

// Logger owns the process-wide slog handler and the rotating log file behind it.
type Logger struct {
	*slog.Logger
	rotator *lumberjack.Logger
}

// Setup builds a logger from configuration and installs it as the slog default.
// Console output always goes to stdout; when a file is configured it is written
// through a size-rotated lumberjack writer as well.
func Setup(cfg config.LoggingConfig) *Logger {
	l := New(cfg, os.Stdout)
	slog.SetDefault(l.Logger)
	return l
}

// New builds a logger writing to console and, if configured, the log file.
func New(cfg config.LoggingConfig, console io.Writer) *Logger {
	var output io.Writer = console
	var rotator *lumberjack.Logger

	if cfg.File != "" {
		rotator = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    withDefault(cfg.MaxSizeMB, 10),
			MaxBackups: withDefault(cfg.MaxBackups, 5),
			MaxAge:     withDefault(cfg.MaxAgeDays, 30),
			LocalTime:  true,
		}
		output = io.MultiWriter(console, rotator)
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}

	return &Logger{Logger: slog.New(handler), rotator: rotator}
}

// Close closes the log file if one is open.
func (l *Logger) Close() error {
	if l.rotator != nil {
		return l.rotator.Close()
	}
	return nil
}

// ParseLevel converts a level name to slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

func withDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
