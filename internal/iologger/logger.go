// Package iologger provides slog-based logging initialization and configuration.
package iologger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gnames/gnpull/pkg/config"
)

// LogFile is the name of the log file inside the log directory.
const LogFile = "gnpull.log"

// Init initializes the global slog logger with the given configuration.
// With the "file" destination the log file in logDir is truncated, so it
// keeps only the last run. The returned closer releases the file and is
// a no-op for other destinations.
func Init(logDir string, cfg config.LogConfig) (io.Closer, error) {
	writer, closer, err := destination(logDir, cfg.Destination)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler
	switch cfg.Format {
	case "text", "tint":
		// tint output is not colored yet, it falls back to text
		handler = slog.NewTextHandler(writer, opts)
	default:
		handler = slog.NewJSONHandler(writer, opts)
	}

	slog.SetDefault(slog.New(handler))
	return closer, nil
}

func destination(logDir, dest string) (io.Writer, io.Closer, error) {
	switch dest {
	case "stdout":
		return os.Stdout, nopCloser{}, nil
	case "file":
		logPath := filepath.Join(logDir, LogFile)
		file, err := os.Create(logPath)
		if err != nil {
			return nil, nil, CreateLogFileError(logPath, err)
		}
		return file, file, nil
	default:
		return os.Stderr, nopCloser{}, nil
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// parseLevel converts string level to slog.Level.
func parseLevel(level string) slog.Level {
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
