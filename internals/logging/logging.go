package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// InitLogger sets up the default slog logger: tinted output on stderr
// plus an append only file under the data dir. Color is disabled when
// stderr is not a terminal.
func InitLogger(dataDir string, level slog.Level) (*slog.Logger, *os.File) {
	var writers []io.Writer
	writers = append(writers, os.Stderr)

	var logFile *os.File
	logPath := filepath.Join(dataDir, "log.txt")
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err == nil {
		if f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644); err == nil {
			logFile = f
			writers = append(writers, f)
		}
	}

	handler := tint.NewHandler(io.MultiWriter(writers...), &tint.Options{
		Level:   level,
		NoColor: !isatty.IsTerminal(os.Stderr.Fd()),
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger, logFile
}

// ParseLevel maps the config string to a slog level, defaulting to info.
func ParseLevel(raw string) slog.Level {
	switch raw {
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
