package hashsession

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogConfig configures the Manager's structured logger. With neither
// Console nor File set the logger discards everything.
type LogConfig struct {
	// Level is one of debug, info, warn, error or disabled. Empty means info.
	Level string `yaml:"level"`

	// Console writes human-readable lines to stderr.
	Console bool `yaml:"console"`

	// File, when set, appends JSON lines to this path with rotation.
	File string `yaml:"file"`

	// FileMaxSizeMB is the rotation threshold. Zero uses lumberjack's
	// default of 100 MB.
	FileMaxSizeMB int `yaml:"file_max_size_mb"`
}

// NewLogger builds a zerolog logger from cfg. The returned closer releases
// the log file and is nil when no file is configured.
func NewLogger(cfg LogConfig) (zerolog.Logger, io.Closer, error) {
	level, err := parseLogLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), nil, err
	}

	var writers []io.Writer
	var closer io.Closer

	if cfg.Console {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		})
	}

	if cfg.File != "" {
		file := &lumberjack.Logger{
			Filename: cfg.File,
			MaxSize:  cfg.FileMaxSizeMB,
			Compress: true,
		}
		writers = append(writers, file)
		closer = file
	}

	if len(writers) == 0 {
		return zerolog.Nop(), nil, nil
	}

	var w io.Writer = writers[0]
	if len(writers) > 1 {
		w = zerolog.MultiLevelWriter(writers...)
	}

	logger := zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("component", "hashsession").
		Logger()

	return logger, closer, nil
}

// parseLogLevel converts a level name to a zerolog level.
func parseLogLevel(level string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel, nil
	case "", "info":
		return zerolog.InfoLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	case "disabled", "off":
		return zerolog.Disabled, nil
	default:
		return zerolog.NoLevel, fmt.Errorf("unknown log level %q", level)
	}
}
