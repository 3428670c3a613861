// Package logging builds the application's zerolog logger.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/dinekit/dinekit/internal/config"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New constructs a logger per the log configuration: human-readable
// console output on stderr, plus a size-rotated JSON file sink when a
// log file is configured.
func New(cfg config.LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.GetLogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}

	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}

	var sink io.Writer = console
	if cfg.GetLogFile() != "" {
		sink = zerolog.MultiLevelWriter(console, &lumberjack.Logger{
			Filename:   cfg.GetLogFile(),
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		})
	}

	return zerolog.New(sink).Level(level).With().Timestamp().Logger()
}
