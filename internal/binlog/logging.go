// Package binlog provides the structured logger the PE parse driver's
// warn-and-continue combinator writes recovered step failures through
// (§4.4, §7), instead of discarding them.
package binlog

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Level mirrors the handful of logrus levels the parser actually uses.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Format selects the logrus formatter.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Logger wraps logrus.Logger with a fixed "component" field helper, the
// same shape the library's ambient logging carries.
type Logger struct {
	*logrus.Logger
}

// Config configures a Logger.
type Config struct {
	Level  Level     `yaml:"level" mapstructure:"level" default:"info"`
	Format Format    `yaml:"format" mapstructure:"format" default:"text"`
	Output io.Writer `yaml:"-"`
}

// New builds a Logger from Config.
func New(cfg Config) *Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(string(cfg.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	switch cfg.Format {
	case FormatJSON:
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	default:
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	}

	if cfg.Output != nil {
		logger.SetOutput(cfg.Output)
	} else {
		logger.SetOutput(os.Stdout)
	}

	return &Logger{Logger: logger}
}

// Default returns a text-formatted, info-level logger writing to stdout.
func Default() *Logger {
	return New(Config{Level: LevelInfo, Format: FormatText, Output: os.Stdout})
}

// Discard returns a logger that drops everything, for package tests
// that don't want parser warnings cluttering `go test -v` output.
func Discard() *Logger {
	l := New(Config{Level: LevelError, Format: FormatText})
	l.SetOutput(io.Discard)
	return l
}

// WithComponent tags log lines with the sub-parser or pipeline step
// that produced them (e.g. "imports", "tls", "data_directories").
func (l *Logger) WithComponent(component string) *logrus.Entry {
	return l.WithField("component", component)
}

// ParseLevel is a tolerant parser: unrecognized input falls back to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}
