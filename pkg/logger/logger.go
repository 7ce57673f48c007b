// Package logger is a thin zerolog wrapper with a fixed field-pair call
// convention, shared by the API services and the outbox processor.
package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

type Config struct {
	Level   zerolog.Level
	Output  io.Writer
	Console bool
}

type Logger struct {
	zl zerolog.Logger
}

// NewLogger builds a logger; nil config means JSON to stdout at info
// level. Console output is only for local development.
func NewLogger(cfg *Config) *Logger {
	if cfg == nil {
		cfg = &Config{Level: zerolog.InfoLevel, Output: os.Stdout}
	}
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	out := cfg.Output
	if cfg.Console {
		out = zerolog.ConsoleWriter{Out: cfg.Output}
	}

	zl := zerolog.New(out).Level(cfg.Level).With().Timestamp().Logger()
	return &Logger{zl: zl}
}

// WithFields returns a child logger carrying the given fields on every
// entry.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return &Logger{zl: l.zl.With().Fields(fields).Logger()}
}

// The variadic fields are alternating key/value pairs.

func (l *Logger) Debug(msg string, fields ...interface{}) {
	l.zl.Debug().Fields(fields).Msg(msg)
}

func (l *Logger) Info(msg string, fields ...interface{}) {
	l.zl.Info().Fields(fields).Msg(msg)
}

func (l *Logger) Warn(msg string, fields ...interface{}) {
	l.zl.Warn().Fields(fields).Msg(msg)
}

func (l *Logger) Error(err error, msg string, fields ...interface{}) {
	l.zl.Error().Err(err).Fields(fields).Msg(msg)
}

func (l *Logger) Fatal(err error, msg string, fields ...interface{}) {
	l.zl.Fatal().Err(err).Fields(fields).Msg(msg)
}
