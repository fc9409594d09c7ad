// Package logging wraps zap with the small configuration surface this
// project needs: level/format selection, env-driven setup and a process
// global that components fall back to when no logger is injected.
package logging

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a thin wrapper around zap.Logger.
type Logger struct {
	*zap.Logger
}

// Config holds logging configuration.
type Config struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string
	// Format is the output encoding (json or console).
	Format string
	// Development enables console-friendly output and caller annotation.
	Development bool
}

// DefaultConfig returns the production defaults: info level, json output.
func DefaultConfig() Config {
	return Config{Level: "info", Format: "json"}
}

// New builds a logger from the given configuration.
func New(config Config) (*Logger, error) {
	encoderConfig := zap.NewProductionEncoderConfig()
	if config.Development {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeDuration = zapcore.StringDurationEncoder

	zapConfig := zap.Config{
		Level:             zap.NewAtomicLevelAt(parseLevel(config.Level)),
		Development:       config.Development,
		DisableCaller:     !config.Development,
		DisableStacktrace: !config.Development,
		Encoding:          config.Format,
		EncoderConfig:     encoderConfig,
		OutputPaths:       []string{"stdout"},
		ErrorOutputPaths:  []string{"stderr"},
	}

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{logger}, nil
}

// NewFromEnv builds a logger from environment variables:
// LOG_LEVEL (default info), LOG_FORMAT (default json), LOG_DEV=true for
// development mode.
func NewFromEnv() (*Logger, error) {
	config := DefaultConfig()
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Level = level
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		config.Format = format
	}
	if os.Getenv("LOG_DEV") == "true" {
		config.Development = true
		config.Format = "console"
	}
	return New(config)
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{zap.NewNop()}
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// With creates a child logger with additional fields.
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{l.Logger.With(fields...)}
}

// Named creates a child logger with a name segment appended.
func (l *Logger) Named(name string) *Logger {
	return &Logger{l.Logger.Named(name)}
}

// Global logger, no-op until SetGlobal is called.
var global = NewNop()

// SetGlobal installs the process-wide logger.
func SetGlobal(logger *Logger) {
	global = logger
}

// L returns the process-wide logger.
func L() *Logger {
	return global
}
