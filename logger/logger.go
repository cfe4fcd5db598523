// Package logger builds the zap loggers used across the host.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogFormat represents the logging format.
type LogFormat string

const (
	// FormatConsole is human-readable output.
	FormatConsole LogFormat = "console"
	// FormatJSON is structured JSON output.
	FormatJSON LogFormat = "json"
)

var (
	mu     sync.RWMutex
	global *zap.SugaredLogger = zap.NewNop().Sugar()
)

// ParseLevel converts a level name to a zapcore.Level, defaulting to info.
func ParseLevel(level string) zapcore.Level {
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

// New creates a logger writing to stderr.
func New(level string, format LogFormat) *zap.Logger {
	return NewWithWriter(os.Stderr, level, format)
}

// NewWithWriter creates a logger writing to w.
func NewWithWriter(w io.Writer, level string, format LogFormat) *zap.Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "component",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var encoder zapcore.Encoder
	if format == FormatConsole {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), zap.NewAtomicLevelAt(ParseLevel(level)))
	return zap.New(core, zap.AddCaller())
}

// SetGlobal replaces the logger returned by For.
func SetGlobal(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	global = l.Sugar()
}

// For returns a named logger for a component.
func For(component string) *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return global.Named(component)
}
