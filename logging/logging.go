// Package logging contains the zap-backed logger used by the filter2d tools.
package logging

import (
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

// Logger is the logging interface handed to everything that needs to log.
type Logger interface {
	Debug(args ...interface{})
	Debugf(template string, args ...interface{})
	Debugw(msg string, keysAndValues ...interface{})
	Info(args ...interface{})
	Infof(template string, args ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Warn(args ...interface{})
	Warnf(template string, args ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	Error(args ...interface{})
	Errorf(template string, args ...interface{})
	Errorw(msg string, keysAndValues ...interface{})
	Fatal(args ...interface{})

	// Sublogger returns a logger named "<name>.<subname>" sharing this logger's level.
	Sublogger(subname string) Logger
	SetLevel(level zapcore.Level)
	GetLevel() zapcore.Level
	Sync() error
}

type impl struct {
	*zap.SugaredLogger
	level zap.AtomicLevel
}

func (imp *impl) Sublogger(subname string) Logger {
	return &impl{imp.SugaredLogger.Named(subname), imp.level}
}

func (imp *impl) SetLevel(level zapcore.Level) {
	imp.level.SetLevel(level)
}

func (imp *impl) GetLevel() zapcore.Level {
	return imp.level.Level()
}

// globalLogger discards everything until a binary installs its own with ReplaceGlobal.
var (
	globalMu     sync.RWMutex
	globalLogger = NewBlankLogger("global")
)

// ReplaceGlobal replaces the global logger.
func ReplaceGlobal(logger Logger) {
	globalMu.Lock()
	globalLogger = logger
	globalMu.Unlock()
}

// Global returns the global logger.
func Global() Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}

// NewLoggerConfig returns a new default logger config.
func NewLoggerConfig() zap.Config {
	// from https://github.com/uber-go/zap/blob/2314926ec34c23ee21f3dd4399438469668f8097/config.go#L135
	// but disable stacktraces, use same keys as prod, and color levels.
	return zap.Config{
		Level:    zap.NewAtomicLevelAt(zap.InfoLevel),
		Encoding: "console",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalColorLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		DisableStacktrace: true,
		OutputPaths:       []string{"stdout"},
		ErrorOutputPaths:  []string{"stderr"},
	}
}

func newLoggerAt(name string, level zapcore.Level) Logger {
	config := NewLoggerConfig()
	config.Level.SetLevel(level)
	return &impl{zap.Must(config.Build()).Sugar().Named(name), config.Level}
}

// NewLogger returns a new logger that outputs Info+ logs to stdout.
func NewLogger(name string) Logger {
	return newLoggerAt(name, zapcore.InfoLevel)
}

// NewDebugLogger returns a new logger that outputs Debug+ logs to stdout.
func NewDebugLogger(name string) Logger {
	return newLoggerAt(name, zapcore.DebugLevel)
}

// NewBlankLogger returns a logger that discards everything.
func NewBlankLogger(name string) Logger {
	return &impl{zap.NewNop().Sugar().Named(name), zap.NewAtomicLevelAt(zapcore.DebugLevel)}
}

// NewTestLogger returns a new logger that outputs Debug+ logs through `tb.Log`.
func NewTestLogger(tb testing.TB) Logger {
	logger, _ := NewObservedTestLogger(tb)
	return logger
}

// NewObservedTestLogger is like NewTestLogger but also saves logs to an in memory observer.
func NewObservedTestLogger(tb testing.TB) (Logger, *observer.ObservedLogs) {
	level := zap.NewAtomicLevelAt(zapcore.DebugLevel)
	observerCore, observedLogs := observer.New(level)
	logger := zaptest.NewLogger(tb, zaptest.Level(level), zaptest.WrapOptions(
		zap.WrapCore(func(c zapcore.Core) zapcore.Core {
			return zapcore.NewTee(c, observerCore)
		}),
	))
	return &impl{logger.Sugar(), level}, observedLogs
}
