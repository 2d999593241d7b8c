package internal

import (
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARNING
	ERROR
	SUCCESS
)

// Logger is a levelled printf-style logger backed by zap.
type Logger struct {
	sugar *zap.SugaredLogger
	level zap.AtomicLevel
}

var (
	defaultLogger *Logger
	once          sync.Once
)

func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case DEBUG:
		return zapcore.DebugLevel
	case WARNING:
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// ParseLevel maps a config string to a LogLevel, defaulting to INFO.
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DEBUG
	case "warn", "warning":
		return WARNING
	case "error":
		return ERROR
	default:
		return INFO
	}
}

// NewLogger builds a zap logger; format "json" selects the production
// encoder, anything else the console one.
func NewLogger(level LogLevel, format string) *Logger {
	var cfg zap.Config
	if format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(level.zapLevel())
	cfg.DisableStacktrace = true

	zl, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		zl = zap.NewNop()
	}
	return &Logger{sugar: zl.Sugar(), level: cfg.Level}
}

func NewLoggerFromZap(zl *zap.Logger) *Logger {
	return &Logger{
		sugar: zl.WithOptions(zap.AddCallerSkip(1)).Sugar(),
		level: zap.NewAtomicLevelAt(zapcore.DebugLevel),
	}
}

// NewTestLogger routes output through t.Log.
func NewTestLogger(t testing.TB) *Logger {
	return NewLoggerFromZap(zaptest.NewLogger(t))
}

func NewNopLogger() *Logger {
	return NewLoggerFromZap(zap.NewNop())
}

func InitDefaultLogger(level LogLevel, format string) {
	once.Do(func() {
		defaultLogger = NewLogger(level, format)
	})
}

func GetDefaultLogger() *Logger {
	if defaultLogger == nil {
		InitDefaultLogger(INFO, "console")
	}
	return defaultLogger
}

// OrDefault lets components accept a nil logger.
func OrDefault(l *Logger) *Logger {
	if l == nil {
		return GetDefaultLogger()
	}
	return l
}

func (l *Logger) SetLevel(level LogLevel) {
	l.level.SetLevel(level.zapLevel())
}

// With returns a child logger carrying the given key/value pairs.
func (l *Logger) With(keysAndValues ...any) *Logger {
	return &Logger{sugar: l.sugar.With(keysAndValues...), level: l.level}
}

func (l *Logger) Sync() error {
	return l.sugar.Sync()
}

func (l *Logger) Debug(format string, v ...any) {
	l.sugar.Debugf(format, v...)
}

func (l *Logger) Info(format string, v ...any) {
	l.sugar.Infof(format, v...)
}

func (l *Logger) Warn(format string, v ...any) {
	l.sugar.Warnf(format, v...)
}

func (l *Logger) Error(format string, v ...any) {
	l.sugar.Errorf(format, v...)
}

func (l *Logger) Success(format string, v ...any) {
	l.sugar.With("success", true).Infof(format, v...)
}

func DebugLog(format string, v ...any) {
	GetDefaultLogger().Debug(format, v...)
}

func InfoLog(format string, v ...any) {
	GetDefaultLogger().Info(format, v...)
}

func WarningLog(format string, v ...any) {
	GetDefaultLogger().Warn(format, v...)
}

func ErrorLog(format string, v ...any) {
	GetDefaultLogger().Error(format, v...)
}

func SuccessLog(format string, v ...any) {
	GetDefaultLogger().Success(format, v...)
}
