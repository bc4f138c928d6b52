package utils

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger keeps the Printf/Errorf call style used across handlers on top of zap.
type Logger struct {
	sugar *zap.SugaredLogger
}

func NewLogger() *Logger {
	return NewLoggerWithLevel("info")
}

func NewLoggerWithLevel(level string) *Logger {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	base, err := cfg.Build()
	if err != nil {
		base = zap.NewNop()
	}
	return &Logger{sugar: base.Sugar()}
}

// NewNopLogger discards everything; tests use it.
func NewNopLogger() *Logger {
	return &Logger{sugar: zap.NewNop().Sugar()}
}

func FromZap(l *zap.Logger) *Logger {
	if l == nil {
		return NewNopLogger()
	}
	return &Logger{sugar: l.Sugar()}
}

func parseLevel(level string) zapcore.Level {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "warning" {
		level = "warn"
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

func (l *Logger) Printf(format string, args ...any) {
	if l == nil {
		return
	}
	l.sugar.Infof(format, args...)
}

func (l *Logger) Debugf(format string, args ...any) {
	if l == nil {
		return
	}
	l.sugar.Debugf(format, args...)
}

func (l *Logger) Warnf(format string, args ...any) {
	if l == nil {
		return
	}
	l.sugar.Warnf(format, args...)
}

func (l *Logger) Errorf(format string, args ...any) {
	if l == nil {
		return
	}
	l.sugar.Errorf(format, args...)
}

// Fatalf satisfies goose.Logger; it logs at error level and leaves exit to the caller.
func (l *Logger) Fatalf(format string, args ...any) {
	l.Errorf(format, args...)
}

func (l *Logger) With(keysAndValues ...any) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{sugar: l.sugar.With(keysAndValues...)}
}

func (l *Logger) Sync() {
	if l == nil {
		return
	}
	_ = l.sugar.Sync()
}
