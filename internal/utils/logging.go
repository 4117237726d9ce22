package utils

import "go.uber.org/zap"

// Logger wraps a zap sugared logger behind the key-value API the rest of
// the codebase uses.
type Logger struct {
	l *zap.SugaredLogger
}

func NewLogger() *Logger {
	z, _ := zap.NewProduction()
	return &Logger{l: z.Sugar()}
}

// NewNopLogger returns a logger that discards everything (used in tests).
func NewNopLogger() *Logger {
	return &Logger{l: zap.NewNop().Sugar()}
}

func (lg *Logger) Info(msg string, kv ...any)  { lg.l.Infow(msg, kv...) }
func (lg *Logger) Warn(msg string, kv ...any)  { lg.l.Warnw(msg, kv...) }
func (lg *Logger) Error(msg string, kv ...any) { lg.l.Errorw(msg, kv...) }

func (lg *Logger) Sync() { _ = lg.l.Sync() }
