package xenoapp

import (
	"fmt"

	"github.com/advdv/xeno"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates a zap logger configured from the environment.
// Uses JSON encoding suitable for CloudWatch.
// XENO_LOG_LEVEL controls the level (debug, info, warn, error).
func NewLogger(env Environment) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(env.base().LogLevel)
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

type zapLogger struct{ *zap.Logger }

func (l zapLogger) LogTranslatedError(err error, status int) {
	l.Logger.Error("translated error into response", zap.Error(err), zap.Int("status", status))
}

func (l zapLogger) LogRecoveredPanic(v any) {
	l.Logger.Error("recovered from panic", zap.String("panic", fmt.Sprint(v)), zap.Stack("stack"))
}

// NewXenoLogger adapts l to the logger the core reports translated errors and recovered panics to.
func NewXenoLogger(l *zap.Logger) xeno.Logger {
	return zapLogger{l.Named("xeno")}
}
