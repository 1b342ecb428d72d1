package xeno

import (
	"log"
	"sync/atomic"
	"testing"
)

// Logger can be implemented to get informed about important states.
type Logger interface {
	LogTranslatedError(err error, status int)
	LogRecoveredPanic(v any)
}

type stdLogger struct{ *log.Logger }

func (l stdLogger) LogTranslatedError(err error, status int) {
	l.Logger.Printf("xeno: translated server error (%d): %s", status, err)
}

func (l stdLogger) LogRecoveredPanic(v any) {
	l.Logger.Printf("xeno: recovered panic: %v", v)
}

func NewStdLogger(l *log.Logger) Logger {
	return stdLogger{l}
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) LogTranslatedError(error, int) {}
func (NopLogger) LogRecoveredPanic(any) {}

type TestLogger struct {
	tb testing.TB

	NumLogTranslatedError int64
	NumLogRecoveredPanic  int64
}

func NewTestLogger(tb testing.TB) *TestLogger {
	return &TestLogger{tb: tb}
}

func (l *TestLogger) LogTranslatedError(err error, status int) {
	atomic.AddInt64(&l.NumLogTranslatedError, 1)
	if l.tb != nil {
		l.tb.Logf("xeno: translated server error (%d): %s", status, err)
	}
}

func (l *TestLogger) LogRecoveredPanic(v any) {
	atomic.AddInt64(&l.NumLogRecoveredPanic, 1)
	if l.tb != nil {
		l.tb.Logf("xeno: recovered panic: %v", v)
	}
}

var (
	_ Logger = &TestLogger{}
	_ Logger = NopLogger{}
)
