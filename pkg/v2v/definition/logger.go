package definition

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the interface every core component holds instead of calling
// package-level logging functions directly: callers can swap in their
// own implementation (or a no-op one in tests) without touching core code.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// logrusLogger is the default Logger, backed by a structured
// github.com/sirupsen/logrus entry.
type logrusLogger struct {
	entry *logrus.Entry
}

// NewDefaultLogger returns a Logger that writes structured, leveled
// entries to stderr. Debug-level output is off by default; use
// NewDebugLogger for verbose tracing in tests.
func NewDefaultLogger() Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.InfoLevel)
	return &logrusLogger{entry: logrus.NewEntry(l)}
}

// NewDebugLogger returns a Logger with debug-level tracing enabled,
// useful for diagnosing protocol-level test failures.
func NewDebugLogger() Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.DebugLevel)
	return &logrusLogger{entry: logrus.NewEntry(l)}
}

// WithField returns a Logger scoped to an additional structured field,
// e.g. the owning vehicle id, so every subsequent line it emits carries
// that context.
func WithField(l Logger, key string, value interface{}) Logger {
	ll, ok := l.(*logrusLogger)
	if !ok {
		return l
	}
	return &logrusLogger{entry: ll.entry.WithField(key, value)}
}

func (l *logrusLogger) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }
func (l *logrusLogger) Infof(format string, args ...interface{})  { l.entry.Infof(format, args...) }
func (l *logrusLogger) Warnf(format string, args ...interface{})  { l.entry.Warnf(format, args...) }
func (l *logrusLogger) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }

// NoopLogger discards everything. Useful for tests asserting protocol
// behavior without log noise.
type NoopLogger struct{}

func (NoopLogger) Debugf(string, ...interface{}) {}
func (NoopLogger) Infof(string, ...interface{})  {}
func (NoopLogger) Warnf(string, ...interface{})  {}
func (NoopLogger) Errorf(string, ...interface{}) {}
