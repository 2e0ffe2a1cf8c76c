package logger

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"dabwish/pkg/errors"
)

var globalLogger *Logger

// Logger wraps zap.SugaredLogger. Error-level entries are also reported to
// the error tracker, if one is set.
type Logger struct {
	*zap.SugaredLogger
	tracker *trackerRef
}

// trackerRef is shared by a logger and all of its children so a tracker set
// after they were created still applies to them
type trackerRef struct {
	mu sync.RWMutex
	t  errors.Tracker
}

func (r *trackerRef) get() errors.Tracker {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.t
}

func (r *trackerRef) set(t errors.Tracker) {
	r.mu.Lock()
	r.t = t
	r.mu.Unlock()
}

func wrap(l *zap.Logger) *Logger {
	return &Logger{SugaredLogger: l.Sugar(), tracker: &trackerRef{}}
}

// Init builds the global logger. env "production" selects JSON output; an
// unknown level falls back to info.
func Init(level string, env string) error {
	var config zap.Config
	if env == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}
	config.Level = zap.NewAtomicLevelAt(zapLevel)

	l, err := config.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return err
	}
	globalLogger = wrap(l)
	return nil
}

// NewNop returns a logger that discards everything. Used by tests.
func NewNop() *Logger {
	return wrap(zap.NewNop())
}

// Get returns the global logger, creating a development one if Init was not called
func Get() *Logger {
	if globalLogger == nil {
		l, _ := zap.NewDevelopment()
		globalLogger = wrap(l)
	}
	return globalLogger
}

// SetErrorTracker installs the tracker on the global logger and every logger derived from it
func SetErrorTracker(tracker errors.Tracker) {
	Get().tracker.set(tracker)
}

// With creates a child logger with additional fields
func (l *Logger) With(args ...interface{}) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(args...), tracker: l.tracker}
}

func (l *Logger) report(err error, tags map[string]string) {
	if t := l.tracker.get(); t != nil {
		_ = t.CaptureError(context.Background(), err, tags)
	}
}

// Error logs and reports
func (l *Logger) Error(args ...interface{}) {
	l.SugaredLogger.Error(args...)
	l.report(errors.New(fmt.Sprint(args...)), nil)
}

// Errorf logs and reports
func (l *Logger) Errorf(template string, args ...interface{}) {
	l.SugaredLogger.Errorf(template, args...)
	l.report(fmt.Errorf(template, args...), nil)
}

// Errorw logs and reports. Key/value pairs become tracker tags.
func (l *Logger) Errorw(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Errorw(msg, keysAndValues...)

	tags := make(map[string]string, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		if k, ok := keysAndValues[i].(string); ok {
			tags[k] = fmt.Sprint(keysAndValues[i+1])
		}
	}
	l.report(errors.New(msg), tags)
}

// Sync flushes any buffered log entries
func Sync() error {
	if globalLogger != nil {
		return globalLogger.Sync()
	}
	return nil
}
