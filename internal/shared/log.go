// Package shared provides the logging facade used across SteamConv packages
// so that none of them import the CLI or each other to log.
package shared

import (
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents logging severity
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarning
	LogLevelError
)

var base atomic.Pointer[zap.Logger]

func init() {
	base.Store(zap.NewNop())
}

// SetLogger replaces the process-wide logger. A nil logger silences output.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	base.Store(l)
}

// NewLogger builds the production logger, switched to debug level on request.
func NewLogger(debug bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if debug {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	l, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return l, nil
}

// Zap returns the current logger for callers that want typed fields.
func Zap() *zap.Logger {
	return base.Load()
}

// Log writes a message for the given tag at the given level
func Log(level LogLevel, tag, message string) {
	l := base.Load().Named(tag)
	switch level {
	case LogLevelDebug:
		l.Debug(message)
	case LogLevelWarning:
		l.Warn(message)
	case LogLevelError:
		l.Error(message)
	default:
		l.Info(message)
	}
}

// LogDebug logs a debug message
func LogDebug(tag, format string, args ...interface{}) {
	Log(LogLevelDebug, tag, fmt.Sprintf(format, args...))
}

// LogInfo logs an info message
func LogInfo(tag, format string, args ...interface{}) {
	Log(LogLevelInfo, tag, fmt.Sprintf(format, args...))
}

// LogWarning logs a warning message
func LogWarning(tag, format string, args ...interface{}) {
	Log(LogLevelWarning, tag, fmt.Sprintf(format, args...))
}

// LogError logs an error message
func LogError(tag, format string, args ...interface{}) {
	Log(LogLevelError, tag, fmt.Sprintf(format, args...))
}

// Logger provides tagged logging with attached fields
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warning(format string, args ...interface{})
	Error(format string, args ...interface{})

	WithField(key string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
}

// logger implements Logger
type logger struct {
	tag    string
	fields []interface{}
}

// GetLogger returns a logger for the given tag
func GetLogger(tag string) Logger {
	return &logger{tag: tag}
}

func (l *logger) sugar() *zap.SugaredLogger {
	return base.Load().Named(l.tag).Sugar().With(l.fields...)
}

func (l *logger) Debug(format string, args ...interface{}) {
	l.sugar().Debugf(format, args...)
}

func (l *logger) Info(format string, args ...interface{}) {
	l.sugar().Infof(format, args...)
}

func (l *logger) Warning(format string, args ...interface{}) {
	l.sugar().Warnf(format, args...)
}

func (l *logger) Error(format string, args ...interface{}) {
	l.sugar().Errorf(format, args...)
}

func (l *logger) WithField(key string, value interface{}) Logger {
	fields := make([]interface{}, len(l.fields), len(l.fields)+2)
	copy(fields, l.fields)
	return &logger{tag: l.tag, fields: append(fields, key, value)}
}

func (l *logger) WithFields(fields map[string]interface{}) Logger {
	merged := make([]interface{}, len(l.fields), len(l.fields)+2*len(fields))
	copy(merged, l.fields)
	for k, v := range fields {
		merged = append(merged, k, v)
	}
	return &logger{tag: l.tag, fields: merged}
}
